package ignore_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/temirov/copier/internal/ignore"
)

func TestMatches(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		pattern  string
		expected bool
	}{
		{name: "suffix wildcard", path: "src/app/page.tsx", pattern: "*.tsx", expected: true},
		{name: "suffix wildcard miss", path: "src/app/page.ts", pattern: "*.tsx", expected: false},
		{name: "directory anywhere", path: "node_modules/x", pattern: "node_modules/", expected: true},
		{name: "nested directory anywhere", path: "packages/a/node_modules/b/index.js", pattern: "node_modules/", expected: true},
		{name: "directory needs slash", path: "node_modules", pattern: "node_modules/", expected: false},
		{name: "prefix wildcard", path: "dist/out.js", pattern: "dist/*", expected: true},
		{name: "prefix wildcard anchored", path: "src/dist/out.js", pattern: "dist/*", expected: false},
		{name: "substring wildcard miss", path: "readme.md", pattern: "*secret*", expected: false},
		{name: "substring wildcard hit", path: "config/secrets.env", pattern: "*secret*", expected: true},
		{name: "exact", path: "package-lock.json", pattern: "package-lock.json", expected: true},
		{name: "exact is not segment match", path: "web/package-lock.json", pattern: "package-lock.json", expected: false},
		{name: "empty pattern", path: "anything", pattern: "", expected: false},
		{name: "bare star", path: "deep/nested/file.txt", pattern: "*", expected: true},
		{name: "double star", path: "file.txt", pattern: "**", expected: true},
		{name: "slash matches nested", path: "a/b", pattern: "/", expected: true},
		{name: "slash misses top level", path: "a", pattern: "/", expected: false},
		{name: "star priority over slash", path: "x/build/", pattern: "*build/", expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := ignore.Matches(testCase.path, testCase.pattern); actual != testCase.expected {
				t.Fatalf("Matches(%q, %q) = %t, expected %t", testCase.path, testCase.pattern, actual, testCase.expected)
			}
		})
	}
}

func TestMatcherShouldIgnoreAnyPattern(t *testing.T) {
	matcher := ignore.NewMatcher("*.log", "node_modules/")
	if !matcher.ShouldIgnore("logs/server.log") {
		t.Fatalf("expected log file to be ignored")
	}
	if !matcher.ShouldIgnore("node_modules/pkg/a.js") {
		t.Fatalf("expected node_modules entry to be ignored")
	}
	if matcher.ShouldIgnore("src/index.js") {
		t.Fatalf("expected source file to be kept")
	}

	var zero ignore.Matcher
	if zero.ShouldIgnore("anything") {
		t.Fatalf("zero matcher must ignore nothing")
	}
	var nilMatcher *ignore.Matcher
	if nilMatcher.ShouldIgnore("anything") {
		t.Fatalf("nil matcher must ignore nothing")
	}
}

func TestMatcherAddRemoveKeepsOrderAndDuplicates(t *testing.T) {
	matcher := ignore.NewMatcher()
	for _, pattern := range []string{" *.log ", "dist/", "", "*.log", "   "} {
		matcher.Add(pattern)
	}
	patterns := matcher.Patterns()
	expected := []string{"*.log", "dist/", "*.log"}
	if strings.Join(patterns, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected %v, got %v", expected, patterns)
	}

	patterns[0] = "mutated"
	if matcher.Patterns()[0] != "*.log" {
		t.Fatalf("Patterns must return a copy")
	}

	if !matcher.Remove("*.log") {
		t.Fatalf("expected removal to report success")
	}
	if remaining := matcher.Patterns(); len(remaining) != 1 || remaining[0] != "dist/" {
		t.Fatalf("expected every duplicate removed, got %v", remaining)
	}
	if matcher.Remove("*.log") {
		t.Fatalf("removing an absent pattern must report false")
	}
}

func TestDefaultMatcher(t *testing.T) {
	matcher := ignore.NewMatcher(ignore.DefaultPatterns...)
	if len(matcher.Patterns()) != len(ignore.DefaultPatterns) {
		t.Fatalf("expected %d default patterns, got %v", len(ignore.DefaultPatterns), matcher.Patterns())
	}
	ignored := []string{"node_modules/a.js", ".git/HEAD", "web/.next/cache", "dist/app.js", "build/x", "debug.log", "package-lock.json"}
	for _, path := range ignored {
		if !matcher.ShouldIgnore(path) {
			t.Errorf("expected %s to be ignored by defaults", path)
		}
	}
	if matcher.ShouldIgnore("src/main.go") {
		t.Errorf("expected src/main.go to be kept by defaults")
	}
}

func TestNilMatcherIsInert(t *testing.T) {
	var matcher *ignore.Matcher
	if matcher.Add("*.log") || matcher.Remove("*.log") || matcher.ShouldIgnore("a.log") || matcher.Patterns() != nil {
		t.Fatalf("a nil matcher must hold and ignore nothing")
	}
}

func TestParsePatterns(t *testing.T) {
	input := "# generated artifacts\n\n*.log\n  coverage/  \n# trailing comment\n*.log\n"
	patterns, err := ignore.ParsePatterns(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse patterns: %v", err)
	}
	expected := []string{"*.log", "coverage/", "*.log"}
	if strings.Join(patterns, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected %v, got %v", expected, patterns)
	}
}

func TestLoadPatternFileFS(t *testing.T) {
	fsys := fstest.MapFS{
		".copierignore": &fstest.MapFile{Data: []byte("tmp/\n*.bak\n")},
	}
	patterns, err := ignore.LoadPatternFileFS(fsys, ".copierignore")
	if err != nil {
		t.Fatalf("load patterns: %v", err)
	}
	if len(patterns) != 2 || patterns[0] != "tmp/" || patterns[1] != "*.bak" {
		t.Fatalf("unexpected patterns: %v", patterns)
	}

	missing, err := ignore.LoadPatternFileFS(fsys, "absent")
	if err != nil || missing != nil {
		t.Fatalf("expected missing file to yield nothing, got %v, %v", missing, err)
	}
}
