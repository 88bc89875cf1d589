package utils_test

import (
	"testing"

	"github.com/temirov/copier/internal/utils"
)

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "zero", bytes: 0, expected: "0 Bytes"},
		{name: "negative", bytes: -5, expected: "0 Bytes"},
		{name: "bytes", bytes: 512, expected: "512 Bytes"},
		{name: "one kilobyte", bytes: 1024, expected: "1 KB"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5 KB"},
		{name: "two decimals", bytes: 1100, expected: "1.07 KB"},
		{name: "one mebibyte", bytes: 1024 * 1024, expected: "1 MB"},
		{name: "just over one mebibyte", bytes: 1024*1024 + 1, expected: "1 MB"},
		{name: "gigabytes", bytes: 3 * 1024 * 1024 * 1024, expected: "3 GB"},
		{name: "beyond terabytes", bytes: 2048 * 1024 * 1024 * 1024 * 1024, expected: "2048 TB"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatFileSize(testCase.bytes)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{path: "src/index.js", expected: "js"},
		{path: "src/App.TSX", expected: "tsx"},
		{path: "archive.tar.gz", expected: "gz"},
		{path: "Makefile", expected: ""},
		{path: "config.d/Makefile", expected: ""},
		{path: ".gitignore", expected: "gitignore"},
		{path: "trailing.", expected: ""},
	}
	for _, testCase := range testCases {
		if actual := utils.Extension(testCase.path); actual != testCase.expected {
			t.Errorf("Extension(%q) = %q, expected %q", testCase.path, actual, testCase.expected)
		}
	}
}

func TestSplitAndJoinEntryPath(t *testing.T) {
	if joined := utils.JoinEntryPath("", "root.txt"); joined != "root.txt" {
		t.Fatalf("unexpected root join: %s", joined)
	}
	if joined := utils.JoinEntryPath("src/app", "page.tsx"); joined != "src/app/page.tsx" {
		t.Fatalf("unexpected nested join: %s", joined)
	}
	directory, name := utils.SplitEntryPath("src/app/page.tsx")
	if directory != "src/app" || name != "page.tsx" {
		t.Fatalf("unexpected split: %q %q", directory, name)
	}
	directory, name = utils.SplitEntryPath("readme.md")
	if directory != "" || name != "readme.md" {
		t.Fatalf("unexpected top-level split: %q %q", directory, name)
	}
}
