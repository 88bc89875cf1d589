package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/copier/internal/services/api"
	"github.com/temirov/copier/internal/tui"
)

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

type commandResult struct {
	stdout string
	stderr string
	err    error
}

func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("create directory for %s: %v", relativePath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", relativePath, err)
		}
	}
}

// isolate points the home and working directories at fresh temporary folders.
func isolate(t *testing.T) string {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	workingDirectory := t.TempDir()
	t.Chdir(workingDirectory)
	return workingDirectory
}

func runCommand(t *testing.T, deps dependencies, arguments ...string) commandResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	deps.stdout = &stdout
	deps.stderr = &stderr
	if deps.copier == nil {
		deps.copier = &recordingCopier{}
	}
	if deps.runInteractive == nil {
		deps.runInteractive = func(tui.Options) error { return errors.New("interactive mode disabled in tests") }
	}
	rootCommand := createRootCommand(deps)
	rootCommand.SetArgs(joinToggleArguments(rootCommand, arguments))
	err := rootCommand.Execute()
	return commandResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func projectFixture(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "myapp")
	writeFixture(t, root, map[string]string{
		"src/index.js":          "ok",
		"node_modules/pkg/a.js": "module.exports = 1",
		"server.log":            "started",
	})
	return root
}

func TestGenerateWritesDocumentToStdout(t *testing.T) {
	isolate(t)
	root := projectFixture(t)

	result := runCommand(t, dependencies{}, "generate", root)
	if result.err != nil {
		t.Fatalf("generate: %v", result.err)
	}
	expected := "# Code Structure\n\n" +
		"## Root path: \nmyapp\n\n" +
		"## Directory structure:\n\n" +
		"```tree\n.\n└── src/\n    └── index.js\n```\n" +
		"\n## File contents:\n\n" +
		"**File: `./src/index.js`**\n\n" +
		"```javascript\nok\n```\n\n"
	if result.stdout != expected {
		t.Fatalf("unexpected document:\n%s", result.stdout)
	}
}

func TestGenerateFlagsOverrideDefaults(t *testing.T) {
	isolate(t)
	root := projectFixture(t)

	result := runCommand(t, dependencies{}, "g", root, "--defaults", "off", "-e", "*.log", "--name", "Demo", "--description", "Sample app")
	if result.err != nil {
		t.Fatalf("generate: %v", result.err)
	}
	for _, expected := range []string{"> Project Name: \"Demo\"", "> Sample app", "**File: `./node_modules/pkg/a.js`**"} {
		if !strings.Contains(result.stdout, expected) {
			t.Fatalf("expected %q in document:\n%s", expected, result.stdout)
		}
	}
	if strings.Contains(result.stdout, "server.log") {
		t.Fatalf("log file must be ignored:\n%s", result.stdout)
	}
}

func TestGenerateExportTargets(t *testing.T) {
	workingDirectory := isolate(t)
	root := projectFixture(t)
	copier := &recordingCopier{}
	outputPath := filepath.Join(t.TempDir(), "out.md")

	result := runCommand(t, dependencies{copier: copier}, "generate", root, "--copy", "--download", "-o", outputPath)
	if result.err != nil {
		t.Fatalf("generate: %v", result.err)
	}
	if result.stdout != "" {
		t.Fatalf("stdout must stay empty when a destination is given, got %q", result.stdout)
	}
	written, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	downloaded, err := os.ReadFile(filepath.Join(workingDirectory, "myapp-structure.md"))
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if string(written) != string(downloaded) || len(copier.copied) != 1 || copier.copied[0] != string(written) {
		t.Fatalf("every destination must receive the same document")
	}
	if !strings.Contains(result.stderr, "myapp-structure.md") {
		t.Fatalf("expected saved path on stderr, got %q", result.stderr)
	}
}

func TestGenerateAddsPickedPaths(t *testing.T) {
	isolate(t)
	root := projectFixture(t)
	extraDirectory := t.TempDir()
	writeFixture(t, extraDirectory, map[string]string{"notes.txt": "remember"})

	result := runCommand(t, dependencies{}, "generate", root, "--add", filepath.Join(extraDirectory, "notes.txt"))
	if result.err != nil {
		t.Fatalf("generate: %v", result.err)
	}
	if !strings.Contains(result.stdout, "**File: `./notes.txt`**\n\n```txt\nremember\n```") {
		t.Fatalf("picked file missing:\n%s", result.stdout)
	}
}

func TestGenerateReadsConfiguration(t *testing.T) {
	workingDirectory := isolate(t)
	root := projectFixture(t)
	writeFixture(t, workingDirectory, map[string]string{
		".copier.yaml": "ignore:\n  patterns: [\"src/\"]\n  use_defaults: false\ngenerate:\n  project_name: Configured\n",
	})

	result := runCommand(t, dependencies{}, "generate", root)
	if result.err != nil {
		t.Fatalf("generate: %v", result.err)
	}
	if !strings.Contains(result.stdout, "Project Name: \"Configured\"") || strings.Contains(result.stdout, "index.js") {
		t.Fatalf("configuration not applied:\n%s", result.stdout)
	}
	if !strings.Contains(result.stdout, "./node_modules/pkg/a.js") {
		t.Fatalf("use_defaults: false must drop the built-in patterns:\n%s", result.stdout)
	}

	result = runCommand(t, dependencies{}, "generate", root, "--name", "Flag")
	if result.err != nil {
		t.Fatalf("generate: %v", result.err)
	}
	if !strings.Contains(result.stdout, "Project Name: \"Flag\"") {
		t.Fatalf("flag must override configuration:\n%s", result.stdout)
	}
}

func TestGenerateErrors(t *testing.T) {
	isolate(t)
	fileRoot := filepath.Join(t.TempDir(), "file.txt")
	writeFixture(t, filepath.Dir(fileRoot), map[string]string{"file.txt": "x"})
	emptyRoot := t.TempDir()

	testCases := []struct {
		name          string
		arguments     []string
		expectMessage string
	}{
		{name: "missing root", arguments: []string{"generate", filepath.Join(emptyRoot, "absent")}, expectMessage: "does not exist"},
		{name: "file root", arguments: []string{"generate", fileRoot}, expectMessage: "is not a directory"},
		{name: "empty root", arguments: []string{"generate", emptyRoot}, expectMessage: "no files to include"},
		{name: "bad toggle", arguments: []string{"generate", emptyRoot, "--copy=maybe"}, expectMessage: "invalid value"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := runCommand(t, dependencies{}, testCase.arguments...)
			if result.err == nil || !strings.Contains(result.err.Error(), testCase.expectMessage) {
				t.Fatalf("expected error containing %q, got %v", testCase.expectMessage, result.err)
			}
		})
	}
}

func TestTreeCommand(t *testing.T) {
	isolate(t)
	root := projectFixture(t)

	result := runCommand(t, dependencies{}, "tree", root, "--defaults=false")
	if result.err != nil {
		t.Fatalf("tree: %v", result.err)
	}
	expected := ".\n├── node_modules/\n│   └── pkg/\n│       └── a.js\n├── src/\n│   └── index.js\n└── server.log\n"
	if result.stdout != expected {
		t.Fatalf("unexpected tree:\n%s", result.stdout)
	}

	result = runCommand(t, dependencies{}, "t", root, "--depth", "1", "--defaults=false")
	if result.err != nil {
		t.Fatalf("tree: %v", result.err)
	}
	if expected := ".\n├── src/\n│   └── index.js\n└── server.log\n"; result.stdout != expected {
		t.Fatalf("depth 1 must stop above node_modules/pkg:\n%s", result.stdout)
	}
}

func TestScanCommandPrintsTable(t *testing.T) {
	isolate(t)
	root := projectFixture(t)

	result := runCommand(t, dependencies{}, "scan", root)
	if result.err != nil {
		t.Fatalf("scan: %v", result.err)
	}
	for _, expected := range []string{"PATH", "MEDIA TYPE", "src/index.js", "2 Bytes", "1 files"} {
		if !strings.Contains(result.stdout, expected) {
			t.Fatalf("expected %q in table:\n%s", expected, result.stdout)
		}
	}
}

func TestScanCommandPrintsJSON(t *testing.T) {
	isolate(t)
	root := projectFixture(t)

	result := runCommand(t, dependencies{}, "s", root, "--format", "json")
	if result.err != nil {
		t.Fatalf("scan: %v", result.err)
	}
	var entries []scanEntry
	if err := json.Unmarshal([]byte(result.stdout), &entries); err != nil {
		t.Fatalf("decode listing: %v\n%s", err, result.stdout)
	}
	if len(entries) != 1 || entries[0].Path != "src/index.js" || entries[0].SizeBytes != 2 || entries[0].Tokens != nil {
		t.Fatalf("unexpected listing: %+v", entries)
	}

	result = runCommand(t, dependencies{}, "scan", root, "--format", "yaml")
	if result.err == nil || !strings.Contains(result.err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", result.err)
	}
}

func TestUICommandPassesSession(t *testing.T) {
	isolate(t)
	root := projectFixture(t)
	var received tui.Options
	deps := dependencies{runInteractive: func(options tui.Options) error {
		received = options
		return nil
	}}

	result := runCommand(t, deps, "ui", root, "-e", "*.md")
	if result.err != nil {
		t.Fatalf("ui: %v", result.err)
	}
	if received.RootName != "myapp" || received.RootFS == nil || received.Controller == nil {
		t.Fatalf("unexpected interactive options: %+v", received)
	}
	patterns := received.Controller.Snapshot().IgnorePatterns
	if patterns[len(patterns)-1] != "*.md" {
		t.Fatalf("flag pattern must be last, got %v", patterns)
	}
}

func TestConfigInitAndVersion(t *testing.T) {
	workingDirectory := isolate(t)

	result := runCommand(t, dependencies{}, "config", "init")
	if result.err != nil {
		t.Fatalf("config init: %v", result.err)
	}
	if _, err := os.Stat(filepath.Join(workingDirectory, ".copier.yaml")); err != nil {
		t.Fatalf("expected configuration file: %v", err)
	}
	if result = runCommand(t, dependencies{}, "config", "init"); result.err == nil {
		t.Fatalf("expected existing configuration to be protected")
	}

	result = runCommand(t, dependencies{}, "--version")
	if result.err != nil || !strings.HasPrefix(result.stdout, "copier version: ") {
		t.Fatalf("unexpected version output %q, %v", result.stdout, result.err)
	}
}

func TestExecuteGenerateCommand(t *testing.T) {
	isolate(t)
	root := projectFixture(t)
	app := &application{dependencies: dependencies{logger: zap.NewNop()}}

	testCases := []struct {
		name           string
		payload        string
		expectedStatus int
		expectOutput   string
		expectWarning  string
	}{
		{name: "success", payload: `{"root":"` + filepath.ToSlash(root) + `","ignore":["*.log"],"projectName":"Api"}`, expectOutput: "> Project Name: \"Api\""},
		{name: "without defaults", payload: `{"root":"` + filepath.ToSlash(root) + `","useDefaults":false}`, expectOutput: "./node_modules/pkg/a.js"},
		{name: "empty root folder", payload: `{"root":"` + filepath.ToSlash(t.TempDir()) + `"}`, expectWarning: "no files to include"},
		{name: "malformed payload", payload: `{"root":`, expectedStatus: http.StatusBadRequest},
		{name: "missing root field", payload: `{}`, expectedStatus: http.StatusBadRequest},
		{name: "negative depth", payload: `{"root":".","maxDepth":-1}`, expectedStatus: http.StatusBadRequest},
		{name: "absent root", payload: `{"root":"` + filepath.ToSlash(filepath.Join(root, "absent")) + `"}`, expectedStatus: http.StatusNotFound},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			response, err := app.executeGenerateCommand(context.Background(), api.Request{Payload: json.RawMessage(testCase.payload)})
			if testCase.expectedStatus != 0 {
				var executionError api.StatusError
				if !errors.As(err, &executionError) || executionError.Status != testCase.expectedStatus {
					t.Fatalf("expected status %d, got %v", testCase.expectedStatus, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if response.Format != "markdown" {
				t.Fatalf("unexpected format %q", response.Format)
			}
			if !strings.Contains(response.Output, testCase.expectOutput) {
				t.Fatalf("expected %q in output:\n%s", testCase.expectOutput, response.Output)
			}
			if testCase.expectWarning != "" && (len(response.Warnings) == 0 || !strings.Contains(strings.Join(response.Warnings, "\n"), testCase.expectWarning)) {
				t.Fatalf("expected warning %q, got %v", testCase.expectWarning, response.Warnings)
			}
		})
	}
}
