//go:build unix

package walker_test

import (
	"path/filepath"
	"syscall"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/copier/internal/walker"
)

func TestCollectPathsSkipsNamedPipe(t *testing.T) {
	root := t.TempDir()
	pipePath := filepath.Join(root, "pipe")
	if err := syscall.Mkfifo(pipePath, 0o600); err != nil {
		t.Skipf("mkfifo unavailable: %v", err)
	}

	core, logs := observer.New(zap.WarnLevel)
	items, err := walker.CollectPaths([]string{pipePath}, zap.New(core))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("named pipe must not become a file item, got %v", itemPaths(items))
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["path"] != pipePath {
		t.Fatalf("expected one warning naming the pipe, got %v", logs.All())
	}
}
