// Package walker enumerates a selected root into file items, pruning ignored paths.
package walker

import (
	"context"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/temirov/copier/internal/filesource"
	"github.com/temirov/copier/internal/ignore"
	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
)

// DefaultMaxDepth bounds recursion below the root.
const DefaultMaxDepth = 10

const (
	rootDirectoryName         = "."
	warningReadDirectory      = "skipping unreadable directory"
	warningStatEntry          = "skipping entry that cannot be inspected"
	debugSkipIrregularEntry   = "skipping non-regular entry"
	errorEnumerateRootMessage = "enumerate root directory: %w"
)

// Options controls a scan.
type Options struct {
	// MaxDepth stops recursion once a directory sits deeper than this many levels. Zero uses DefaultMaxDepth.
	MaxDepth int
	Logger   *zap.Logger
}

type scanContext struct {
	ctx     context.Context
	fsys    fs.FS
	matcher *ignore.Matcher
	options Options
	items   []types.FileItem
}

// Scan walks fsys from its root and returns every regular file whose path survives matcher.
// Ignored directories are never descended into. Failures below the root are logged and the
// affected entry is skipped; only a root that cannot be enumerated fails the scan.
func Scan(ctx context.Context, fsys fs.FS, matcher *ignore.Matcher, options Options) ([]types.FileItem, error) {
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	scan := &scanContext{ctx: ctx, fsys: fsys, matcher: matcher, options: options}

	entries, readError := fs.ReadDir(fsys, rootDirectoryName)
	if readError != nil {
		return nil, fmt.Errorf(errorEnumerateRootMessage, readError)
	}
	if err := scan.visitEntries(entries, "", 0); err != nil {
		return nil, err
	}
	return scan.items, nil
}

func (scan *scanContext) walkDirectory(directoryPath string, depth int) error {
	if depth > scan.options.MaxDepth {
		return nil
	}
	entries, readError := fs.ReadDir(scan.fsys, directoryPath)
	if readError != nil {
		scan.options.Logger.Warn(warningReadDirectory, zap.String("path", directoryPath), zap.Error(readError))
		return nil
	}
	return scan.visitEntries(entries, directoryPath, depth)
}

func (scan *scanContext) visitEntries(entries []fs.DirEntry, parentPath string, depth int) error {
	for _, entry := range entries {
		if err := scan.ctx.Err(); err != nil {
			return err
		}
		entryPath := utils.JoinEntryPath(parentPath, entry.Name())
		if scan.matcher.ShouldIgnore(entryPath) {
			continue
		}

		if entry.IsDir() {
			if err := scan.walkDirectory(entryPath, depth+1); err != nil {
				return err
			}
			continue
		}

		if !entry.Type().IsRegular() {
			scan.options.Logger.Debug(debugSkipIrregularEntry, zap.String("path", entryPath))
			continue
		}

		entryInfo, infoError := entry.Info()
		if infoError != nil {
			scan.options.Logger.Warn(warningStatEntry, zap.String("path", entryPath), zap.Error(infoError))
			continue
		}
		scan.items = append(scan.items, types.FileItem{
			Source: filesource.NewFSEntry(scan.fsys, entryPath, entryInfo),
			Path:   entryPath,
		})
	}
	return nil
}
