package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/copier/internal/filesource"
	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
)

const (
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	errorPathMissingFormat  = "path '%s' does not exist"
	errorStatFormat         = "stat failed for '%s': %w"
	warningPickedEntry      = "skipping picked entry"
	warningNotRegularFile   = "skipping picked path that is not a regular file"
)

// CollectPaths converts individually picked files and folders into file items.
// A file is keyed by its base name. Devices, pipes and sockets are logged and skipped. A folder contributes every regular file beneath it, keyed by
// the folder name followed by the path relative to the folder. Nothing is filtered here; ignore
// patterns apply when the document is rendered.
func CollectPaths(paths []string, logger *zap.Logger) ([]types.FileItem, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var items []types.FileItem
	for _, inputPath := range paths {
		absolutePath, absoluteError := filepath.Abs(inputPath)
		if absoluteError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absoluteError)
		}
		info, statError := os.Stat(absolutePath)
		if statError != nil {
			if os.IsNotExist(statError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, statError)
		}
		if !info.IsDir() {
			if !info.Mode().IsRegular() {
				logger.Warn(warningNotRegularFile, zap.String("path", inputPath), zap.Stringer("mode", info.Mode()))
				continue
			}
			source, sourceError := filesource.NewPath(absolutePath)
			if sourceError != nil {
				return nil, fmt.Errorf(errorStatFormat, inputPath, sourceError)
			}
			items = append(items, types.FileItem{Source: source, Path: filepath.Base(absolutePath)})
			continue
		}
		folderItems := collectFolder(absolutePath, logger)
		items = append(items, folderItems...)
	}
	return items, nil
}

func collectFolder(folderPath string, logger *zap.Logger) []types.FileItem {
	folderName := filepath.Base(folderPath)
	fsys := os.DirFS(folderPath)
	var items []types.FileItem
	// The callback logs failures and only ever returns nil or fs.SkipDir, so WalkDir cannot fail.
	_ = fs.WalkDir(fsys, rootDirectoryName, func(entryPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			logger.Warn(warningPickedEntry, zap.String("path", entryPath), zap.Error(walkError))
			if entry != nil && entry.IsDir() && entryPath != rootDirectoryName {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		info, infoError := entry.Info()
		if infoError != nil {
			logger.Warn(warningPickedEntry, zap.String("path", entryPath), zap.Error(infoError))
			return nil
		}
		items = append(items, types.FileItem{
			Source: filesource.NewFSEntry(fsys, entryPath, info),
			Path:   utils.JoinEntryPath(folderName, entryPath),
		})
		return nil
	})
	return items
}
