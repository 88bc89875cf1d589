package config

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/temirov/copier/internal/ignore"
	"github.com/temirov/copier/internal/utils"
)

// IgnoreOptions lists every source contributing to the initial ignore list of a root.
type IgnoreOptions struct {
	RootDirectory      string
	// RootFS is searched for the root's ignore file. Nil uses os.DirFS(RootDirectory).
	RootFS             fs.FS
	UseDefaults        bool
	IgnoreFiles        []string
	ConfiguredPatterns []string
	FlagPatterns       []string
}

// ResolveIgnorePatterns aggregates patterns in this order: built-in defaults, the root's
// .copierignore, additional ignore files, configured patterns, then flag patterns.
// Missing ignore files contribute nothing. Duplicates are preserved.
func ResolveIgnorePatterns(options IgnoreOptions) ([]string, error) {
	var combinedPatterns []string
	if options.UseDefaults {
		combinedPatterns = append(combinedPatterns, ignore.DefaultPatterns...)
	}

	rootFS := options.RootFS
	if rootFS == nil && options.RootDirectory != "" {
		rootFS = os.DirFS(options.RootDirectory)
	}
	if rootFS != nil {
		rootPatterns, loadError := ignore.LoadPatternFileFS(rootFS, utils.IgnoreFileName)
		if loadError != nil {
			return nil, fmt.Errorf("loading root ignore file: %w", loadError)
		}
		combinedPatterns = append(combinedPatterns, rootPatterns...)
	}

	for _, ignoreFilePath := range options.IgnoreFiles {
		filePatterns, loadError := ignore.LoadPatternFile(ignoreFilePath)
		if loadError != nil {
			return nil, fmt.Errorf("loading ignore file %s: %w", ignoreFilePath, loadError)
		}
		combinedPatterns = append(combinedPatterns, filePatterns...)
	}

	combinedPatterns = append(combinedPatterns, options.ConfiguredPatterns...)
	combinedPatterns = append(combinedPatterns, options.FlagPatterns...)
	return ignore.NewMatcher(combinedPatterns...).Patterns(), nil
}
