package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

const commentPrefix = "#"

// ParsePatterns reads one pattern per line, skipping blank lines and lines starting with '#'.
func ParsePatterns(reader io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return patterns, nil
}

// LoadPatternFile reads patterns from the file at ignoreFilePath. A missing file yields no patterns.
//
// #nosec G304
func LoadPatternFile(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()
	patterns, parseError := ParsePatterns(fileHandle)
	if parseError != nil {
		return nil, fmt.Errorf("reading %s: %w", ignoreFilePath, parseError)
	}
	return patterns, nil
}

// LoadPatternFileFS reads patterns from name inside fsys. A missing file yields no patterns.
func LoadPatternFileFS(fsys fs.FS, name string) ([]string, error) {
	fileHandle, openFileError := fsys.Open(name)
	if openFileError != nil {
		if errors.Is(openFileError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()
	patterns, parseError := ParsePatterns(fileHandle)
	if parseError != nil {
		return nil, fmt.Errorf("reading %s: %w", name, parseError)
	}
	return patterns, nil
}
