package utils

import (
	"path"
	"strings"
)

const pathSegmentSeparator = "/"

// JoinEntryPath joins a parent entry path and a child name, treating an empty parent as the root.
func JoinEntryPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + pathSegmentSeparator + name
}

// SplitEntryPath returns the directory part and the final segment of a forward-slash path.
// The directory part is empty for top-level entries.
func SplitEntryPath(entryPath string) (string, string) {
	separatorIndex := strings.LastIndex(entryPath, pathSegmentSeparator)
	if separatorIndex < 0 {
		return "", entryPath
	}
	return entryPath[:separatorIndex], entryPath[separatorIndex+1:]
}

// Extension returns the lower-cased text after the last dot of the final path segment,
// or an empty string when the segment has no dot.
func Extension(entryPath string) string {
	baseName := path.Base(entryPath)
	dotIndex := strings.LastIndex(baseName, ".")
	if dotIndex < 0 {
		return ""
	}
	return strings.ToLower(baseName[dotIndex+1:])
}
