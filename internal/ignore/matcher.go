// Package ignore implements the restricted glob dialect used to exclude paths from scans and documents.
//
// Patterns are tested against the whole forward-slash relative path, not individual segments:
//
//	*term*   term occurs anywhere in the path
//	*suffix  the path ends with suffix
//	prefix*  the path starts with prefix
//	dir/     the path contains "dir/" anywhere
//	other    the path equals the pattern
//
// An empty pattern never matches. A bare "*" (or "**") matches every path, and "/" matches every
// path that contains a slash.
package ignore

import (
	"strings"
)

const (
	wildcard          = "*"
	directorySuffix   = "/"
	minimumWrappedLen = 2
)

// DefaultPatterns lists the patterns a fresh matcher starts with.
var DefaultPatterns = []string{
	"node_modules/",
	".git/",
	".next/",
	"dist/",
	"build/",
	"*.log",
	"package-lock.json",
}

// Matches reports whether relativePath matches a single pattern.
func Matches(relativePath string, pattern string) bool {
	if pattern == "" {
		return false
	}
	leading := strings.HasPrefix(pattern, wildcard)
	trailing := strings.HasSuffix(pattern, wildcard)
	switch {
	case leading && trailing:
		if len(pattern) < minimumWrappedLen {
			return true
		}
		return strings.Contains(relativePath, pattern[1:len(pattern)-1])
	case leading:
		return strings.HasSuffix(relativePath, pattern[1:])
	case trailing:
		return strings.HasPrefix(relativePath, pattern[:len(pattern)-1])
	case strings.HasSuffix(pattern, directorySuffix):
		return strings.Contains(relativePath, pattern)
	default:
		return relativePath == pattern
	}
}

// Matcher holds an ordered list of ignore patterns. Duplicates are kept so the list
// displays exactly what the user entered. The zero value ignores nothing.
type Matcher struct {
	patterns []string
}

// NewMatcher returns a matcher holding a copy of patterns. Blank entries are dropped.
func NewMatcher(patterns ...string) *Matcher {
	matcher := &Matcher{}
	for _, pattern := range patterns {
		matcher.Add(pattern)
	}
	return matcher
}

// ShouldIgnore reports whether any pattern matches relativePath.
func (matcher *Matcher) ShouldIgnore(relativePath string) bool {
	if matcher == nil {
		return false
	}
	for _, pattern := range matcher.patterns {
		if Matches(relativePath, pattern) {
			return true
		}
	}
	return false
}

// Add appends the trimmed pattern and reports whether anything was added.
// A nil matcher accepts nothing.
func (matcher *Matcher) Add(pattern string) bool {
	if matcher == nil {
		return false
	}
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return false
	}
	matcher.patterns = append(matcher.patterns, trimmed)
	return true
}

// Remove deletes every occurrence of pattern and reports whether any was present.
func (matcher *Matcher) Remove(pattern string) bool {
	if matcher == nil {
		return false
	}
	kept := matcher.patterns[:0]
	removed := false
	for _, existing := range matcher.patterns {
		if existing == pattern {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	matcher.patterns = kept
	return removed
}

// Patterns returns a copy of the patterns in insertion order.
func (matcher *Matcher) Patterns() []string {
	if matcher == nil {
		return nil
	}
	return append([]string(nil), matcher.patterns...)
}
