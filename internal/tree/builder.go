// Package tree turns a flat list of file items into a sorted hierarchy and draws it as ASCII art.
package tree

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/temirov/copier/internal/ignore"
	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
)

// Build creates the hierarchy for every file item that matcher does not ignore.
// Directories come before files at every level and siblings of the same kind are
// ordered by a locale-aware comparison of their names.
func Build(files []types.FileItem, matcher *ignore.Matcher) *types.TreeNode {
	root := &types.TreeNode{IsDirectory: true}

	directoryPaths := map[string]struct{}{"": {}}
	var keptFiles []types.FileItem
	for _, file := range files {
		if matcher.ShouldIgnore(file.Path) {
			continue
		}
		keptFiles = append(keptFiles, file)
		parentPath, _ := utils.SplitEntryPath(file.Path)
		for ancestor := parentPath; ancestor != ""; ancestor, _ = utils.SplitEntryPath(ancestor) {
			if _, known := directoryPaths[ancestor]; known {
				break
			}
			directoryPaths[ancestor] = struct{}{}
		}
	}

	sortedDirectories := make([]string, 0, len(directoryPaths))
	for directoryPath := range directoryPaths {
		sortedDirectories = append(sortedDirectories, directoryPath)
	}
	sort.Strings(sortedDirectories)

	// A parent path is a strict prefix of its children, so sorted order creates parents first.
	nodesByPath := map[string]*types.TreeNode{"": root}
	for _, directoryPath := range sortedDirectories {
		if directoryPath == "" {
			continue
		}
		parentPath, name := utils.SplitEntryPath(directoryPath)
		node := &types.TreeNode{Name: name, IsDirectory: true, Path: directoryPath}
		nodesByPath[directoryPath] = node
		parent := nodesByPath[parentPath]
		parent.Children = append(parent.Children, node)
	}

	for _, file := range keptFiles {
		parentPath, name := utils.SplitEntryPath(file.Path)
		parent := nodesByPath[parentPath]
		parent.Children = append(parent.Children, &types.TreeNode{Name: name, Path: file.Path})
	}

	sortChildren(root, collate.New(language.Und))
	return root
}

func sortChildren(node *types.TreeNode, collator *collate.Collator) {
	sort.SliceStable(node.Children, func(leftIndex, rightIndex int) bool {
		left, right := node.Children[leftIndex], node.Children[rightIndex]
		if left.IsDirectory != right.IsDirectory {
			return left.IsDirectory
		}
		if comparison := collator.CompareString(left.Name, right.Name); comparison != 0 {
			return comparison < 0
		}
		return strings.Compare(left.Name, right.Name) < 0
	})
	for _, child := range node.Children {
		if child.IsDirectory {
			sortChildren(child, collator)
		}
	}
}
