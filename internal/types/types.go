// Package types defines every cross‑package data structure used by the copier CLI.
package types

import "io"

// Names shared by the HTTP API: the command it executes and the format of its output.
const (
	CommandGenerate = "generate"
	FormatMarkdown  = "markdown"
)

// ContentSource is the opaque handle behind a FileItem.
type ContentSource interface {
	Name() string
	Size() int64
	// MediaType returns the declared media type without parameters, or an empty string when unknown.
	MediaType() string
	Open() (io.ReadCloser, error)
}

// FileItem pairs a content source with its forward-slash path relative to the selected root.
type FileItem struct {
	Source ContentSource
	Path   string
}

// TreeNode is one directory or file of the rendered hierarchy. The root node has an empty name and path.
type TreeNode struct {
	Name        string
	IsDirectory bool
	Path        string
	Children    []*TreeNode
}

// GenerationRequest is the snapshot handed to the markdown assembler.
type GenerationRequest struct {
	RootName           string
	ProjectName        string
	ProjectDescription string
	Files              []FileItem
	IgnorePatterns     []string
}
