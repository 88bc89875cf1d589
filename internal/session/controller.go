// Package session holds the interactive state of one copier session: the selected root, the
// accumulated file list, the ignore patterns, project metadata and the last generated document.
// Front ends own a Controller and drive the walker and the assembler through it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/copier/internal/ignore"
	"github.com/temirov/copier/internal/markdown"
	"github.com/temirov/copier/internal/services/clipboard"
	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
	"github.com/temirov/copier/internal/walker"
)

var (
	// ErrBusy is returned when a scan or generation is already running.
	ErrBusy = errors.New("another scan or generation is in progress")
	// ErrNoRoot is returned by operations that need a selected root.
	ErrNoRoot = errors.New("no root folder selected")
	// ErrNoMarkdown is returned when there is no generated document to export.
	ErrNoMarkdown = errors.New("no markdown generated yet")
)

const (
	markdownFilePermissions = 0o644
	infoScanComplete        = "scan complete"
	infoGenerationComplete  = "markdown generated"
)

// Options configures a Controller.
type Options struct {
	// IgnorePatterns seeds the ignore list. Nil starts empty.
	IgnorePatterns []string
	MaxDepth       int
	Assembler      markdown.Assembler
	Logger         *zap.Logger
}

// Snapshot is a copy of the controller state safe to read without locking.
type Snapshot struct {
	RootName           string
	HasRoot            bool
	Files              []types.FileItem
	IgnorePatterns     []string
	ProjectName        string
	ProjectDescription string
	Markdown           string
	Busy               bool
}

// Controller serialises scans and generations over one session state.
type Controller struct {
	mutex              sync.Mutex
	busy               bool
	rootName           string
	rootFS             fs.FS
	files              []types.FileItem
	matcher            *ignore.Matcher
	projectName        string
	projectDescription string
	markdown           string
	maxDepth           int
	assembler          markdown.Assembler
	logger             *zap.Logger
}

// New returns a controller with no root selected.
func New(options Options) *Controller {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	assembler := options.Assembler
	if assembler.Logger == nil {
		assembler.Logger = logger
	}
	return &Controller{
		matcher:   ignore.NewMatcher(options.IgnorePatterns...),
		maxDepth:  options.MaxDepth,
		assembler: assembler,
		logger:    logger,
	}
}

func (controller *Controller) begin() error {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	if controller.busy {
		return ErrBusy
	}
	controller.busy = true
	return nil
}

func (controller *Controller) end() {
	controller.mutex.Lock()
	controller.busy = false
	controller.mutex.Unlock()
}

// SelectRoot makes fsys the root named rootName, discards the current files and document, and
// scans the new root. On scan failure the root stays selected with an empty file list.
func (controller *Controller) SelectRoot(ctx context.Context, rootName string, fsys fs.FS) (int, error) {
	if err := controller.begin(); err != nil {
		return 0, err
	}
	defer controller.end()

	controller.mutex.Lock()
	controller.rootName = rootName
	controller.rootFS = fsys
	controller.files = nil
	controller.markdown = ""
	controller.mutex.Unlock()

	return controller.scan(ctx)
}

// Rescan walks the selected root again and replaces the file list. The list is left unchanged
// when the root cannot be enumerated.
func (controller *Controller) Rescan(ctx context.Context) (int, error) {
	if err := controller.begin(); err != nil {
		return 0, err
	}
	defer controller.end()
	return controller.scan(ctx)
}

func (controller *Controller) scan(ctx context.Context) (int, error) {
	controller.mutex.Lock()
	fsys := controller.rootFS
	matcher := ignore.NewMatcher(controller.matcher.Patterns()...)
	controller.mutex.Unlock()

	if fsys == nil {
		return 0, ErrNoRoot
	}
	items, scanError := walker.Scan(ctx, fsys, matcher, walker.Options{MaxDepth: controller.maxDepth, Logger: controller.logger})
	if scanError != nil {
		return 0, scanError
	}

	controller.mutex.Lock()
	controller.files = items
	controller.mutex.Unlock()
	controller.logger.Debug(infoScanComplete, zap.Int("files", len(items)))
	return len(items), nil
}

// AddFiles appends individually picked items to the file list.
func (controller *Controller) AddFiles(items ...types.FileItem) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.files = append(controller.files, items...)
}

// ClearFiles empties the file list and the generated document.
func (controller *Controller) ClearFiles() {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.files = nil
	controller.markdown = ""
}

// ResetRoot forgets the root together with its files and document.
func (controller *Controller) ResetRoot() {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.rootName = ""
	controller.rootFS = nil
	controller.files = nil
	controller.markdown = ""
}

// AddIgnorePattern appends a trimmed pattern. Blank input is ignored and reported as false.
func (controller *Controller) AddIgnorePattern(pattern string) bool {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.matcher.Add(pattern)
}

// RemoveIgnorePattern removes every occurrence of pattern.
func (controller *Controller) RemoveIgnorePattern(pattern string) bool {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.matcher.Remove(pattern)
}

// SetProject records the optional project name and description.
func (controller *Controller) SetProject(name string, description string) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.projectName = name
	controller.projectDescription = description
}

// Generate assembles the document from the current files and patterns. With no root or no
// files it does nothing and returns an empty string. A failed generation keeps the previous document.
func (controller *Controller) Generate(ctx context.Context) (string, error) {
	if err := controller.begin(); err != nil {
		return "", err
	}
	defer controller.end()

	controller.mutex.Lock()
	request := types.GenerationRequest{
		RootName:           controller.rootName,
		ProjectName:        controller.projectName,
		ProjectDescription: controller.projectDescription,
		Files:              append([]types.FileItem(nil), controller.files...),
		IgnorePatterns:     controller.matcher.Patterns(),
	}
	controller.mutex.Unlock()

	if request.RootName == "" || len(request.Files) == 0 {
		return "", nil
	}
	document, generateError := controller.assembler.Generate(ctx, request)
	if generateError != nil {
		return "", generateError
	}

	controller.mutex.Lock()
	controller.markdown = document
	controller.mutex.Unlock()
	controller.logger.Debug(infoGenerationComplete, zap.Int("files", len(request.Files)), zap.Int("bytes", len(document)))
	return document, nil
}

// Markdown returns the last generated document.
func (controller *Controller) Markdown() string {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.markdown
}

// DownloadName returns "<root>-structure.md", or "code-structure.md" when no root is selected.
func (controller *Controller) DownloadName() string {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	stem := controller.rootName
	if stem == "" {
		stem = utils.DefaultDownloadStem
	}
	return stem + utils.DownloadSuffix
}

// SaveMarkdown writes the document into directory under DownloadName and returns the file path.
func (controller *Controller) SaveMarkdown(directory string) (string, error) {
	document := controller.Markdown()
	if document == "" {
		return "", ErrNoMarkdown
	}
	destination := filepath.Join(directory, controller.DownloadName())
	if writeError := os.WriteFile(destination, []byte(document), markdownFilePermissions); writeError != nil {
		return "", fmt.Errorf("save markdown: %w", writeError)
	}
	return destination, nil
}

// CopyMarkdown hands the document to copier.
func (controller *Controller) CopyMarkdown(copier clipboard.Copier) error {
	document := controller.Markdown()
	if document == "" {
		return ErrNoMarkdown
	}
	return copier.Copy(document)
}

// Snapshot returns a copy of the current state.
func (controller *Controller) Snapshot() Snapshot {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return Snapshot{
		RootName:           controller.rootName,
		HasRoot:            controller.rootFS != nil || controller.rootName != "",
		Files:              append([]types.FileItem(nil), controller.files...),
		IgnorePatterns:     controller.matcher.Patterns(),
		ProjectName:        controller.projectName,
		ProjectDescription: controller.projectDescription,
		Markdown:           controller.markdown,
		Busy:               controller.busy,
	}
}
