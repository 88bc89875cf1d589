// Package markdown assembles the single document holding the directory tree and file contents.
package markdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/copier/internal/ignore"
	"github.com/temirov/copier/internal/tree"
	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
)

// DefaultMaxFileSize is the largest file whose content is embedded.
const DefaultMaxFileSize int64 = 1024 * 1024

// DefaultReadTimeout bounds reading a single file.
const DefaultReadTimeout = 5 * time.Second

const (
	documentTitle          = "# Code Structure\n\n"
	projectNameFormat      = "> Project Name: \"%s\"\n\n"
	descriptionFormat      = "> %s\n\n"
	rootPathHeading        = "## Root path: \n%s\n\n"
	structureHeading       = "## Directory structure:\n\n"
	treeFenceOpening       = "```tree\n.\n"
	contentsHeading        = "\n## File contents:\n\n"
	fileHeaderFormat       = "**File: `./%s`**\n\n"
	tooLargeFormat         = "File too large to display (%s)"
	binaryFileFormat       = "Binary file (%s)"
	readErrorFormat        = "Error reading file content: %s"
	minimumFenceLength     = 3
	fenceCharacter         = "`"
	warningReadFileContent = "rendering placeholder for unreadable file"
)

// ErrReadTimeout reports that a single file could not be read within the read timeout.
var ErrReadTimeout = errors.New("reading file content timed out")

// Assembler renders generation requests into markdown.
type Assembler struct {
	// MaxFileSize is the largest embedded file in bytes. Zero uses DefaultMaxFileSize.
	MaxFileSize int64
	// ReadTimeout bounds each file read. Zero uses DefaultReadTimeout.
	ReadTimeout time.Duration
	Logger      *zap.Logger
}

// Generate builds the document for request. An empty root name or file list is a no-op that
// returns an empty string. Problems with individual files become inline placeholders; only
// cancellation of ctx aborts the document.
func (assembler Assembler) Generate(ctx context.Context, request types.GenerationRequest) (string, error) {
	if request.RootName == "" || len(request.Files) == 0 {
		return "", nil
	}
	assembler = assembler.withDefaults()
	matcher := ignore.NewMatcher(request.IgnorePatterns...)

	var builder strings.Builder
	builder.WriteString(documentTitle)
	if name := strings.TrimSpace(request.ProjectName); name != "" {
		fmt.Fprintf(&builder, projectNameFormat, name)
	}
	if description := strings.TrimSpace(request.ProjectDescription); description != "" {
		fmt.Fprintf(&builder, descriptionFormat, description)
	}
	fmt.Fprintf(&builder, rootPathHeading, request.RootName)

	builder.WriteString(structureHeading)
	builder.WriteString(treeFenceOpening)
	builder.WriteString(tree.Render(tree.Build(request.Files, matcher)))
	builder.WriteString("```\n")

	builder.WriteString(contentsHeading)
	for _, file := range request.Files {
		if matcher.ShouldIgnore(file.Path) {
			continue
		}
		fmt.Fprintf(&builder, fileHeaderFormat, file.Path)
		language, body, err := assembler.fileBody(ctx, file)
		if err != nil {
			return "", err
		}
		writeFencedBlock(&builder, language, body)
	}
	return builder.String(), nil
}

func (assembler Assembler) withDefaults() Assembler {
	if assembler.MaxFileSize <= 0 {
		assembler.MaxFileSize = DefaultMaxFileSize
	}
	if assembler.ReadTimeout <= 0 {
		assembler.ReadTimeout = DefaultReadTimeout
	}
	if assembler.Logger == nil {
		assembler.Logger = zap.NewNop()
	}
	return assembler
}

// fileBody returns the fence language and the text to embed. Placeholders carry no language.
func (assembler Assembler) fileBody(ctx context.Context, file types.FileItem) (string, string, error) {
	source := file.Source
	if source == nil {
		return "", fmt.Sprintf(readErrorFormat, "no content source"), nil
	}
	if size := source.Size(); size > assembler.MaxFileSize {
		return "", fmt.Sprintf(tooLargeFormat, utils.FormatFileSize(size)), nil
	}
	result, readError := readWithTimeout(ctx, source, assembler.ReadTimeout)
	if readError != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		assembler.Logger.Warn(warningReadFileContent, zap.String("path", file.Path), zap.Error(readError))
		return "", fmt.Sprintf(readErrorFormat, readError.Error()), nil
	}
	if !utils.IsTextualMediaType(result.mediaType) {
		return "", fmt.Sprintf(binaryFileFormat, result.mediaType), nil
	}
	return LanguageTag(file.Path), result.content, nil
}

type readResult struct {
	mediaType string
	content   string
	err       error
}

// readWithTimeout resolves the media type and, for textual sources, the content on a helper
// goroutine. Sniffing opens the source too, so both steps share the deadline.
func readWithTimeout(ctx context.Context, source types.ContentSource, timeout time.Duration) (readResult, error) {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(chan readResult, 1)
	go func() {
		mediaType := source.MediaType()
		if !utils.IsTextualMediaType(mediaType) {
			results <- readResult{mediaType: mediaType}
			return
		}
		reader, openError := source.Open()
		if openError != nil {
			results <- readResult{err: openError}
			return
		}
		defer reader.Close()
		data, readError := io.ReadAll(reader)
		results <- readResult{mediaType: mediaType, content: string(data), err: readError}
	}()

	select {
	case result := <-results:
		return result, result.err
	case <-readCtx.Done():
		if ctx.Err() != nil {
			return readResult{}, ctx.Err()
		}
		return readResult{}, ErrReadTimeout
	}
}

// writeFencedBlock writes body inside a fence long enough that no backtick run in body closes it.
func writeFencedBlock(builder *strings.Builder, language string, body string) {
	fence := strings.Repeat(fenceCharacter, fenceLength(body))
	builder.WriteString(fence)
	builder.WriteString(language)
	builder.WriteString("\n")
	builder.WriteString(body)
	builder.WriteString("\n")
	builder.WriteString(fence)
	builder.WriteString("\n\n")
}

func fenceLength(body string) int {
	longestRun, currentRun := 0, 0
	for index := 0; index < len(body); index++ {
		if body[index] == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	if longestRun < minimumFenceLength {
		return minimumFenceLength
	}
	return longestRun + 1
}
