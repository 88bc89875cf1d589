package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"github.com/temirov/copier/internal/ignore"
	"github.com/temirov/copier/internal/tokenizer"
	"github.com/temirov/copier/internal/tree"
	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
)

const (
	treeRootLine            = ".\n"
	columnPath              = "PATH"
	columnSize              = "SIZE"
	columnMediaType         = "MEDIA TYPE"
	columnTokens            = "TOKENS"
	footerTotalFormat       = "%d files"
	notCountedMarker        = "-"
	unknownMediaType        = "unknown"
	warningTokenCountFailed = "failed to count tokens"
	scanFormatTable         = "table"
	scanFormatJSON          = "json"
	jsonIndent              = "  "
	errorUnknownFormatFmt   = "unsupported format %q (expected %s or %s)"
)

func writeTree(writer io.Writer, items []types.FileItem, ignorePatterns []string) error {
	rendered := tree.Render(tree.Build(items, ignore.NewMatcher(ignorePatterns...)))
	_, err := io.WriteString(writer, treeRootLine+rendered)
	return err
}

// scanListing is the input of the scan table. A nil counter omits the token column.
type scanListing struct {
	items       []types.FileItem
	maxFileSize int64
	counter     tokenizer.Counter
	model       string
}

// scanEntry is one row of the listing in either format.
type scanEntry struct {
	Path      string `json:"path"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"sizeBytes"`
	MediaType string `json:"mediaType"`
	Tokens    *int   `json:"tokens,omitempty"`
	Model     string `json:"model,omitempty"`
}

// collectScanEntries measures every item. Tokens stays nil for files that were not counted.
func collectScanEntries(listing scanListing, logger *zap.Logger) []scanEntry {
	entries := make([]scanEntry, 0, len(listing.items))
	for _, item := range listing.items {
		size := item.Source.Size()
		mediaType := item.Source.MediaType()
		if mediaType == "" {
			mediaType = unknownMediaType
		}
		entry := scanEntry{Path: item.Path, Size: utils.FormatFileSize(size), SizeBytes: size, MediaType: mediaType}
		if listing.counter != nil {
			result, countErr := tokenizer.CountSource(listing.counter, item.Source, listing.maxFileSize)
			if countErr != nil {
				logger.Warn(warningTokenCountFailed, zap.String("path", item.Path), zap.Error(countErr))
			} else if result.Counted {
				tokens := result.Tokens
				entry.Tokens = &tokens
				entry.Model = listing.model
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func writeScanListing(writer io.Writer, format string, listing scanListing, logger *zap.Logger) error {
	switch format {
	case "", scanFormatTable:
		return writeScanTable(writer, collectScanEntries(listing, logger), listing)
	case scanFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndent)
		encoder.SetEscapeHTML(false)
		return encoder.Encode(collectScanEntries(listing, logger))
	default:
		return fmt.Errorf(errorUnknownFormatFmt, format, scanFormatTable, scanFormatJSON)
	}
}

func writeScanTable(writer io.Writer, entries []scanEntry, listing scanListing) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(writer)
	tw.SetStyle(table.StyleLight)

	header := table.Row{columnPath, columnSize, columnMediaType}
	if listing.counter != nil {
		header = append(header, columnTokens)
	}
	tw.AppendHeader(header)

	var totalSize int64
	totalTokens := 0
	for _, entry := range entries {
		totalSize += entry.SizeBytes
		row := table.Row{entry.Path, entry.Size, entry.MediaType}
		if listing.counter != nil {
			if entry.Tokens == nil {
				row = append(row, notCountedMarker)
			} else {
				totalTokens += *entry.Tokens
				row = append(row, *entry.Tokens)
			}
		}
		tw.AppendRow(row)
	}

	footer := table.Row{fmt.Sprintf(footerTotalFormat, len(entries)), utils.FormatFileSize(totalSize), ""}
	if listing.counter != nil {
		footer = append(footer, fmt.Sprintf("%d (%s)", totalTokens, listing.model))
	}
	tw.AppendFooter(footer)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignRight},
	})
	tw.Render()
	return nil
}

// newTokenCounter picks the flag model, then the configured one, then the tokenizer default.
func newTokenCounter(flagModel string, configuredModel string) (tokenizer.Counter, string, error) {
	model := flagModel
	if model == "" {
		model = configuredModel
	}
	return tokenizer.NewCounter(model)
}

func (app *application) reportTokens(document string, model string) error {
	counter, modelName, counterErr := newTokenCounter(model, "")
	if counterErr != nil {
		return counterErr
	}
	tokens, countErr := counter.CountString(document)
	if countErr != nil {
		return fmt.Errorf("count tokens: %w", countErr)
	}
	_, err := fmt.Fprintf(app.stderr, messageTokensFormat, tokens, modelName)
	return err
}
