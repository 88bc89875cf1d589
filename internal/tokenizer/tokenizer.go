// Package tokenizer estimates how many model tokens a generated document will consume.
package tokenizer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

var errNilCounter = errors.New("nil tokenizer counter")

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// NewCounter returns a counter for model together with the name of the encoding actually used.
// Models unknown to tiktoken fall back to the cl100k_base encoding.
func NewCounter(model string) (Counter, string, error) {
	lowerModel := strings.ToLower(strings.TrimSpace(model))
	if lowerModel == "" {
		lowerModel = DefaultModel
	}
	encoding, err := tiktoken.EncodingForModel(lowerModel)
	if err == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: lowerModel}, lowerModel, nil
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackErr)
	}
	return tiktokenCounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

// CountResult captures the outcome of counting a single content source.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data. Invalid UTF-8 is reported as not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if !utf8.Valid(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountSource estimates tokens for a file item's content. Sources larger than maxSize or with a
// non-textual media type are skipped the same way the document skips them.
func CountSource(counter Counter, source types.ContentSource, maxSize int64) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if source == nil || (maxSize > 0 && source.Size() > maxSize) || !utils.IsTextualMediaType(source.MediaType()) {
		return CountResult{Counted: false}, nil
	}
	reader, openError := source.Open()
	if openError != nil {
		return CountResult{}, openError
	}
	defer reader.Close()
	data, readError := io.ReadAll(reader)
	if readError != nil {
		return CountResult{}, readError
	}
	return CountBytes(counter, data)
}
