// Package clipboard places generated documents on the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable reports that no clipboard utility exists on this system.
var ErrUnavailable = errors.New("system clipboard is unavailable")

const emptyDocumentMessage = "nothing to copy"

// Copier receives document text.
type Copier interface {
	Copy(text string) error
}

// Service writes to the system clipboard through github.com/atotto/clipboard.
type Service struct {
	write       func(string) error
	unsupported func() bool
}

// NewService returns a Service backed by the system clipboard.
func NewService() *Service {
	return &Service{
		write:       clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
}

// NewServiceWithWriter returns a Service delivering text to write instead of the system clipboard.
func NewServiceWithWriter(write func(string) error) *Service {
	return &Service{write: write, unsupported: func() bool { return false }}
}

// Copy places text on the clipboard. Empty text is rejected.
func (service *Service) Copy(text string) error {
	if text == "" {
		return errors.New(emptyDocumentMessage)
	}
	if service.unsupported() {
		return ErrUnavailable
	}
	if writeError := service.write(text); writeError != nil {
		return fmt.Errorf("write clipboard: %w", writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
