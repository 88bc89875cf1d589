package utils

import (
	"io"
	"mime"
	"net/http"
	"strings"
)

// sniffLength is the number of bytes http.DetectContentType considers.
const sniffLength = 512

var textualApplicationMediaTypes = map[string]struct{}{
	"application/json":       {},
	"application/javascript": {},
	"application/xml":        {},
}

// DetectMediaType sniffs the media type of the content behind reader and strips parameters,
// so "text/plain; charset=utf-8" becomes "text/plain". Read failures yield an empty string.
func DetectMediaType(reader io.Reader) string {
	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(reader, buffer)
	if readError != nil && readError != io.EOF && readError != io.ErrUnexpectedEOF {
		return EmptyString
	}
	return NormalizeMediaType(http.DetectContentType(buffer[:bytesRead]))
}

// NormalizeMediaType lower-cases a media type and removes any parameters.
func NormalizeMediaType(mediaType string) string {
	trimmed := strings.TrimSpace(mediaType)
	if trimmed == "" {
		return EmptyString
	}
	parsed, _, parseError := mime.ParseMediaType(trimmed)
	if parseError != nil {
		if separatorIndex := strings.Index(trimmed, ";"); separatorIndex >= 0 {
			trimmed = trimmed[:separatorIndex]
		}
		return strings.ToLower(strings.TrimSpace(trimmed))
	}
	return parsed
}

// IsTextualMediaType reports whether content of the declared media type may be shown inline.
// An empty media type counts as textual because nothing was declared.
func IsTextualMediaType(mediaType string) bool {
	normalized := NormalizeMediaType(mediaType)
	if normalized == "" || strings.HasPrefix(normalized, "text/") {
		return true
	}
	_, allowed := textualApplicationMediaTypes[normalized]
	return allowed
}
