// Package extractor turns uploaded file bytes into ordered (page, text)
// pairs. Text-based formats are handled in-process; binary formats such as
// PDF and DOCX are provided by injected implementations registered at
// startup.
package extractor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedFileType is returned when no extractor is registered for the
// requested file type.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Page is one unit of extracted text. Number is 1-based. Formats without
// page structure (plain text, markdown) report a single page.
type Page struct {
	Number int
	Text   string
}

// Extractor extracts the readable text of one file format.
type Extractor interface {
	// Extract returns the non-empty pages of the document in order.
	// A document with no extractable text yields zero pages, not an error.
	Extract(data []byte) ([]Page, error)
}

// Registry maps normalized file extensions to extractors.
type Registry struct {
	byType map[string]Extractor
}

// NewRegistry creates a registry with the built-in text-format extractors
// registered (txt, md, markdown, json, csv).
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]Extractor)}
	r.Register("txt", &TextExtractor{})
	md := NewMarkdownExtractor()
	r.Register("md", md)
	r.Register("markdown", md)
	r.Register("json", &JSONExtractor{})
	r.Register("csv", &CSVExtractor{})
	return r
}

// Register adds or replaces the extractor for a file type. The type is
// normalized, so "PDF", ".pdf" and "pdf" are equivalent.
func (r *Registry) Register(fileType string, e Extractor) {
	r.byType[normalizeType(fileType)] = e
}

// ForType returns the extractor registered for the given file type.
func (r *Registry) ForType(fileType string) (Extractor, error) {
	e, ok := r.byType[normalizeType(fileType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFileType, fileType, strings.Join(r.SupportedTypes(), ", "))
	}
	return e, nil
}

// SupportedTypes returns the registered file types in sorted order.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func normalizeType(fileType string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileType), "."))
}
