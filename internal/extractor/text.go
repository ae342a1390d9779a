package extractor

import (
	"strings"
	"unicode/utf8"
)

// TextExtractor extracts plain text files as a single page.
// Invalid UTF-8 input is decoded as Latin-1 so legacy exports still ingest.
type TextExtractor struct{}

// Extract returns the trimmed file content as page 1, or zero pages when the
// file is empty after trimming.
func (e *TextExtractor) Extract(data []byte) ([]Page, error) {
	text := decodeText(data)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return []Page{{Number: 1, Text: text}}, nil
}

func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	// Latin-1: every byte maps directly to the code point of the same value.
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
