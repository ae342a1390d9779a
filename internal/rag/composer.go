package rag

import (
	"fmt"
	"strings"

	"docqa/internal/retriever"
)

const (
	// composerMaxChunks is how many top chunks the templated answer quotes.
	composerMaxChunks = 3
	// composerExcerptRunes caps each quoted excerpt.
	composerExcerptRunes = 300
)

// Compose assembles a templated answer from the ranked chunks. The phrasing
// template is picked by simple keyword matching on the query; the body
// quotes the top chunks with document and page attribution and always cites
// how many chunks backed the answer. It never fails: with no chunks it
// returns a fixed "nothing found" reply.
func Compose(query string, chunks []retriever.Match) string {
	if len(chunks) == 0 {
		return "I don't have information about that topic in the uploaded documents. Could you please upload relevant documents first?"
	}

	quoted := chunks
	if len(quoted) > composerMaxChunks {
		quoted = quoted[:composerMaxChunks]
	}

	parts := make([]string, 0, len(quoted))
	for _, chunk := range quoted {
		parts = append(parts, fmt.Sprintf("From %s (Page %d): %s", chunk.Filename, chunk.PageNumber, excerpt(chunk.Content)))
	}
	context := strings.Join(parts, "\n\n")

	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "what") || strings.Contains(q, "define") || strings.Contains(q, "explain"):
		return fmt.Sprintf("Based on your uploaded documents, here's what I found:\n\n%s\n\nThis information comes from %d relevant sections in your documents.", context, len(chunks))
	case strings.Contains(q, "how"):
		return fmt.Sprintf("Here's how to approach this based on your documents:\n\n%s\n\nI found this information across %d sections of your uploaded materials.", context, len(chunks))
	case strings.Contains(q, "why"):
		return fmt.Sprintf("The reason appears to be:\n\n%s\n\nThis explanation is compiled from %d relevant parts of your documents.", context, len(chunks))
	default:
		return fmt.Sprintf("Regarding your question about %q, here's what I found in your documents:\n\n%s\n\nSource: %d relevant sections from your uploaded files.", query, context, len(chunks))
	}
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= composerExcerptRunes {
		return content
	}
	return string(runes[:composerExcerptRunes]) + "..."
}
