package chunker

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the default number of words per chunk.
	DefaultChunkSize = 500
	// DefaultOverlap is the default number of words shared between consecutive chunks.
	DefaultOverlap = 50
)

// ErrInvalidConfig is returned when chunking parameters would not terminate
// or would produce degenerate output.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

// Chunker splits page text into overlapping fixed-size word windows.
// Splitting is a pure function: the same input always yields the same chunks.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. size is the number of words per chunk, overlap the
// number of words shared between consecutive chunks. overlap must be smaller
// than size, otherwise the window would never advance.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured words-per-chunk window size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }

// Split tokenizes text on whitespace and emits word windows of the configured
// size, each window starting size-overlap words after the previous one.
// The final window may be shorter than the configured size; short trailing
// chunks are kept, only chunks that are empty after trimming are dropped.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.TrimSpace(strings.Join(words[i:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
