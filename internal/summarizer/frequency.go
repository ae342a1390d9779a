// Package summarizer provides a lightweight extractive summary used by the
// per-document summary endpoint. It needs no model: sentences are ranked by
// normalized word frequency and the best ones are returned in their
// original order.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxSentences is the summary length when the caller passes zero.
const DefaultMaxSentences = 5

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]`)

// Frequency ranks sentences by stopword-filtered token frequency.
type Frequency struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewFrequency creates a frequency-based summarizer.
func NewFrequency() *Frequency {
	return &Frequency{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:'\p{L}+)*`),
		stopwords:    stopwords(),
	}
}

// Summarize returns up to maxSentences of the highest-scoring sentences,
// kept in original order. Text without sentence punctuation is returned
// trimmed as-is.
func (s *Frequency) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}

	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	freq := make(map[string]float64)
	for _, sentence := range sentences {
		for _, token := range s.tokens(sentence) {
			if _, stop := s.stopwords[token]; stop {
				continue
			}
			freq[token]++
		}
	}
	var maxFreq float64
	for _, f := range freq {
		if f > maxFreq {
			maxFreq = f
		}
	}
	if maxFreq > 0 {
		for token, f := range freq {
			freq[token] = f / maxFreq
		}
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		tokens := s.tokens(sentence)
		var score float64
		for _, token := range tokens {
			score += freq[token]
		}
		// Length normalization so long sentences don't dominate.
		if len(tokens) > 0 {
			score /= math.Sqrt(float64(len(tokens)))
		}
		ranked[i] = scored{index: i, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if maxSentences > len(ranked) {
		maxSentences = len(ranked)
	}
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = ranked[i].index
	}
	sort.Ints(selected)

	parts := make([]string, 0, len(selected))
	for _, idx := range selected {
		parts = append(parts, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(parts, " ")
}

func (s *Frequency) tokens(text string) []string {
	return s.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "than", "so",
		"such", "into", "about", "between", "through", "during", "before",
		"after", "above", "below", "out", "off", "own", "same", "too",
		"very", "can", "will", "just", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
