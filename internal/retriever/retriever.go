// Package retriever ranks stored chunks by cosine similarity to a query
// embedding. The default strategy is a full linear scan of the document
// store: O(corpus size x vector dimensionality) per query, which is the
// right trade at the scale of a handful of uploaded documents. An optional
// index-backed strategy delegates to an external vector index instead.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"docqa/internal/storage"
)

// DefaultTopK is the number of results returned when the caller does not
// specify one.
const DefaultTopK = 5

// ErrDimensionMismatch is returned when the query embedding and a stored
// embedding have different lengths. Embeddings from different models must
// never be compared, so this fails the whole search instead of truncating.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Match is one ranked chunk.
type Match struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// Params control a search.
type Params struct {
	// TopK bounds the result count; DefaultTopK when zero or negative.
	TopK int
	// MinScore, when positive, drops matches scoring below it. The
	// retriever itself applies no relevance floor by default.
	MinScore float64
}

// Scanner streams the stored chunk corpus. storage.DocumentStore satisfies it.
type Scanner interface {
	ForEachChunk(ctx context.Context, fn func(storage.StoredChunk) error) error
}

// Retriever ranks chunks by scanning the full corpus.
type Retriever struct {
	store Scanner
}

// New creates a scan-based retriever over the given store.
func New(store Scanner) *Retriever {
	return &Retriever{store: store}
}

// Search scores every stored chunk against the query embedding and returns
// the top K by cosine similarity. Ordering is deterministic: ties keep the
// scan order, which is document upload order then chunk index. A zero-norm
// embedding scores 0 rather than being skipped or failing, so a misbehaving
// embedder surfaces as clearly-low scores instead of missing candidates.
func (r *Retriever) Search(ctx context.Context, query []float32, params Params) ([]Match, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}

	queryNorm := norm(query)

	var matches []Match
	err := r.store.ForEachChunk(ctx, func(sc storage.StoredChunk) error {
		if len(sc.Embedding) != len(query) {
			return fmt.Errorf("%w: stored chunk %s/%d has dimension %d, query has %d",
				ErrDimensionMismatch, sc.DocumentID, sc.ChunkIndex, len(sc.Embedding), len(query))
		}
		matches = append(matches, Match{
			DocumentID: sc.DocumentID,
			Filename:   sc.Filename,
			PageNumber: sc.PageNumber,
			ChunkIndex: sc.ChunkIndex,
			Content:    sc.Content,
			Similarity: cosine(query, sc.Embedding, queryNorm),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	return truncate(matches, params), nil
}

// truncate applies the MinScore floor and the TopK bound to an already
// ranked match list.
func truncate(matches []Match, params Params) []Match {
	if params.MinScore > 0 {
		kept := matches[:0]
		for _, m := range matches {
			if m.Similarity >= params.MinScore {
				kept = append(kept, m)
			}
		}
		matches = kept
	}

	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// cosine computes dot(query, vec) / (|query| * |vec|), or 0 when either
// norm is zero.
func cosine(query, vec []float32, queryNorm float64) float64 {
	vecNorm := norm(vec)
	if queryNorm == 0 || vecNorm == 0 {
		return 0
	}

	var dot float64
	for i := range query {
		dot += float64(query[i]) * float64(vec[i])
	}
	return dot / (queryNorm * vecNorm)
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
