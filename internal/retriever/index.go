package retriever

import (
	"context"
	"fmt"

	"docqa/internal/vectorstore"
)

// IndexRetriever ranks chunks through an external vector index instead of
// scanning the document store. The point payload written at ingestion time
// carries everything a Match needs, so no store lookup happens on the
// query path.
type IndexRetriever struct {
	index      vectorstore.VectorStore
	collection string
}

// NewIndexRetriever creates an index-backed retriever.
func NewIndexRetriever(index vectorstore.VectorStore, collection string) *IndexRetriever {
	return &IndexRetriever{index: index, collection: collection}
}

// Search queries the vector index and maps its payloads back to matches.
func (r *IndexRetriever) Search(ctx context.Context, query []float32, params Params) ([]Match, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}

	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	results, err := r.index.Search(ctx, r.collection, query, topK)
	if err != nil {
		return nil, fmt.Errorf("vector index search: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		matches = append(matches, Match{
			DocumentID: metaString(result.Meta, "document_id"),
			Filename:   metaString(result.Meta, "filename"),
			PageNumber: metaInt(result.Meta, "page_number"),
			ChunkIndex: metaInt(result.Meta, "chunk_index"),
			Content:    metaString(result.Meta, "content"),
			Similarity: float64(result.Score),
		})
	}
	return truncate(matches, params), nil
}

func metaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
