package rag

import "docqa/internal/retriever"

// AskRequest represents a RAG query.
type AskRequest struct {
	// Message is the user's question.
	Message string `json:"message"`
	// TopK optionally bounds how many chunks are retrieved (default 5).
	TopK int `json:"top_k,omitempty"`
	// MinSimilarity optionally drops chunks scoring below it. Zero means
	// no floor; the engine never applies one on its own.
	MinSimilarity float64 `json:"min_similarity,omitempty"`
}

// AskResponse represents the answer to a RAG query.
type AskResponse struct {
	// Response is the composed answer.
	Response string `json:"response"`
	// RelevantChunks are the retrieved chunks in rank order. The answer
	// only ever cites chunks present here.
	RelevantChunks []retriever.Match `json:"relevant_chunks"`
	// Confidence is the mean similarity of the retrieved chunks, 0 when
	// nothing was retrieved.
	Confidence float64 `json:"confidence"`
	// DocumentSources are the unique source filenames in rank order.
	DocumentSources []string `json:"document_sources"`
}
