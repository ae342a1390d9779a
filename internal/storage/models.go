package storage

import "time"

// DocumentRecord represents an ingested document in the corpus.
type DocumentRecord struct {
	ID            string    // Opaque, generated at ingestion time, immutable
	Filename      string    // Original upload name, informational only
	UploadedAt    time.Time // Ingestion time; listing order is newest first
	TotalChunks   int       // Always equals the number of stored chunk rows
	FileSizeBytes int64
	FileType      string
}

// ChunkRecord represents one stored passage of a document.
type ChunkRecord struct {
	ID         string    // UUID
	DocumentID string    // Foreign key to documents.id
	ChunkIndex int       // 0-based, contiguous within a document
	PageNumber int       // 1-based source page
	Content    string    // Never empty
	CharCount  int       // len(Content)
	Embedding  []float32 // Fixed length for the whole corpus
}

// ChunkInput is one chunk to append. The store assigns the ID and the
// chunk index from the position in the batch.
type ChunkInput struct {
	Content    string
	PageNumber int
	Embedding  []float32
}

// StoredChunk is the scan-side view of a chunk used by the retriever,
// joined with its document's filename.
type StoredChunk struct {
	DocumentID string
	Filename   string
	PageNumber int
	ChunkIndex int
	Content    string
	Embedding  []float32
}
