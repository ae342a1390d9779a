package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docqa/internal/storage DocumentStore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateDocument is returned when creating a document whose ID already exists.
	ErrDuplicateDocument = errors.New("duplicate document")
	// ErrStorageIO wraps failures of the underlying storage engine.
	ErrStorageIO = errors.New("storage I/O error")
)

// DocumentStore is the single source of truth for documents and their
// chunks. It is the only shared mutable state in the retrieval core;
// implementations must serialize concurrent AppendChunks calls for the same
// document and must never expose a document whose total_chunks disagrees
// with its chunk rows.
type DocumentStore interface {
	// CreateDocument persists a new document with zero chunks.
	// Returns ErrDuplicateDocument if the ID already exists.
	CreateDocument(ctx context.Context, doc *DocumentRecord) error

	// AppendChunks atomically appends a batch of chunks to a document,
	// assigning contiguous chunk indices that continue from the current
	// count, and updates the document's total. Returns the stored records
	// in batch order, or ErrNotFound if the document does not exist.
	AppendChunks(ctx context.Context, documentID string, chunks []ChunkInput) ([]ChunkRecord, error)

	// ForEachChunk streams every chunk in the corpus to fn, ordered by
	// document upload time (oldest first) and then chunk index. A non-nil
	// error from fn stops the scan and is returned unchanged.
	ForEachChunk(ctx context.Context, fn func(StoredChunk) error) error

	// ListDocuments returns all documents, newest upload first.
	ListDocuments(ctx context.Context) ([]*DocumentRecord, error)

	// GetDocument returns one document by ID, or ErrNotFound.
	GetDocument(ctx context.Context, id string) (*DocumentRecord, error)

	// ListChunksByDocument returns a document's chunks ordered by chunk
	// index, or ErrNotFound if the document does not exist.
	ListChunksByDocument(ctx context.Context, documentID string) ([]*ChunkRecord, error)

	// DeleteDocument removes a document and all its chunks, or ErrNotFound.
	DeleteDocument(ctx context.Context, id string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
