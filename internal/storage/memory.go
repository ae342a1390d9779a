package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore backend for tests and
// ephemeral deployments where no filesystem persistence is available.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]*memoryDocument
	order []string // document IDs in creation order
}

type memoryDocument struct {
	record DocumentRecord
	chunks []ChunkRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*memoryDocument)}
}

// CreateDocument persists a new document with zero chunks.
func (s *MemoryStore) CreateDocument(ctx context.Context, doc *DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("%w: document %q", ErrDuplicateDocument, doc.ID)
	}

	record := *doc
	record.TotalChunks = 0
	s.docs[doc.ID] = &memoryDocument{record: record}
	s.order = append(s.order, doc.ID)
	return nil
}

// AppendChunks atomically appends a batch of chunks to a document. The
// store mutex serializes concurrent appends for the same document.
func (s *MemoryStore) AppendChunks(ctx context.Context, documentID string, chunks []ChunkInput) ([]ChunkRecord, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	for i, c := range chunks {
		if c.Content == "" {
			return nil, fmt.Errorf("chunk %d has empty content", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: document %q", ErrNotFound, documentID)
	}

	start := len(doc.chunks)
	records := make([]ChunkRecord, len(chunks))
	for i, c := range chunks {
		embedding := make([]float32, len(c.Embedding))
		copy(embedding, c.Embedding)
		records[i] = ChunkRecord{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			ChunkIndex: start + i,
			PageNumber: c.PageNumber,
			Content:    c.Content,
			CharCount:  len(c.Content),
			Embedding:  embedding,
		}
	}
	doc.chunks = append(doc.chunks, records...)
	doc.record.TotalChunks = len(doc.chunks)
	return records, nil
}

// ForEachChunk streams every chunk to fn in document creation order, then
// chunk index. The snapshot is taken under the read lock, so a concurrent
// ingest is either fully visible or not at all.
func (s *MemoryStore) ForEachChunk(ctx context.Context, fn func(StoredChunk) error) error {
	s.mu.RLock()
	var snapshot []StoredChunk
	for _, id := range s.order {
		doc := s.docs[id]
		for _, c := range doc.chunks {
			snapshot = append(snapshot, StoredChunk{
				DocumentID: c.DocumentID,
				Filename:   doc.record.Filename,
				PageNumber: c.PageNumber,
				ChunkIndex: c.ChunkIndex,
				Content:    c.Content,
				Embedding:  c.Embedding,
			})
		}
	}
	s.mu.RUnlock()

	for _, sc := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			return err
		}
	}
	return nil
}

// ListDocuments returns all documents, newest upload first.
func (s *MemoryStore) ListDocuments(ctx context.Context) ([]*DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*DocumentRecord, 0, len(s.docs))
	for _, id := range s.order {
		record := s.docs[id].record
		docs = append(docs, &record)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// GetDocument returns one document by ID.
func (s *MemoryStore) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %q", ErrNotFound, id)
	}
	record := doc.record
	return &record, nil
}

// ListChunksByDocument returns a document's chunks ordered by chunk index.
func (s *MemoryStore) ListChunksByDocument(ctx context.Context, documentID string) ([]*ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: document %q", ErrNotFound, documentID)
	}
	chunks := make([]*ChunkRecord, len(doc.chunks))
	for i := range doc.chunks {
		record := doc.chunks[i]
		chunks[i] = &record
	}
	return chunks, nil
}

// DeleteDocument removes a document and its chunks.
func (s *MemoryStore) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("%w: document %q", ErrNotFound, id)
	}
	delete(s.docs, id)
	for i, docID := range s.order {
		if docID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close releases nothing; it exists to satisfy DocumentStore.
func (s *MemoryStore) Close() error { return nil }
