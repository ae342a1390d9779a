// Package ingest orchestrates document uploads: extract pages, chunk them,
// embed the chunks and persist everything in one atomic batch per document.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa/internal/chunker"
	"docqa/internal/contextutil"
	"docqa/internal/extractor"
	"docqa/internal/llm"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

// ErrEmptyDocument is returned when extraction yields no usable text.
// Nothing is persisted for such uploads.
var ErrEmptyDocument = errors.New("document contains no extractable text")

// UploadInput describes one uploaded file.
type UploadInput struct {
	Filename string
	FileType string // optional; derived from the filename extension when empty
	Data     []byte
}

// Result summarizes a successful ingestion.
type Result struct {
	DocumentID     string
	Filename       string
	PagesExtracted int
	ChunksCreated  int
}

// Pipeline turns uploads into stored, searchable chunks.
type Pipeline struct {
	extractors  *extractor.Registry
	chunker     *chunker.Chunker
	embedder    llm.Embedder
	store       storage.DocumentStore
	vectorIndex vectorstore.VectorStore // optional mirror; nil disables it
	collection  string
}

// NewPipeline creates an ingestion pipeline. vectorIndex may be nil; when
// set, chunk vectors are mirrored into the named collection after the store
// commit so the index-backed retriever can serve queries.
func NewPipeline(
	extractors *extractor.Registry,
	ch *chunker.Chunker,
	embedder llm.Embedder,
	store storage.DocumentStore,
	vectorIndex vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		extractors:  extractors,
		chunker:     ch,
		embedder:    embedder,
		store:       store,
		vectorIndex: vectorIndex,
		collection:  collection,
	}
}

// Ingest processes one upload end to end. Chunk order is preserved from
// extraction through storage. Every failure is terminal and leaves no
// partial document behind.
func (p *Pipeline) Ingest(ctx context.Context, in UploadInput) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	fileType := in.FileType
	if fileType == "" {
		fileType = strings.TrimPrefix(filepath.Ext(in.Filename), ".")
	}

	ext, err := p.extractors.ForType(fileType)
	if err != nil {
		return nil, err
	}

	pages, err := ext.Extract(in.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %q: %w", in.Filename, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyDocument, in.Filename)
	}

	var inputs []storage.ChunkInput
	for _, page := range pages {
		for _, content := range p.chunker.Split(page.Text) {
			inputs = append(inputs, storage.ChunkInput{
				Content:    content,
				PageNumber: page.Number,
			})
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyDocument, in.Filename)
	}

	texts := make([]string, len(inputs))
	for i, c := range inputs {
		texts[i] = c.Content
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(inputs), len(embeddings))
	}
	for i := range inputs {
		inputs[i].Embedding = embeddings[i]
	}

	doc := &storage.DocumentRecord{
		ID:            newDocumentID(in.Filename, time.Now()),
		Filename:      in.Filename,
		UploadedAt:    time.Now().UTC(),
		FileSizeBytes: int64(len(in.Data)),
		FileType:      fileType,
	}
	if err := p.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	records, err := p.store.AppendChunks(ctx, doc.ID, inputs)
	if err != nil {
		p.discard(ctx, doc.ID)
		return nil, err
	}

	if p.vectorIndex != nil {
		if err := p.mirror(ctx, doc, records); err != nil {
			p.discard(ctx, doc.ID)
			return nil, err
		}
	}

	logger.InfoContext(ctx, "document ingested",
		"document_id", doc.ID,
		"filename", in.Filename,
		"pages", len(pages),
		"chunks", len(records),
	)

	return &Result{
		DocumentID:     doc.ID,
		Filename:       in.Filename,
		PagesExtracted: len(pages),
		ChunksCreated:  len(records),
	}, nil
}

// mirror upserts the freshly stored chunks into the vector index with
// enough payload for the index-backed retriever to answer without a store
// lookup.
func (p *Pipeline) mirror(ctx context.Context, doc *storage.DocumentRecord, records []storage.ChunkRecord) error {
	points := make([]vectorstore.Point, len(records))
	for i, record := range records {
		points[i] = vectorstore.Point{
			ID:  record.ID,
			Vec: record.Embedding,
			Meta: map[string]any{
				"document_id": record.DocumentID,
				"filename":    doc.Filename,
				"page_number": record.PageNumber,
				"chunk_index": record.ChunkIndex,
				"content":     record.Content,
			},
		}
	}
	if err := p.vectorIndex.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to mirror chunks to vector index: %w", err)
	}
	return nil
}

// discard removes a document whose ingestion failed partway, so readers
// never observe a half-ingested upload.
func (p *Pipeline) discard(ctx context.Context, documentID string) {
	if err := p.store.DeleteDocument(ctx, documentID); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to discard partial document",
			"document_id", documentID, "error", err)
	}
}

// newDocumentID builds the "doc_<unix>_<name>" identifier the original
// backend used, plus a short random suffix so same-second uploads of the
// same filename cannot collide.
func newDocumentID(filename string, now time.Time) string {
	sanitized := strings.NewReplacer(".", "_", " ", "_").Replace(filename)
	return fmt.Sprintf("doc_%d_%s_%s", now.Unix(), sanitized, uuid.New().String()[:8])
}
