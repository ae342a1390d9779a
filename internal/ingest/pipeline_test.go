package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa/internal/chunker"
	"docqa/internal/extractor"
	llmmocks "docqa/internal/llm/mocks"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
	vsmocks "docqa/internal/vectorstore/mocks"
)

func testText(words int) []byte {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return []byte(strings.Join(parts, " "))
}

func newTestPipeline(t *testing.T, embedder *llmmocks.MockEmbedder, store storage.DocumentStore, index vectorstore.VectorStore) *Pipeline {
	t.Helper()
	ch, err := chunker.New(500, 50)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	return NewPipeline(extractor.NewRegistry(), ch, embedder, store, index, "chunks")
}

func stubEmbeddings(n int) [][]float32 {
	vecs := make([][]float32, n)
	for i := range vecs {
		vecs[i] = []float32{float32(i), 1, 0}
	}
	return vecs
}

func TestIngest(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	store := storage.NewMemoryStore()
	ctx := context.Background()

	// 1200 words at size 500 / overlap 50 yields 3 chunks.
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Len(3)).
		Return(stubEmbeddings(3), nil)

	p := newTestPipeline(t, embedder, store, nil)
	result, err := p.Ingest(ctx, UploadInput{Filename: "notes.txt", Data: testText(1200)})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if result.ChunksCreated != 3 {
		t.Errorf("ChunksCreated = %d, want 3", result.ChunksCreated)
	}
	if result.PagesExtracted != 1 {
		t.Errorf("PagesExtracted = %d, want 1", result.PagesExtracted)
	}
	if !strings.HasPrefix(result.DocumentID, "doc_") {
		t.Errorf("DocumentID = %q, want doc_ prefix", result.DocumentID)
	}
	if !strings.Contains(result.DocumentID, "notes_txt") {
		t.Errorf("DocumentID = %q, want sanitized filename embedded", result.DocumentID)
	}

	doc, err := store.GetDocument(ctx, result.DocumentID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.TotalChunks != 3 {
		t.Errorf("TotalChunks = %d, want 3", doc.TotalChunks)
	}
	if doc.FileType != "txt" {
		t.Errorf("FileType = %q, want txt", doc.FileType)
	}

	chunks, err := store.ListChunksByDocument(ctx, result.DocumentID)
	if err != nil {
		t.Fatalf("ListChunksByDocument: %v", err)
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if len(c.Embedding) == 0 {
			t.Errorf("chunk %d stored without embedding", i)
		}
	}
	// Extraction order survives storage: the first chunk starts at word 0.
	if !strings.HasPrefix(chunks[0].Content, "word0 ") {
		t.Errorf("first chunk starts %q, want word0", chunks[0].Content[:20])
	}
}

func TestIngestUnsupportedType(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storage.NewMemoryStore()
	p := newTestPipeline(t, llmmocks.NewMockEmbedder(ctrl), store, nil)

	_, err := p.Ingest(context.Background(), UploadInput{Filename: "binary.exe", Data: []byte("MZ")})
	if !errors.Is(err, extractor.ErrUnsupportedFileType) {
		t.Fatalf("got %v, want ErrUnsupportedFileType", err)
	}

	docs, _ := store.ListDocuments(context.Background())
	if len(docs) != 0 {
		t.Errorf("rejected upload left %d documents behind", len(docs))
	}
}

func TestIngestFileTypeFromExtension(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(stubEmbeddings(1), nil)

	store := storage.NewMemoryStore()
	p := newTestPipeline(t, embedder, store, nil)

	result, err := p.Ingest(context.Background(), UploadInput{Filename: "readme.md", Data: []byte("# Hello\n\nSome content here.")})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	doc, err := store.GetDocument(context.Background(), result.DocumentID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.FileType != "md" {
		t.Errorf("FileType = %q, want md", doc.FileType)
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storage.NewMemoryStore()
	p := newTestPipeline(t, llmmocks.NewMockEmbedder(ctrl), store, nil)
	ctx := context.Background()

	for _, data := range [][]byte{nil, []byte(""), []byte("   \n\t  ")} {
		_, err := p.Ingest(ctx, UploadInput{Filename: "empty.txt", Data: data})
		if !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("Ingest(%q): got %v, want ErrEmptyDocument", data, err)
		}
	}

	// Nothing is persisted and nothing is retrievable for empty uploads.
	docs, err := store.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("empty uploads left %d documents behind", len(docs))
	}
	count := 0
	_ = store.ForEachChunk(ctx, func(storage.StoredChunk) error {
		count++
		return nil
	})
	if count != 0 {
		t.Errorf("empty uploads left %d chunks behind", count)
	}
}

func TestIngestEmbeddingFailureLeavesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	store := storage.NewMemoryStore()
	p := newTestPipeline(t, embedder, store, nil)

	_, err := p.Ingest(context.Background(), UploadInput{Filename: "doc.txt", Data: testText(100)})
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}

	docs, _ := store.ListDocuments(context.Background())
	if len(docs) != 0 {
		t.Errorf("failed ingestion left %d documents behind", len(docs))
	}
}

func TestIngestEmbeddingCountMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return(stubEmbeddings(1), nil) // one vector for three chunks

	store := storage.NewMemoryStore()
	ch, err := chunker.New(10, 0)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	p := NewPipeline(extractor.NewRegistry(), ch, embedder, store, nil, "chunks")

	_, err = p.Ingest(context.Background(), UploadInput{Filename: "doc.txt", Data: testText(25)})
	if err == nil {
		t.Fatal("expected error for embedding count mismatch")
	}
	docs, _ := store.ListDocuments(context.Background())
	if len(docs) != 0 {
		t.Errorf("count mismatch left %d documents behind", len(docs))
	}
}

func TestIngestMirrorsToVectorIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(stubEmbeddings(1), nil)

	index := vsmocks.NewMockVectorStore(ctrl)
	index.EXPECT().
		Upsert(gomock.Any(), "chunks", gomock.Len(1)).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			p := points[0]
			if p.ID == "" {
				t.Error("mirrored point has empty ID")
			}
			if p.Meta["filename"] != "doc.txt" {
				t.Errorf("mirrored filename = %v", p.Meta["filename"])
			}
			if p.Meta["chunk_index"] != 0 {
				t.Errorf("mirrored chunk_index = %v", p.Meta["chunk_index"])
			}
			return nil
		})

	store := storage.NewMemoryStore()
	p := newTestPipeline(t, embedder, store, index)
	if _, err := p.Ingest(context.Background(), UploadInput{Filename: "doc.txt", Data: testText(50)}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
}

func TestIngestMirrorFailureDiscardsDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(stubEmbeddings(1), nil)

	index := vsmocks.NewMockVectorStore(ctrl)
	index.EXPECT().
		Upsert(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("index unreachable"))

	store := storage.NewMemoryStore()
	p := newTestPipeline(t, embedder, store, index)

	_, err := p.Ingest(context.Background(), UploadInput{Filename: "doc.txt", Data: testText(50)})
	if err == nil {
		t.Fatal("expected error when the mirror fails")
	}
	docs, _ := store.ListDocuments(context.Background())
	if len(docs) != 0 {
		t.Errorf("failed mirror left %d documents behind", len(docs))
	}
}
