package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.CreateDocument(ctx, testDoc("doc_1", time.Now().UTC())); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := store.AppendChunks(ctx, "doc_1", testChunks(3)); err != nil {
		t.Fatalf("AppendChunks: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening runs the idempotent migration and finds the same data.
	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()

	doc, err := reopened.GetDocument(ctx, "doc_1")
	if err != nil {
		t.Fatalf("GetDocument after reopen: %v", err)
	}
	if doc.TotalChunks != 3 {
		t.Errorf("TotalChunks = %d, want 3", doc.TotalChunks)
	}

	chunks, err := reopened.ListChunksByDocument(ctx, "doc_1")
	if err != nil {
		t.Fatalf("ListChunksByDocument: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
}

func TestSQLiteStoreEmbeddingRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "vec.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	if err := store.CreateDocument(ctx, testDoc("doc_1", time.Now().UTC())); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	want := []float32{0.25, -1.5, 3.14159, 0}
	if _, err := store.AppendChunks(ctx, "doc_1", []ChunkInput{
		{Content: "hello", PageNumber: 2, Embedding: want},
	}); err != nil {
		t.Fatalf("AppendChunks: %v", err)
	}

	chunks, err := store.ListChunksByDocument(ctx, "doc_1")
	if err != nil {
		t.Fatalf("ListChunksByDocument: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.PageNumber != 2 {
		t.Errorf("PageNumber = %d, want 2", c.PageNumber)
	}
	if c.CharCount != len("hello") {
		t.Errorf("CharCount = %d, want %d", c.CharCount, len("hello"))
	}
	if len(c.Embedding) != len(want) {
		t.Fatalf("embedding has %d dims, want %d", len(c.Embedding), len(want))
	}
	for i := range want {
		if c.Embedding[i] != want[i] {
			t.Errorf("embedding[%d] = %v, want %v", i, c.Embedding[i], want[i])
		}
	}
}
