package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"docqa/internal/storage"
	"docqa/internal/summarizer"
	"docqa/internal/vectorstore"
	vsmocks "docqa/internal/vectorstore/mocks"
)

func documentsTestRouter(store storage.DocumentStore, index vectorstore.VectorStore) http.Handler {
	h := NewDocumentsHandler(store, summarizer.NewFrequency(), index, "chunks")
	r := chi.NewRouter()
	r.Get("/documents", h.List)
	r.Delete("/documents/{documentID}", h.Delete)
	r.Get("/documents/{documentID}/summary", h.Summary)
	return r
}

func seedDocument(t *testing.T, store storage.DocumentStore, id string, uploadedAt time.Time, chunks int) {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateDocument(ctx, &storage.DocumentRecord{
		ID:            id,
		Filename:      id + ".txt",
		UploadedAt:    uploadedAt,
		FileSizeBytes: 64,
		FileType:      "txt",
	}); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	inputs := make([]storage.ChunkInput, chunks)
	for i := range inputs {
		inputs[i] = storage.ChunkInput{
			Content:    fmt.Sprintf("The service handles requests reliably in test %d.", i),
			PageNumber: 1,
			Embedding:  []float32{1, 0},
		}
	}
	if _, err := store.AppendChunks(ctx, id, inputs); err != nil {
		t.Fatalf("AppendChunks: %v", err)
	}
}

func TestDocumentsList(t *testing.T) {
	store := storage.NewMemoryStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedDocument(t, store, "doc_old", base, 2)
	seedDocument(t, store, "doc_new", base.Add(time.Hour), 3)

	router := documentsTestRouter(store, nil)
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp DocumentListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Documents) != 2 {
		t.Fatalf("Count = %d, Documents = %d", resp.Count, len(resp.Documents))
	}
	if resp.Documents[0].ID != "doc_new" {
		t.Errorf("first document = %s, want doc_new (newest first)", resp.Documents[0].ID)
	}
	first := resp.Documents[0]
	if first.TotalChunks != 3 || first.FileType != "txt" || first.FileSize != 64 {
		t.Errorf("document metadata = %+v", first)
	}
	if _, err := time.Parse(time.RFC3339, first.UploadDate); err != nil {
		t.Errorf("UploadDate %q is not RFC3339: %v", first.UploadDate, err)
	}
}

func TestDocumentsListEmpty(t *testing.T) {
	router := documentsTestRouter(storage.NewMemoryStore(), nil)
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp DocumentListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 0 || resp.Documents == nil {
		t.Errorf("empty corpus: Count = %d, Documents = %v", resp.Count, resp.Documents)
	}
}

func TestDocumentsDelete(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDocument(t, store, "doc_1", time.Now().UTC(), 2)
	router := documentsTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodDelete, "/documents/doc_1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	if _, err := store.GetDocument(context.Background(), "doc_1"); err == nil {
		t.Error("document still present after delete")
	}

	// Deleting again is a 404.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/doc_1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDocumentsDeleteRemovesMirroredPoints(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storage.NewMemoryStore()
	seedDocument(t, store, "doc_1", time.Now().UTC(), 3)

	chunks, err := store.ListChunksByDocument(context.Background(), "doc_1")
	if err != nil {
		t.Fatalf("ListChunksByDocument: %v", err)
	}
	wantIDs := make([]string, len(chunks))
	for i, c := range chunks {
		wantIDs[i] = c.ID
	}

	index := vsmocks.NewMockVectorStore(ctrl)
	index.EXPECT().Delete(gomock.Any(), "chunks", wantIDs).Return(nil)

	router := documentsTestRouter(store, index)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/doc_1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestDocumentsSummary(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDocument(t, store, "doc_1", time.Now().UTC(), 4)
	router := documentsTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents/doc_1/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SummaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DocumentID != "doc_1" || resp.Filename != "doc_1.txt" {
		t.Errorf("identity fields = %+v", resp)
	}
	if resp.ChunksUsed != 4 {
		t.Errorf("ChunksUsed = %d, want 4", resp.ChunksUsed)
	}
	if resp.Summary == "" {
		t.Error("empty summary for a document with content")
	}
}

func TestDocumentsSummaryNotFound(t *testing.T) {
	router := documentsTestRouter(storage.NewMemoryStore(), nil)
	req := httptest.NewRequest(http.MethodGet, "/documents/missing/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
