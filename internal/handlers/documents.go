package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"docqa/internal/contextutil"
	"docqa/internal/storage"
	"docqa/internal/summarizer"
	"docqa/internal/vectorstore"
)

// DocumentsHandler serves corpus management endpoints: listing, deletion
// and per-document summaries.
type DocumentsHandler struct {
	store       storage.DocumentStore
	summarizer  *summarizer.Frequency
	vectorIndex vectorstore.VectorStore // optional
	collection  string
}

// NewDocumentsHandler creates a new DocumentsHandler. vectorIndex may be nil
// when no external index is configured.
func NewDocumentsHandler(store storage.DocumentStore, s *summarizer.Frequency, vectorIndex vectorstore.VectorStore, collection string) *DocumentsHandler {
	return &DocumentsHandler{store: store, summarizer: s, vectorIndex: vectorIndex, collection: collection}
}

// DocumentInfo represents one document in the listing.
type DocumentInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	UploadDate  string `json:"upload_date"`
	TotalChunks int    `json:"total_chunks"`
	FileSize    int64  `json:"file_size"`
	FileType    string `json:"file_type"`
}

// DocumentListResponse represents the document listing response.
type DocumentListResponse struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// SummaryResponse represents a per-document summary.
type SummaryResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Summary    string `json:"summary"`
	ChunksUsed int    `json:"chunks_used"`
}

// List returns all documents, newest upload first.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := h.store.ListDocuments(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, DocumentInfo{
			ID:          doc.ID,
			Filename:    doc.Filename,
			UploadDate:  doc.UploadedAt.UTC().Format(time.RFC3339),
			TotalChunks: doc.TotalChunks,
			FileSize:    doc.FileSizeBytes,
			FileType:    doc.FileType,
		})
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: infos, Count: len(infos)})
}

// Delete removes a document and its chunks.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	documentID := chi.URLParam(r, "documentID")

	// Collect the mirrored point IDs before the rows disappear.
	var pointIDs []string
	if h.vectorIndex != nil {
		chunks, err := h.store.ListChunksByDocument(ctx, documentID)
		if err != nil {
			writeError(w, statusForError(err), err.Error())
			return
		}
		pointIDs = make([]string, 0, len(chunks))
		for _, c := range chunks {
			pointIDs = append(pointIDs, c.ID)
		}
	}

	if err := h.store.DeleteDocument(ctx, documentID); err != nil {
		logger.ErrorContext(ctx, "failed to delete document", "document_id", documentID, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	if h.vectorIndex != nil && len(pointIDs) > 0 {
		if err := h.vectorIndex.Delete(ctx, h.collection, pointIDs); err != nil {
			// The store row is already gone; leftover points surface in
			// queries until the index is reachable again.
			logger.WarnContext(ctx, "failed to remove mirrored points", "document_id", documentID, "error", err)
		}
	}

	logger.InfoContext(ctx, "document deleted", "document_id", documentID)
	w.WriteHeader(http.StatusNoContent)
}

// Summary returns an extractive summary of a document's stored chunks.
func (h *DocumentsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	documentID := chi.URLParam(r, "documentID")
	doc, err := h.store.GetDocument(ctx, documentID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	chunks, err := h.store.ListChunksByDocument(ctx, documentID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load chunks for summary", "document_id", documentID, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}
	summary := h.summarizer.Summarize(strings.Join(texts, " "), summarizer.DefaultMaxSentences)

	writeJSON(w, http.StatusOK, SummaryResponse{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Summary:    summary,
		ChunksUsed: len(chunks),
	})
}
