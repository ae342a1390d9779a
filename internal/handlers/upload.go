package handlers

import (
	"fmt"
	"io"
	"net/http"

	"docqa/internal/contextutil"
	"docqa/internal/ingest"
)

// maxUploadBytes bounds how much of a multipart upload is held in memory.
const maxUploadBytes = 32 << 20

// UploadHandler handles document uploads.
type UploadHandler struct {
	pipeline *ingest.Pipeline
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(pipeline *ingest.Pipeline) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// DocumentResponse represents the HTTP response for a processed upload.
type DocumentResponse struct {
	Success       bool   `json:"success"`
	Filename      string `json:"filename"`
	DocumentID    string `json:"document_id"`
	ChunksCreated int    `json:"chunks_created"`
	Message       string `json:"message"`
}

// ServeHTTP handles POST requests with a multipart "file" part.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Expected multipart form with a \"file\" part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing \"file\" part")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.pipeline.Ingest(ctx, ingest.UploadInput{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		logger.ErrorContext(ctx, "upload processing failed", "filename", header.Filename, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{
		Success:       true,
		Filename:      result.Filename,
		DocumentID:    result.DocumentID,
		ChunksCreated: result.ChunksCreated,
		Message: fmt.Sprintf("Document processed successfully! Created %d searchable chunks from %d pages.",
			result.ChunksCreated, result.PagesExtracted),
	})
}
