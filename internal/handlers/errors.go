package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docqa/internal/chunker"
	"docqa/internal/extractor"
	"docqa/internal/ingest"
	"docqa/internal/llm"
	"docqa/internal/storage"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusForError maps the core error taxonomy to HTTP status codes. Errors
// are terminal for the request; nothing here substitutes a degraded result.
func statusForError(err error) int {
	switch {
	case errors.Is(err, extractor.ErrUnsupportedFileType),
		errors.Is(err, ingest.ErrEmptyDocument),
		errors.Is(err, chunker.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrDuplicateDocument):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrEmbeddingUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
