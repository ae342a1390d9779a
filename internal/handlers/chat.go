package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/rag"
	"docqa/internal/retriever"
)

// ChatHandler handles RAG chat queries against the ingested corpus.
type ChatHandler struct {
	engine rag.Engine
	// minSimilarity is the deployment's default relevance floor, used when
	// the request doesn't carry its own. Zero means no floor.
	minSimilarity float64
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(engine rag.Engine, minSimilarity float64) *ChatHandler {
	return &ChatHandler{engine: engine, minSimilarity: minSimilarity}
}

// ChatRequest represents the HTTP request payload for chat.
// This mirrors rag.AskRequest but is defined here for HTTP layer separation.
type ChatRequest struct {
	Message       string  `json:"message"`
	TopK          int     `json:"top_k,omitempty"`
	MinSimilarity float64 `json:"min_similarity,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Response        string            `json:"response"`
	RelevantChunks  []retriever.Match `json:"relevant_chunks"`
	Confidence      float64           `json:"confidence"`
	DocumentSources []string          `json:"document_sources"`
}

// ServeHTTP handles POST chat requests.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message must not be empty")
		return
	}

	minSimilarity := req.MinSimilarity
	if minSimilarity == 0 {
		minSimilarity = h.minSimilarity
	}

	resp, err := h.engine.Ask(ctx, rag.AskRequest{
		Message:       req.Message,
		TopK:          req.TopK,
		MinSimilarity: minSimilarity,
	})
	if err != nil {
		logger.ErrorContext(ctx, "chat query failed", "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:        resp.Response,
		RelevantChunks:  resp.RelevantChunks,
		Confidence:      resp.Confidence,
		DocumentSources: resp.DocumentSources,
	})
}
