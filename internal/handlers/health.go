package handlers

import (
	"context"
	"net/http"
	"time"

	"docqa/internal/contextutil"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

// HealthHandler reports whether the service and its dependencies are usable.
type HealthHandler struct {
	store              storage.DocumentStore
	vectorIndex        vectorstore.VectorStore // optional
	collection         string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. vectorIndex may be nil when
// no external index is configured.
func NewHealthHandler(store storage.DocumentStore, vectorIndex vectorstore.VectorStore, collection string) *HealthHandler {
	return &HealthHandler{
		store:              store,
		vectorIndex:        vectorIndex,
		collection:         collection,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles GET health checks. Returns 200 when healthy, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if err := h.store.Ping(checkCtx); err != nil {
		logger.WarnContext(ctx, "document store health check failed", "error", err)
		checks["document_store"] = "error"
		issues = append(issues, "document_store_unavailable")
	} else {
		checks["document_store"] = "ok"
	}

	if h.vectorIndex != nil {
		exists, err := h.vectorIndex.CollectionExists(checkCtx, h.collection)
		if err != nil || !exists {
			logger.WarnContext(ctx, "vector index health check failed", "collection", h.collection, "error", err)
			checks["vector_index"] = "error"
			issues = append(issues, "vector_index_unavailable")
		} else {
			checks["vector_index"] = "ok"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
