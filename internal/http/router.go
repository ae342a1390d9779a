package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa/internal/handlers"
	"docqa/internal/ingest"
	"docqa/internal/rag"
	"docqa/internal/storage"
	"docqa/internal/summarizer"
	"docqa/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Pipeline    *ingest.Pipeline
	Engine      rag.Engine
	Store       storage.DocumentStore
	Summarizer  *summarizer.Frequency
	VectorIndex vectorstore.VectorStore // optional
	Collection  string
	// MinSimilarity is the default relevance floor for chat queries.
	MinSimilarity float64
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(RequestLogger)

	uploadHandler := handlers.NewUploadHandler(deps.Pipeline)
	chatHandler := handlers.NewChatHandler(deps.Engine, deps.MinSimilarity)
	documentsHandler := handlers.NewDocumentsHandler(deps.Store, deps.Summarizer, deps.VectorIndex, deps.Collection)
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.VectorIndex, deps.Collection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Get("/documents", documentsHandler.List)
		r.Delete("/documents/{documentID}", documentsHandler.Delete)
		r.Get("/documents/{documentID}/summary", documentsHandler.Summary)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Document Q&A backend is running!","status":"online","features":["document_upload","rag_search","vector_embeddings"]}`))
	})

	return r
}
