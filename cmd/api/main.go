package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/extractor"
	"docqa/internal/http"
	"docqa/internal/ingest"
	"docqa/internal/llm"
	"docqa/internal/rag"
	"docqa/internal/retriever"
	"docqa/internal/storage"
	"docqa/internal/summarizer"
	"docqa/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	var store storage.DocumentStore
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		store = storage.NewMemoryStore()
		slog.Info("In-memory document store initialized")
	default:
		sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open document store: %v", err)
		}
		store = sqliteStore
		slog.Info("Document store initialized", "path", cfg.DBPath)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()

	// Optional external vector index; the linear scan retriever is the
	// default search path.
	var vectorIndex vectorstore.VectorStore
	var searcher rag.Searcher = retriever.New(store)
	if cfg.QdrantURL != "" {
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		vectorIndex = qdrantStore
		searcher = retriever.NewIndexRetriever(qdrantStore, cfg.QdrantCollection)
		slog.Info("Qdrant vector index ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingVectorSize)
	}

	// Validate the embedding service and its vector size before serving.
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.EmbeddingVectorSize)

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Invalid chunking configuration: %v", err)
	}

	pipeline := ingest.NewPipeline(
		extractor.NewRegistry(),
		ch,
		embedder,
		store,
		vectorIndex,
		cfg.QdrantCollection,
	)

	var llmClient *llm.Client
	if cfg.LLMBaseURL != "" {
		llmClient = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
		slog.Info("LLM answer generation enabled", "model", cfg.LLMModelName)
	}

	engine := rag.NewEngine(embedder, searcher, llmClient)
	slog.Info("RAG engine initialized")

	router := http.NewRouter(&http.Deps{
		Pipeline:    pipeline,
		Engine:      engine,
		Store:       store,
		Summarizer:  summarizer.NewFrequency(),
		VectorIndex: vectorIndex,
		Collection:  cfg.QdrantCollection,

		MinSimilarity: cfg.MinSimilarity,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
