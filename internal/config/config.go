package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"docqa/internal/chunker"
)

// Store backend choices.
const (
	StoreBackendSQLite = "sqlite"
	StoreBackendMemory = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort      string
	StoreBackend string
	DBPath       string

	EmbeddingBaseURL    string
	EmbeddingAPIKey     string
	EmbeddingModelName  string
	EmbeddingVectorSize int

	ChunkSize    int
	ChunkOverlap int

	// QdrantURL is optional; when set, chunk vectors are mirrored to this
	// Qdrant instance and queries use it instead of the linear scan.
	QdrantURL        string
	QdrantCollection string

	// LLMBaseURL is optional; when set, answers are generated by the chat
	// model instead of the built-in templates.
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModelName string

	// MinSimilarity is the default relevance floor applied to chat queries
	// when the request doesn't supply one. Zero disables the floor.
	MinSimilarity float64

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config.
// If a .env file exists in the current directory or project root, it is
// loaded first; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a project-root .env (next to go.mod)
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8001"),
		StoreBackend:       getEnv("STORE_BACKEND", StoreBackendSQLite),
		DBPath:             getEnv("DB_PATH", "./data/rag_documents.db"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		QdrantURL:          getEnv("QDRANT_URL", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "document_chunks"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		LLMModelName:       getEnv("LLM_MODEL", ""),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// The vector size must match the deployed embedding model's output
	// dimensionality; there is no safe default, so it is required.
	vectorSizeStr := getEnv("EMBEDDING_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.EmbeddingVectorSize = vectorSize

	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", chunker.DefaultChunkSize)
	if err != nil {
		return nil, err
	}
	cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", chunker.DefaultOverlap)
	if err != nil {
		return nil, err
	}
	// Fail fast on a non-terminating chunker configuration.
	if _, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap); err != nil {
		return nil, err
	}

	if minSimStr := getEnv("MIN_SIMILARITY", ""); minSimStr != "" {
		minSim, err := strconv.ParseFloat(minSimStr, 64)
		if err != nil {
			return nil, fmt.Errorf("MIN_SIMILARITY must be a valid number: %w", err)
		}
		if minSim < 0 || minSim > 1 {
			return nil, fmt.Errorf("MIN_SIMILARITY must be between 0 and 1")
		}
		cfg.MinSimilarity = minSim
	}

	switch cfg.StoreBackend {
	case StoreBackendSQLite:
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	case StoreBackendMemory:
		// Nothing to prepare.
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendSQLite, StoreBackendMemory, cfg.StoreBackend)
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", level)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}
