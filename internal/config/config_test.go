package config

import (
	"log/slog"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EMBEDDING_VECTOR_SIZE", "384")
	t.Setenv("STORE_BACKEND", StoreBackendMemory)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIPort != "8001" {
		t.Errorf("APIPort = %q", cfg.APIPort)
	}
	if cfg.EmbeddingVectorSize != 384 {
		t.Errorf("EmbeddingVectorSize = %d", cfg.EmbeddingVectorSize)
	}
	if cfg.EmbeddingModelName != "all-MiniLM-L6-v2" {
		t.Errorf("EmbeddingModelName = %q", cfg.EmbeddingModelName)
	}
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d, want 500/50", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.QdrantURL != "" {
		t.Errorf("QdrantURL = %q, want unset", cfg.QdrantURL)
	}
	if cfg.MinSimilarity != 0 {
		t.Errorf("MinSimilarity = %v, want 0", cfg.MinSimilarity)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadRequiresVectorSize(t *testing.T) {
	t.Setenv("STORE_BACKEND", StoreBackendMemory)
	t.Setenv("EMBEDDING_VECTOR_SIZE", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without EMBEDDING_VECTOR_SIZE")
	}

	for _, bad := range []string{"abc", "-1", "0"} {
		t.Setenv("EMBEDDING_VECTOR_SIZE", bad)
		if _, err := Load(); err == nil {
			t.Errorf("EMBEDDING_VECTOR_SIZE=%q: expected error", bad)
		}
	}
}

func TestLoadRejectsBadChunking(t *testing.T) {
	setRequiredEnv(t)

	tests := []struct {
		name    string
		size    string
		overlap string
	}{
		{name: "overlap equals size", size: "100", overlap: "100"},
		{name: "overlap exceeds size", size: "100", overlap: "150"},
		{name: "zero size", size: "0", overlap: "0"},
		{name: "non-numeric", size: "many", overlap: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHUNK_SIZE", tt.size)
			t.Setenv("CHUNK_OVERLAP", tt.overlap)
			if _, err := Load(); err == nil {
				t.Errorf("CHUNK_SIZE=%s CHUNK_OVERLAP=%s: expected error", tt.size, tt.overlap)
			}
		})
	}
}

func TestLoadValidatesMinSimilarity(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("MIN_SIMILARITY", "0.35")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinSimilarity != 0.35 {
		t.Errorf("MinSimilarity = %v", cfg.MinSimilarity)
	}

	for _, bad := range []string{"-0.1", "1.5", "high"} {
		t.Setenv("MIN_SIMILARITY", bad)
		if _, err := Load(); err == nil {
			t.Errorf("MIN_SIMILARITY=%q: expected error", bad)
		}
	}
}

func TestLoadValidatesStoreBackend(t *testing.T) {
	t.Setenv("EMBEDDING_VECTOR_SIZE", "384")

	t.Setenv("STORE_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}

	t.Setenv("STORE_BACKEND", StoreBackendSQLite)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "data", "docs.db"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with sqlite backend: %v", err)
	}
	if cfg.StoreBackend != StoreBackendSQLite {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
}

func TestLoadValidatesLogLevel(t *testing.T) {
	setRequiredEnv(t)

	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range levels {
		t.Setenv("LOG_LEVEL", name)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load with LOG_LEVEL=%s: %v", name, err)
		}
		if cfg.LogLevel != want {
			t.Errorf("LOG_LEVEL=%s parsed to %v", name, cfg.LogLevel)
		}
	}

	t.Setenv("LOG_LEVEL", "verbose")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown log level")
	}
}
