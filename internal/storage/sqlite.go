package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStore is the persistent DocumentStore backend. SQLite's single
// writer and transactions give the append atomicity and the per-document
// serialization the interface requires.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// the schema migration.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrStorageIO, err)
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: enable foreign keys: %w", ErrStorageIO, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", ErrStorageIO, err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// migrate creates the required tables. It is idempotent.
func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			uploaded_at DATETIME NOT NULL,
			total_chunks INTEGER NOT NULL DEFAULT 0,
			file_size INTEGER NOT NULL,
			file_type TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS document_chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			embedding BLOB NOT NULL,
			chunk_size INTEGER NOT NULL,
			FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE,
			UNIQUE (document_id, chunk_index)
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: migrate schema: %w", ErrStorageIO, err)
		}
	}

	return nil
}

// CreateDocument persists a new document with zero chunks.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *DocumentRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (id, filename, uploaded_at, total_chunks, file_size, file_type) VALUES (?, ?, ?, 0, ?, ?)",
		doc.ID, doc.Filename, doc.UploadedAt.UTC(), doc.FileSizeBytes, doc.FileType,
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: document %q", ErrDuplicateDocument, doc.ID)
		}
		return fmt.Errorf("%w: insert document: %w", ErrStorageIO, err)
	}
	return nil
}

// AppendChunks atomically appends a batch of chunks to a document and
// updates its total. Chunk indices continue from the current count, so the
// stored indices for a document always form a contiguous 0..N-1 sequence.
func (s *SQLiteStore) AppendChunks(ctx context.Context, documentID string, chunks []ChunkInput) ([]ChunkRecord, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	for i, c := range chunks {
		if c.Content == "" {
			return nil, fmt.Errorf("chunk %d has empty content", i)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", ErrStorageIO, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var start int
	err = tx.QueryRowContext(ctx, "SELECT total_chunks FROM documents WHERE id = ?", documentID).Scan(&start)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: document %q", ErrNotFound, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query document total: %w", ErrStorageIO, err)
	}

	records := make([]ChunkRecord, len(chunks))
	for i, c := range chunks {
		record := ChunkRecord{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			ChunkIndex: start + i,
			PageNumber: c.PageNumber,
			Content:    c.Content,
			CharCount:  len(c.Content),
			Embedding:  c.Embedding,
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO document_chunks (id, document_id, chunk_index, content, page_number, embedding, chunk_size) VALUES (?, ?, ?, ?, ?, ?, ?)",
			record.ID, record.DocumentID, record.ChunkIndex, record.Content, record.PageNumber, EncodeEmbedding(record.Embedding), record.CharCount,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: insert chunk %d: %w", ErrStorageIO, record.ChunkIndex, err)
		}
		records[i] = record
	}

	if _, err := tx.ExecContext(ctx, "UPDATE documents SET total_chunks = ? WHERE id = ?", start+len(chunks), documentID); err != nil {
		return nil, fmt.Errorf("%w: update document total: %w", ErrStorageIO, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit chunk batch: %w", ErrStorageIO, err)
	}
	return records, nil
}

// ForEachChunk streams every chunk in the corpus to fn under one read
// snapshot, ordered by document upload time and then chunk index.
func (s *SQLiteStore) ForEachChunk(ctx context.Context, fn func(StoredChunk) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dc.document_id, d.filename, dc.page_number, dc.chunk_index, dc.content, dc.embedding
		 FROM document_chunks dc
		 JOIN documents d ON d.id = dc.document_id
		 ORDER BY d.uploaded_at ASC, d.id ASC, dc.chunk_index ASC`,
	)
	if err != nil {
		return fmt.Errorf("%w: query chunks: %w", ErrStorageIO, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var sc StoredChunk
		var blob []byte
		if err := rows.Scan(&sc.DocumentID, &sc.Filename, &sc.PageNumber, &sc.ChunkIndex, &sc.Content, &blob); err != nil {
			return fmt.Errorf("%w: scan chunk row: %w", ErrStorageIO, err)
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStorageIO, err)
		}
		sc.Embedding = vec
		if err := fn(sc); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: row iteration: %w", ErrStorageIO, err)
	}
	return nil
}

// ListDocuments returns all documents, newest upload first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, filename, uploaded_at, total_chunks, file_size, file_type FROM documents ORDER BY uploaded_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query documents: %w", ErrStorageIO, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.UploadedAt, &doc.TotalChunks, &doc.FileSizeBytes, &doc.FileType); err != nil {
			return nil, fmt.Errorf("%w: scan document row: %w", ErrStorageIO, err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration: %w", ErrStorageIO, err)
	}
	return docs, nil
}

// GetDocument returns one document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := s.db.QueryRowContext(ctx,
		"SELECT id, filename, uploaded_at, total_chunks, file_size, file_type FROM documents WHERE id = ?", id,
	).Scan(&doc.ID, &doc.Filename, &doc.UploadedAt, &doc.TotalChunks, &doc.FileSizeBytes, &doc.FileType)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: document %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query document: %w", ErrStorageIO, err)
	}
	return &doc, nil
}

// ListChunksByDocument returns a document's chunks ordered by chunk index.
func (s *SQLiteStore) ListChunksByDocument(ctx context.Context, documentID string) ([]*ChunkRecord, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_id, chunk_index, content, page_number, embedding, chunk_size FROM document_chunks WHERE document_id = ? ORDER BY chunk_index ASC",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query chunks: %w", ErrStorageIO, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []*ChunkRecord
	for rows.Next() {
		var c ChunkRecord
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.PageNumber, &blob, &c.CharCount); err != nil {
			return nil, fmt.Errorf("%w: scan chunk row: %w", ErrStorageIO, err)
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorageIO, err)
		}
		c.Embedding = vec
		chunks = append(chunks, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration: %w", ErrStorageIO, err)
	}
	return chunks, nil
}

// DeleteDocument removes a document and, via the foreign key cascade, all
// its chunks.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete document: %w", ErrStorageIO, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete document: %w", ErrStorageIO, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: document %q", ErrNotFound, id)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageIO, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
