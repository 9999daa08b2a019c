// Package sqlite is the file-backed docstore driver for single-node
// deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/worklens/worklens-backend/internal/docstore"
)

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode for read-heavy workloads.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path       TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    doc_id     TEXT NOT NULL,
    fields     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// Store implements docstore.Store on a single documents table with a JSON
// fields column. Query semantics are applied in-process by docstore.ApplyQuery.
type Store struct{ db *sql.DB }

// NewWithDB wires the driver onto an existing connection and ensures the
// schema exists.
func NewWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying connection for health checks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE path=?`, path).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := docstore.DecodeFields(raw)
	if err != nil {
		return nil, err
	}
	return &docstore.Document{ID: docstore.LastSegment(path), Path: path, Fields: f}, nil
}

func (s *Store) Put(ctx context.Context, path string, fields docstore.Fields) error {
	raw, err := docstore.EncodeFields(fields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO documents (path, collection, doc_id, fields)
        VALUES (?,?,?,?)
        ON CONFLICT(path) DO UPDATE SET fields=excluded.fields
    `, path, docstore.CollectionOf(path), docstore.LastSegment(path), raw)
	return err
}

func (s *Store) Update(ctx context.Context, path string, fields docstore.Fields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE path=?`, path).Scan(&raw)
	if err == sql.ErrNoRows {
		return docstore.ErrNotFound
	}
	if err != nil {
		return err
	}
	base, err := docstore.DecodeFields(raw)
	if err != nil {
		return err
	}
	merged, err := docstore.EncodeFields(docstore.MergeFields(base, fields))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET fields=? WHERE path=?`, merged, path); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Stream(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, doc_id, fields FROM documents WHERE collection=? ORDER BY path`, collection)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var docs []docstore.Document
	for rows.Next() {
		var d docstore.Document
		var raw []byte
		if err := rows.Scan(&d.Path, &d.ID, &raw); err != nil {
			return nil, err
		}
		if d.Fields, err = docstore.DecodeFields(raw); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docstore.ApplyQuery(docs, q), nil
}

func (s *Store) NewID(string) string { return uuid.New().String() }
