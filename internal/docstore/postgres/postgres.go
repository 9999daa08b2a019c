// Package postgres is the docstore driver for shared deployments, backed by
// PostgreSQL through the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/worklens/worklens-backend/internal/docstore"
)

// Open opens a PostgreSQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
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
    fields     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// Store implements docstore.Store on a single documents table with a JSONB
// fields column.
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
		`SELECT fields FROM documents WHERE path=$1`, path).Scan(&raw)
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
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (path) DO UPDATE SET fields=excluded.fields
    `, path, docstore.CollectionOf(path), docstore.LastSegment(path), raw)
	return err
}

func (s *Store) Update(ctx context.Context, path string, fields docstore.Fields) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE path=$1 FOR UPDATE`, path).Scan(&raw)
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
		`UPDATE documents SET fields=$1 WHERE path=$2`, merged, path); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Stream(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, doc_id, fields FROM documents WHERE collection=$1 ORDER BY path`, collection)
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
