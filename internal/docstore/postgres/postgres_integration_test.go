package postgres

import (
	"os"
	"testing"

	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/docstore/docstoretest"
)

func makePGStore(t *testing.T) docstore.Store {
	t.Helper()
	dsn := os.Getenv("WORKLENS_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WORKLENS_POSTGRES_DSN not set; skipping postgres docstore integration test")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := NewWithDB(db)
	if err != nil {
		t.Fatalf("postgres schema: %v", err)
	}
	return s
}

func TestPostgresStore_Compliance(t *testing.T) {
	docstoretest.Run(t, makePGStore)
}
