// Package docstoretest holds a compliance suite run against every docstore
// driver so the in-memory, sqlite and postgres implementations agree on
// Get/Put/Update/Stream semantics.
package docstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/worklens/worklens-backend/internal/docstore"
)

// Run exercises a docstore.Store implementation. makeStore must return a
// clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) docstore.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique collection root so reruns against a shared database stay isolated.
	col := "projects-" + uuid.New().String()

	// Absence is explicit, not an error.
	if d, err := s.Get(ctx, col+"/missing"); err != nil || d != nil {
		t.Fatalf("Get absent: doc=%v err=%v", d, err)
	}

	// Put / Get round-trip, including Ref and time values.
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	fields := docstore.Fields{
		"projectName": "apollo",
		"status":      "open",
		"createdAt":   created,
		"members": []any{
			docstore.Fields{
				"role":    "Owner",
				"isOwner": true,
				"userRef": docstore.NewRef("users/ann@example.com"),
			},
		},
	}
	if err := s.Put(ctx, col+"/p1", fields); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, col+"/p1")
	if err != nil || got == nil {
		t.Fatalf("Get: doc=%v err=%v", got, err)
	}
	if got.ID != "p1" || got.Path != col+"/p1" {
		t.Fatalf("Get identity: id=%q path=%q", got.ID, got.Path)
	}
	if got.Fields["projectName"] != "apollo" {
		t.Fatalf("Get projectName: %v", got.Fields["projectName"])
	}
	if ts, ok := got.Fields["createdAt"].(time.Time); !ok || !ts.Equal(created) {
		t.Fatalf("createdAt did not round-trip: %v", got.Fields["createdAt"])
	}
	members, ok := got.Fields["members"].([]any)
	if !ok || len(members) != 1 {
		t.Fatalf("members did not round-trip: %v", got.Fields["members"])
	}
	m, ok := members[0].(docstore.Fields)
	if !ok {
		t.Fatalf("member shape: %T", members[0])
	}
	ref, ok := m["userRef"].(docstore.Ref)
	if !ok || ref.Path != "users/ann@example.com" {
		t.Fatalf("userRef did not round-trip: %v", m["userRef"])
	}

	// Update merges only the supplied fields.
	if err := s.Update(ctx, col+"/p1", docstore.Fields{"status": "closed"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = s.Get(ctx, col+"/p1")
	if err != nil || got == nil {
		t.Fatalf("Get after update: doc=%v err=%v", got, err)
	}
	if got.Fields["status"] != "closed" || got.Fields["projectName"] != "apollo" {
		t.Fatalf("Update merge: %v", got.Fields)
	}

	// Update of an absent document fails with ErrNotFound.
	if err := s.Update(ctx, col+"/nope", docstore.Fields{"status": "x"}); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("Update absent: %v", err)
	}

	// Stream sees only the immediate collection, not nested sub-collections.
	if err := s.Put(ctx, col+"/p2", docstore.Fields{"projectName": "borealis", "status": "open"}); err != nil {
		t.Fatalf("Put p2: %v", err)
	}
	if err := s.Put(ctx, col+"/p1/tasks/t1", docstore.Fields{"title": "dig"}); err != nil {
		t.Fatalf("Put task: %v", err)
	}
	docs, err := s.Stream(ctx, col, docstore.Query{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Stream count: want 2, got %d", len(docs))
	}
	for _, d := range docs {
		if _, ok := d.Fields["title"]; ok {
			t.Fatalf("Stream leaked nested document: %v", d.Path)
		}
	}

	// Filters, ordering, limit and projection.
	docs, err = s.Stream(ctx, col, docstore.Query{
		Filters: []docstore.Filter{{Field: "status", Op: "==", Value: "open"}},
		OrderBy: []docstore.Order{{Field: "projectName"}},
		Limit:   1,
		Select:  []string{"projectName"},
	})
	if err != nil {
		t.Fatalf("Stream filtered: %v", err)
	}
	if len(docs) != 1 || docs[0].Fields["projectName"] != "borealis" {
		t.Fatalf("Stream filtered result: %+v", docs)
	}
	if _, ok := docs[0].Fields["status"]; ok {
		t.Fatalf("Select did not project fields: %v", docs[0].Fields)
	}

	// Store-assigned ids are unique and non-empty.
	a, b := s.NewID(col), s.NewID(col)
	if a == "" || a == b {
		t.Fatalf("NewID: %q vs %q", a, b)
	}
}
