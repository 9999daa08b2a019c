package docstore

import (
	"testing"
	"time"
)

func queryDocs() []Document {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []Document{
		{ID: "a", Path: "q/a", Fields: Fields{"status": "processing", "user": "alice", "createdAt": base.Add(time.Hour), "n": 2}},
		{ID: "b", Path: "q/b", Fields: Fields{"status": "pending", "user": "bob", "createdAt": base, "n": 1}},
		{ID: "c", Path: "q/c", Fields: Fields{"status": "pending", "user": "alice", "createdAt": base.Add(2 * time.Hour), "n": 3}},
		{ID: "d", Path: "q/d", Fields: Fields{"status": "completed", "user": "alice", "createdAt": base, "n": 4}},
	}
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Document, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

func TestApplyQueryFilters(t *testing.T) {
	got := ApplyQuery(queryDocs(), Query{Filters: []Filter{{Field: "status", Op: "==", Value: "pending"}}})
	assertIDs(t, got, "b", "c")

	got = ApplyQuery(queryDocs(), Query{Filters: []Filter{
		{Field: "status", Op: "in", Value: []any{"pending", "processing"}},
		{Field: "user", Op: "==", Value: "alice"},
	}})
	assertIDs(t, got, "a", "c")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	got = ApplyQuery(queryDocs(), Query{Filters: []Filter{{Field: "createdAt", Op: ">=", Value: base.Add(time.Hour)}}})
	assertIDs(t, got, "a", "c")

	got = ApplyQuery(queryDocs(), Query{Filters: []Filter{{Field: "n", Op: "<", Value: 3}}})
	assertIDs(t, got, "a", "b")

	got = ApplyQuery(queryDocs(), Query{Filters: []Filter{{Field: "missing", Op: "==", Value: "x"}}})
	assertIDs(t, got)
}

func TestApplyQueryOrderAndLimit(t *testing.T) {
	got := ApplyQuery(queryDocs(), Query{OrderBy: []Order{
		{Field: "status"},
		{Field: "user"},
		{Field: "createdAt"},
	}})
	assertIDs(t, got, "d", "c", "b", "a")

	got = ApplyQuery(queryDocs(), Query{
		OrderBy: []Order{{Field: "createdAt", Desc: true}},
		Limit:   1,
	})
	assertIDs(t, got, "c")
}

func TestApplyQuerySelect(t *testing.T) {
	got := ApplyQuery(queryDocs(), Query{Select: []string{"status", "absent"}})
	for _, d := range got {
		if len(d.Fields) != 1 {
			t.Fatalf("projection kept extra fields: %v", d.Fields)
		}
		if _, ok := d.Fields["status"]; !ok {
			t.Fatalf("selected field dropped: %v", d.Fields)
		}
	}
}
