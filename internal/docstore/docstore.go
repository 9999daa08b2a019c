// Package docstore defines the document store consumed by the work-item
// repository, the team aggregator and the advice queue. Documents are
// schemaless field maps addressed by a slash-separated path; sub-collections
// nest under a parent document (projects/{p}/tasks/{t}/subTasks/{s}).
// Implementations live under internal/docstore/<driver>/.
package docstore

import (
	"context"
	"errors"
)

// Fields is the schemaless field set of a document.
type Fields = map[string]any

// Document is one stored record. ID is the last path segment.
type Document struct {
	ID     string
	Path   string
	Fields Fields
}

// Ref is a weak reference to another document. Resolution failure yields an
// explicit absent value, never a fault; a Ref never owns its target.
type Ref struct {
	Path string
}

// NewRef builds a reference to the document at path.
func NewRef(path string) Ref { return Ref{Path: path} }

// ID returns the referenced document's key (last path segment).
func (r Ref) ID() string { return LastSegment(r.Path) }

// ErrNotFound is returned by Update when the target document is absent.
// Get reports absence as (nil, nil) instead.
var ErrNotFound = errors.New("docstore: document not found")

// Filter is a single field predicate. Supported ops: "==", "in", ">=", "<".
type Filter struct {
	Field string
	Op    string
	Value any
}

// Order is one sort key applied to a stream.
type Order struct {
	Field string
	Desc  bool
}

// Query narrows and orders a collection stream. A zero Query streams the
// whole collection in driver order.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
	Select  []string
}

// Store is the document store client. A single long-lived handle is shared
// by all callers; implementations must be safe for concurrent use.
type Store interface {
	// Get returns the document at path, or (nil, nil) when absent.
	Get(ctx context.Context, path string) (*Document, error)
	// Put creates or fully replaces the document at path.
	Put(ctx context.Context, path string, fields Fields) error
	// Update merges fields into the existing document at path.
	// Returns ErrNotFound when the document is absent.
	Update(ctx context.Context, path string, fields Fields) error
	// Stream lists the immediate documents of a collection, narrowed by q.
	Stream(ctx context.Context, collection string, q Query) ([]Document, error)
	// NewID allocates a store-assigned document id for a collection.
	NewID(collection string) string
}
