// Package memstore is the in-memory docstore driver used by tests and the
// default local configuration.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/worklens/worklens-backend/internal/docstore"
)

// Store holds documents in a path-keyed map guarded by a RWMutex.
type Store struct {
	mu   sync.RWMutex
	docs map[string]docstore.Fields
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[string]docstore.Fields)}
}

func (s *Store) Get(_ context.Context, path string) (*docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.docs[path]
	if !ok {
		return nil, nil
	}
	return &docstore.Document{
		ID:     docstore.LastSegment(path),
		Path:   path,
		Fields: docstore.CloneFields(f),
	}, nil
}

func (s *Store) Put(_ context.Context, path string, fields docstore.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = docstore.CloneFields(fields)
	return nil
}

func (s *Store) Update(_ context.Context, path string, fields docstore.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, ok := s.docs[path]
	if !ok {
		return docstore.ErrNotFound
	}
	s.docs[path] = docstore.MergeFields(base, fields)
	return nil
}

func (s *Store) Stream(_ context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	s.mu.RLock()
	paths := make([]string, 0)
	for p := range s.docs {
		if docstore.CollectionOf(p) == collection {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	docs := make([]docstore.Document, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, docstore.Document{
			ID:     docstore.LastSegment(p),
			Path:   p,
			Fields: docstore.CloneFields(s.docs[p]),
		})
	}
	s.mu.RUnlock()
	return docstore.ApplyQuery(docs, q), nil
}

func (s *Store) NewID(string) string { return uuid.New().String() }
