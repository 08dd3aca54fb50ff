// Package memstore is an in-process implementation of the document
// store contract with the same field-level merge semantics as the
// networked backends. It serves tests and local development.
package memstore

import (
	"context"
	"sync"

	"github.com/languelink/identity-core/internal/domain/repository"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]repository.Document
}

func New() *Store {
	return &Store{data: make(map[string]map[string]repository.Document)}
}

func (s *Store) Get(_ context.Context, collection, key string) (repository.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.data[collection][key]
	if !ok {
		return nil, false, nil
	}
	out := make(repository.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, true, nil
}

func (s *Store) Set(_ context.Context, collection, key string, doc repository.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.data[collection]
	if !ok {
		col = make(map[string]repository.Document)
		s.data[collection] = col
	}
	stored, ok := col[key]
	if !ok {
		stored = make(repository.Document, len(doc))
		col[key] = stored
	}
	for k, v := range doc {
		stored[k] = v
	}
	return nil
}

func (s *Store) Del(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[collection], key)
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}
