package core

import (
	"context"
	"errors"
	"sync"
)

// memStore is an in-memory DocumentStore for tests. List returns ids in
// most-recently-written order, matching the newest-first contract.
type memStore struct {
	mu    sync.Mutex
	docs  map[string]map[string][]byte
	order map[string][]string
	saves int
	fail  error
}

func newMemStore() *memStore {
	return &memStore{
		docs:  make(map[string]map[string][]byte),
		order: make(map[string][]string),
	}
}

func (s *memStore) Load(ctx context.Context, collection, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *memStore) Save(ctx context.Context, collection, id string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.saves++
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string][]byte)
	}
	if _, exists := s.docs[collection][id]; exists {
		for i, existing := range s.order[collection] {
			if existing == id {
				s.order[collection] = append(s.order[collection][:i], s.order[collection][i+1:]...)
				break
			}
		}
	}
	s.docs[collection][id] = doc
	s.order[collection] = append([]string{id}, s.order[collection]...)
	return nil
}

func (s *memStore) List(ctx context.Context, collection string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.order[collection]))
	copy(ids, s.order[collection])
	return ids, nil
}

func (s *memStore) put(collection, id string, doc []byte) {
	_ = s.Save(context.Background(), collection, id, doc)
}

var errSaveFailed = errors.New("save failed")
