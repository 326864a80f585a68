package memory

import (
	"context"
	"sync"

	"smartspend/internal/storage"
)

// Store is an in-process key-value slot. It loses its contents on exit and
// is meant for tests and throwaway runs.
type Store struct {
	mu     sync.Mutex
	items  map[string][]byte
	saves  int
	failOn error
}

func New() *Store {
	return &Store{items: map[string][]byte{}}
}

// NewWithValue returns a store pre-populated with one key.
func NewWithValue(key string, value []byte) *Store {
	s := New()
	s.items[key] = clone(value)
	return s
}

// Load returns a copy of the value under key.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(v), nil
}

// Save stores a copy of value under key.
func (s *Store) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn
	}
	s.items[key] = clone(value)
	s.saves++
	return nil
}

// Ping fails with the injected error, if any.
func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failOn
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Saves reports how many successful writes the store has seen.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailWith makes subsequent saves and pings return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn = err
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
