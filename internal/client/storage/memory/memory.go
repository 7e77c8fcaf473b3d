// Package memory provides an in-process TokenStore. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/leun/leun-client/internal/client/storage"
)

// Store keeps values in a map guarded by a mutex.
type Store struct {
	values map[string]string
	mu     sync.RWMutex
}

var _ storage.TokenStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value for key.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Delete removes keys.
func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// Close is a no-op; it lets the store be used where a closable store is expected.
func (s *Store) Close() error {
	return nil
}
