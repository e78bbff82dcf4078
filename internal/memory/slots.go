// Package memory provides a process-local slot storage backend.
package memory

import (
	"context"
	"sync"
)

// SlotStorage keeps slots in a map. The zero value is not usable; call New.
type SlotStorage struct {
	mu    sync.RWMutex
	slots map[string]string
}

// New creates an empty SlotStorage.
func New() *SlotStorage {
	return &SlotStorage{slots: map[string]string{}}
}

// Get returns the value stored under key.
func (s *SlotStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.slots[key]
	return value, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *SlotStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
	return nil
}

// Delete removes key.
func (s *SlotStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
}
