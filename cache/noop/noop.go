// Package noop is an in-memory cache.Cache, used by tests and by any
// caller that wants the Cache interface without persistence (mirrors
// sheens' cmd/mservice/storage/noop.go).
package noop

import (
	"sync"

	"github.com/loomlang/loom/core"
)

// Storage is a map-backed cache.Cache. The zero value is ready to use.
type Storage struct {
	mu      sync.RWMutex
	entries map[string]*core.Machine
}

func NewStorage() *Storage {
	return &Storage{entries: make(map[string]*core.Machine)}
}

func (s *Storage) Get(key string) (*core.Machine, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, have := s.entries[key]
	return m, have, nil
}

func (s *Storage) Put(key string, m *core.Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]*core.Machine)
	}
	s.entries[key] = m
	return nil
}
