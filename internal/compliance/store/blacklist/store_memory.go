// Package blacklist provides storage backends for blacklist entries.
package blacklist

import (
	"context"
	"sync"

	"transferguard/internal/compliance/rules"
	"transferguard/pkg/domain"
)

// MemoryStore keeps blacklist entries in memory. Unit-test substrate and
// single-node default.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.Address]rules.BlacklistEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[domain.Address]rules.BlacklistEntry)}
}

func (s *MemoryStore) Get(_ context.Context, addr domain.Address) (*rules.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[addr]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *MemoryStore) Add(_ context.Context, entry rules.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Address] = entry
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, addr)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]rules.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rules.BlacklistEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out, nil
}
