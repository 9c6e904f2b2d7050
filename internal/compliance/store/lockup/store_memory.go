// Package lockup provides storage backends for lockup records.
package lockup

import (
	"context"
	"sync"

	"transferguard/internal/compliance/rules"
	"transferguard/pkg/domain"
)

// MemoryStore keeps lockup records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.Address]rules.LockupRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.Address]rules.LockupRecord)}
}

func (s *MemoryStore) Get(_ context.Context, addr domain.Address) (*rules.LockupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[addr]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryStore) Set(_ context.Context, record rules.LockupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Address] = record
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, addr)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]rules.LockupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rules.LockupRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}
