// Package velocity provides storage backends for per-address rolling
// transfer windows. Record implementations are atomic per address: the
// commit step is a read-modify-write that must never interleave for the
// same address.
package velocity

import (
	"context"
	"sync"
	"time"

	"transferguard/internal/compliance/rules"
	"transferguard/pkg/domain"
)

// MemoryStore keeps windows in memory, serializing commits with a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[domain.Address]rules.WindowState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[domain.Address]rules.WindowState)}
}

func (s *MemoryStore) Get(_ context.Context, addr domain.Address) (rules.WindowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windows[addr], nil
}

func (s *MemoryStore) Record(_ context.Context, addr domain.Address, amount uint64, now time.Time, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[addr]
	if window.ExpiredAt(now, duration) {
		window = rules.WindowState{WindowStart: now, Amount: amount}
	} else {
		window.Amount += amount
	}
	s.windows[addr] = window
	return nil
}
