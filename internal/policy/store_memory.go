package policy

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps policy records in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	policies map[int]Policy
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{policies: make(map[int]Policy)}
}

func (s *MemoryStore) Insert(_ context.Context, p *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.Version] = *p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, version int) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[version]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) Update(_ context.Context, p *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.Version] = *p
	return nil
}

func (s *MemoryStore) MaxVersion(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxVersion := 0
	for version := range s.policies {
		if version > maxVersion {
			maxVersion = version
		}
	}
	return maxVersion, nil
}

func (s *MemoryStore) ActiveVersion(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for version, p := range s.policies {
		if p.Status == StatusActive {
			return version, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Policy, 0, len(s.policies))
	for _, p := range s.policies {
		record := p
		out = append(out, &record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
