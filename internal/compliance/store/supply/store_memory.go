// Package supply tracks circulating supply per asset for the supply cap
// rule. The authoritative ledger lives outside this service; deployments
// feed supply figures in through the admin API or a reconciliation job.
package supply

import (
	"context"
	"sync"

	"transferguard/pkg/domain"
)

// MemoryStore is an in-memory supply tracker.
type MemoryStore struct {
	mu       sync.RWMutex
	supplies map[domain.AssetID]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{supplies: make(map[domain.AssetID]uint64)}
}

// TotalSupply returns the recorded circulating supply for the asset, zero
// when the asset has never been reported.
func (s *MemoryStore) TotalSupply(ctx context.Context, asset domain.AssetID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.supplies[asset], nil
}

// SetTotalSupply records the circulating supply for an asset.
func (s *MemoryStore) SetTotalSupply(ctx context.Context, asset domain.AssetID, total uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supplies[asset] = total
	return nil
}
