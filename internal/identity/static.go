package identity

import (
	"context"
	"sync"

	"transferguard/pkg/domain"
	"transferguard/pkg/requestcontext"
)

// StaticResolver is an in-memory, administratively managed attestation
// store. It enforces the expiry contract: an attestation past its expiry is
// reported with IsValid=false and an empty jurisdiction.
type StaticResolver struct {
	mu           sync.RWMutex
	attestations map[domain.Address]AttestationStatus
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{attestations: make(map[domain.Address]AttestationStatus)}
}

// SetAttestation registers or replaces the attestation for an address.
func (r *StaticResolver) SetAttestation(addr domain.Address, status AttestationStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attestations[addr] = status
}

// RemoveAttestation deletes the attestation for an address.
func (r *StaticResolver) RemoveAttestation(addr domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attestations, addr)
}

func (r *StaticResolver) ResolveIdentity(ctx context.Context, addr domain.Address) (AttestationStatus, error) {
	r.mu.RLock()
	status, ok := r.attestations[addr]
	r.mu.RUnlock()

	if !ok {
		return AttestationStatus{Tier: TierNone}, nil
	}
	if !status.ValidAt(requestcontext.Now(ctx)) {
		// Report expired or revoked attestations as fully invalid so no
		// caller can act on stale tier or jurisdiction data.
		return AttestationStatus{Tier: TierNone, ExpiresAt: status.ExpiresAt}, nil
	}
	return status, nil
}

func (r *StaticResolver) HasMinimumTier(ctx context.Context, addr domain.Address, tier Tier) (bool, error) {
	status, err := r.ResolveIdentity(ctx, addr)
	if err != nil {
		return false, err
	}
	return status.IsValid && status.Tier.AtLeast(tier), nil
}

func (r *StaticResolver) IsInJurisdiction(ctx context.Context, addr domain.Address, code string) (bool, error) {
	status, err := r.ResolveIdentity(ctx, addr)
	if err != nil {
		return false, err
	}
	return status.IsValid && status.Jurisdiction == code, nil
}
