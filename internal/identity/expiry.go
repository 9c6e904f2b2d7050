package identity

import (
	"context"

	"transferguard/pkg/domain"
	"transferguard/pkg/requestcontext"
)

// ExpiryGuard wraps another resolver and re-checks attestation expiry on
// every call. The resolver contract already requires expiry enforcement;
// this decorator is the hardening option for deployments fronting a resolver
// they do not fully trust. A resolver that reports IsValid=true for an
// expired attestation would otherwise silently bypass every tier and
// jurisdiction check.
type ExpiryGuard struct {
	inner Resolver
}

func NewExpiryGuard(inner Resolver) *ExpiryGuard {
	return &ExpiryGuard{inner: inner}
}

func (g *ExpiryGuard) ResolveIdentity(ctx context.Context, addr domain.Address) (AttestationStatus, error) {
	status, err := g.inner.ResolveIdentity(ctx, addr)
	if err != nil {
		return AttestationStatus{}, err
	}
	if status.IsValid && !status.ValidAt(requestcontext.Now(ctx)) {
		status.IsValid = false
		status.Jurisdiction = ""
		status.Tier = TierNone
	}
	return status, nil
}

func (g *ExpiryGuard) HasMinimumTier(ctx context.Context, addr domain.Address, tier Tier) (bool, error) {
	status, err := g.ResolveIdentity(ctx, addr)
	if err != nil {
		return false, err
	}
	return status.IsValid && status.Tier.AtLeast(tier), nil
}

func (g *ExpiryGuard) IsInJurisdiction(ctx context.Context, addr domain.Address, code string) (bool, error) {
	status, err := g.ResolveIdentity(ctx, addr)
	if err != nil {
		return false, err
	}
	return status.IsValid && status.Jurisdiction == code, nil
}
