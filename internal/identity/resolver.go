// Package identity defines the attestation resolution boundary the
// compliance rules consume. Resolver implementations own expiry enforcement:
// an attestation whose expiry has passed must never be reported valid. The
// tier and jurisdiction rules rely on that contract and do not re-check
// expiry themselves; ExpiryGuard exists for deployments that want a
// defensive second check in front of an untrusted resolver.
package identity

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"transferguard/pkg/domain"
)

// Tier is the KYC attestation level. Tiers are totally ordered and compare
// by integer rank.
type Tier int

const (
	TierNone Tier = iota
	TierBasic
	TierIntermediate
	TierAdvanced
	TierAccredited
)

var tierNames = map[Tier]string{
	TierNone:         "none",
	TierBasic:        "basic",
	TierIntermediate: "intermediate",
	TierAdvanced:     "advanced",
	TierAccredited:   "accredited",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// AtLeast reports whether t meets the given minimum.
func (t Tier) AtLeast(minimum Tier) bool {
	return t >= minimum
}

// ParseTier converts a string tier name to its Tier value.
func ParseTier(s string) (Tier, error) {
	for tier, name := range tierNames {
		if name == s {
			return tier, nil
		}
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}

// AttestationStatus is what a resolver reports for one address.
type AttestationStatus struct {
	Tier    Tier
	IsValid bool
	// ExpiresAt is the attestation expiry; the zero time means "never".
	ExpiresAt time.Time
	// Jurisdiction is the ISO 3166-1 alpha-2 code, or empty when unknown.
	Jurisdiction string
}

// ValidAt reports whether the attestation is valid at the given instant,
// combining the validity flag with expiry.
func (a AttestationStatus) ValidAt(now time.Time) bool {
	if !a.IsValid {
		return false
	}
	if a.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(a.ExpiresAt)
}

// Resolver maps an address to its attestation status. Implementations must
// be safe for concurrent use and must report expired attestations as
// invalid.
type Resolver interface {
	ResolveIdentity(ctx context.Context, addr domain.Address) (AttestationStatus, error)

	// HasMinimumTier is a convenience over ResolveIdentity that applies
	// the same validity and expiry contract.
	HasMinimumTier(ctx context.Context, addr domain.Address, tier Tier) (bool, error)

	// IsInJurisdiction reports whether the address has a valid attestation
	// placing it in the given jurisdiction.
	IsInJurisdiction(ctx context.Context, addr domain.Address, code string) (bool, error)
}
