package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transferguard/pkg/domain"
	"transferguard/pkg/requestcontext"
)

var (
	staticNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	addr      = domain.Address("0xabc")
)

func ctxAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}

func TestStaticResolver(t *testing.T) {
	t.Run("unknown address resolves to no attestation", func(t *testing.T) {
		r := NewStaticResolver()

		status, err := r.ResolveIdentity(ctxAt(staticNow), addr)
		require.NoError(t, err)
		assert.Equal(t, TierNone, status.Tier)
		assert.False(t, status.IsValid)
	})

	t.Run("valid attestation round trips", func(t *testing.T) {
		r := NewStaticResolver()
		r.SetAttestation(addr, AttestationStatus{
			Tier: TierAdvanced, IsValid: true, Jurisdiction: "US",
		})

		status, err := r.ResolveIdentity(ctxAt(staticNow), addr)
		require.NoError(t, err)
		assert.Equal(t, TierAdvanced, status.Tier)
		assert.Equal(t, "US", status.Jurisdiction)
	})

	t.Run("expired attestation reported invalid with no jurisdiction", func(t *testing.T) {
		r := NewStaticResolver()
		r.SetAttestation(addr, AttestationStatus{
			Tier: TierAdvanced, IsValid: true, Jurisdiction: "US",
			ExpiresAt: staticNow.Add(-time.Minute),
		})

		status, err := r.ResolveIdentity(ctxAt(staticNow), addr)
		require.NoError(t, err)
		assert.Equal(t, TierNone, status.Tier)
		assert.False(t, status.IsValid)
		assert.Empty(t, status.Jurisdiction)
	})

	t.Run("removal takes effect immediately", func(t *testing.T) {
		r := NewStaticResolver()
		r.SetAttestation(addr, AttestationStatus{Tier: TierBasic, IsValid: true})
		r.RemoveAttestation(addr)

		ok, err := r.HasMinimumTier(ctxAt(staticNow), addr, TierBasic)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStaticResolverTierChecks(t *testing.T) {
	r := NewStaticResolver()
	r.SetAttestation(addr, AttestationStatus{Tier: TierIntermediate, IsValid: true, Jurisdiction: "DE"})
	ctx := ctxAt(staticNow)

	t.Run("meets equal and lower minimums", func(t *testing.T) {
		for _, tier := range []Tier{TierNone, TierBasic, TierIntermediate} {
			ok, err := r.HasMinimumTier(ctx, addr, tier)
			require.NoError(t, err)
			assert.True(t, ok, "tier %s", tier)
		}
	})

	t.Run("fails higher minimums", func(t *testing.T) {
		ok, err := r.HasMinimumTier(ctx, addr, TierAdvanced)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("jurisdiction check matches exactly", func(t *testing.T) {
		ok, err := r.IsInJurisdiction(ctx, addr, "DE")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.IsInJurisdiction(ctx, addr, "US")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("advanced")
	require.NoError(t, err)
	assert.Equal(t, TierAdvanced, tier)

	_, err = ParseTier("platinum")
	require.Error(t, err)
}

func TestAttestationStatusValidAt(t *testing.T) {
	t.Run("zero expiry never expires", func(t *testing.T) {
		status := AttestationStatus{IsValid: true}
		assert.True(t, status.ValidAt(staticNow.Add(100*365*24*time.Hour)))
	})

	t.Run("invalid flag wins over expiry", func(t *testing.T) {
		status := AttestationStatus{IsValid: false, ExpiresAt: staticNow.Add(time.Hour)}
		assert.False(t, status.ValidAt(staticNow))
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		status := AttestationStatus{IsValid: true, ExpiresAt: staticNow}
		assert.False(t, status.ValidAt(staticNow))
		assert.True(t, status.ValidAt(staticNow.Add(-time.Nanosecond)))
	})
}
