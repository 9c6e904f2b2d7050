package rules

import (
	"context"
	"fmt"
	"time"

	"transferguard/internal/compliance"
	"transferguard/pkg/domain"
	"transferguard/pkg/requestcontext"
)

// BlacklistEntry records one blocked address. A zero ExpiresAt means the
// entry is permanent; a set ExpiresAt makes the entry inert once reached,
// with no administrative action needed to unblock.
type BlacklistEntry struct {
	Address   domain.Address `json:"address"`
	Reason    string         `json:"reason"`
	ExpiresAt time.Time      `json:"expires_at,omitzero"`
	CreatedAt time.Time      `json:"created_at"`
	CreatedBy string         `json:"created_by,omitempty"`
}

// ActiveAt reports whether the entry blocks at the given instant.
func (e BlacklistEntry) ActiveAt(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(e.ExpiresAt)
}

// BlacklistStore is the read/write surface for blacklist entries. Get is the
// hot path consulted per evaluation; the rest serve the admin API.
type BlacklistStore interface {
	// Get returns the entry for addr, or nil when none exists.
	Get(ctx context.Context, addr domain.Address) (*BlacklistEntry, error)
	Add(ctx context.Context, entry BlacklistEntry) error
	Remove(ctx context.Context, addr domain.Address) error
	List(ctx context.Context) ([]BlacklistEntry, error)
}

// BlacklistRule blocks operations touching a blacklisted actor or
// counterparty. Expiry is a pure function of the evaluation time: the same
// entry blocks before its expiry and passes at or after it.
type BlacklistRule struct {
	store BlacklistStore
}

func NewBlacklist(store BlacklistStore) *BlacklistRule {
	return &BlacklistRule{store: store}
}

func (r *BlacklistRule) ID() string {
	return RuleIDBlacklist
}

func (r *BlacklistRule) Evaluate(ctx context.Context, op compliance.Operation) compliance.RuleResult {
	now := requestcontext.Now(ctx)

	if res := r.checkParty(ctx, "actor", op.Actor, now); !res.Passed {
		return res
	}
	if !op.Counterparty.IsZero() {
		if res := r.checkParty(ctx, "counterparty", op.Counterparty, now); !res.Passed {
			return res
		}
	}
	return compliance.Pass(r.ID())
}

func (r *BlacklistRule) checkParty(ctx context.Context, label string, addr domain.Address, now time.Time) compliance.RuleResult {
	entry, err := r.store.Get(ctx, addr)
	if err != nil {
		return compliance.Fail(r.ID(), "blacklist store unavailable")
	}
	if entry != nil && entry.ActiveAt(now) {
		reason := entry.Reason
		if reason == "" {
			reason = "address is blacklisted"
		}
		return compliance.Fail(r.ID(), fmt.Sprintf("%s: %s", label, reason))
	}
	return compliance.Pass(r.ID())
}
