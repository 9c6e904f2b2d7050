package rules

import (
	"context"
	"fmt"
	"time"

	"transferguard/internal/compliance"
	"transferguard/pkg/domain"
	"transferguard/pkg/requestcontext"
)

// LockupRecord holds one address's vesting restriction. LockedAmount of 0
// means the entire balance is locked; a non-zero value caps how much a
// single outgoing operation may move while the lock is active.
type LockupRecord struct {
	Address      domain.Address `json:"address"`
	LockedUntil  time.Time      `json:"locked_until"`
	LockedAmount uint64         `json:"locked_amount"`
	Reason       string         `json:"reason"`
	CreatedAt    time.Time      `json:"created_at"`
	CreatedBy    string         `json:"created_by,omitempty"`
}

// LockupStore is the read/write surface for lockup records.
type LockupStore interface {
	// Get returns the record for addr, or nil when none exists.
	Get(ctx context.Context, addr domain.Address) (*LockupRecord, error)
	Set(ctx context.Context, record LockupRecord) error
	Remove(ctx context.Context, addr domain.Address) error
	List(ctx context.Context) ([]LockupRecord, error)
}

// LockupRule enforces vesting-style restrictions on outgoing operations.
// Inbound operations (mint, deposit, approve) pass through untouched, and a
// lock whose LockedUntil has passed is inert regardless of amount.
type LockupRule struct {
	store LockupStore
}

func NewLockup(store LockupStore) *LockupRule {
	return &LockupRule{store: store}
}

func (r *LockupRule) ID() string {
	return RuleIDLockup
}

func (r *LockupRule) Evaluate(ctx context.Context, op compliance.Operation) compliance.RuleResult {
	if !op.Type.Outgoing() {
		return compliance.Pass(r.ID())
	}

	record, err := r.store.Get(ctx, op.Actor)
	if err != nil {
		return compliance.Fail(r.ID(), "lockup store unavailable")
	}
	if record == nil {
		return compliance.Pass(r.ID())
	}

	now := requestcontext.Now(ctx)
	if !now.Before(record.LockedUntil) {
		return compliance.Pass(r.ID())
	}

	if record.LockedAmount == 0 {
		return compliance.Fail(r.ID(), fmt.Sprintf(
			"balance locked until %s: %s", record.LockedUntil.Format(time.RFC3339), record.Reason))
	}
	if op.Amount > record.LockedAmount {
		return compliance.Fail(r.ID(), fmt.Sprintf(
			"amount %d exceeds locked limit %d until %s",
			op.Amount, record.LockedAmount, record.LockedUntil.Format(time.RFC3339)))
	}
	return compliance.Pass(r.ID())
}
