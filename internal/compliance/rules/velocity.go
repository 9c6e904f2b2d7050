package rules

import (
	"context"
	"fmt"
	"time"

	"transferguard/internal/compliance"
	"transferguard/pkg/domain"
	"transferguard/pkg/requestcontext"
)

// WindowState is one address's rolling transfer window.
type WindowState struct {
	WindowStart time.Time `json:"window_start"`
	Amount      uint64    `json:"amount"`
}

// ExpiredAt reports whether the window has rolled over at the given instant.
// A zero state (no transfers recorded yet) counts as expired.
func (w WindowState) ExpiredAt(now time.Time, duration time.Duration) bool {
	if w.WindowStart.IsZero() {
		return true
	}
	return !now.Before(w.WindowStart.Add(duration))
}

// WindowStore tracks per-address rolling windows. Get is the read-only
// evaluation path. Record is the commit path and must be atomic per address:
// two concurrent commits to the same window are a read-modify-write race
// unless the store serializes them (mutex, Lua script, or single-writer
// discipline).
type WindowStore interface {
	Get(ctx context.Context, addr domain.Address) (WindowState, error)

	// Record adds amount to the address's current window, first resetting
	// the window when it has expired at now.
	Record(ctx context.Context, addr domain.Address, amount uint64, now time.Time, duration time.Duration) error
}

// VelocityRule caps the cumulative amount an address may transfer inside a
// rolling time window.
//
// Evaluate is strictly read-only: it inspects the window but never advances
// or increments it, so a simulated, reverted, or otherwise rejected transfer
// leaves rate-limit state untouched. Committing consumed capacity is the
// separate RecordTransfer step, invoked by the caller only after a transfer
// actually succeeds.
type VelocityRule struct {
	store     WindowStore
	maxAmount uint64
	duration  time.Duration
}

func NewVelocity(store WindowStore, maxAmount uint64, windowDuration time.Duration) *VelocityRule {
	return &VelocityRule{store: store, maxAmount: maxAmount, duration: windowDuration}
}

func (r *VelocityRule) ID() string {
	return RuleIDVelocity
}

func (r *VelocityRule) Evaluate(ctx context.Context, op compliance.Operation) compliance.RuleResult {
	if op.Type != compliance.OpTransfer {
		return compliance.Pass(r.ID())
	}

	window, err := r.store.Get(ctx, op.Actor)
	if err != nil {
		return compliance.Fail(r.ID(), "velocity store unavailable")
	}

	now := requestcontext.Now(ctx)
	inWindow := window.Amount
	if window.ExpiredAt(now, r.duration) {
		// The window has rolled over: only this transfer counts.
		inWindow = 0
	}

	if op.Amount > r.maxAmount || inWindow > r.maxAmount-op.Amount {
		return compliance.Fail(r.ID(), fmt.Sprintf(
			"transfer of %d exceeds velocity limit %d in window (%d already transferred)",
			op.Amount, r.maxAmount, inWindow))
	}
	return compliance.Pass(r.ID())
}

// RecordTransfer commits a successfully executed transfer into the actor's
// window. This is the one sanctioned mutation in the rule set and must be
// called outside Evaluate, after the transfer is final.
func (r *VelocityRule) RecordTransfer(ctx context.Context, actor domain.Address, amount uint64) error {
	return r.store.Record(ctx, actor, amount, requestcontext.Now(ctx), r.duration)
}
