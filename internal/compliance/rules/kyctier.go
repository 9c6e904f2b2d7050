// Package rules contains the built-in compliance rule predicates. Each rule
// is a pure function of (operation, read-only external state); dependency
// faults are converted into fail-closed results, never propagated.
package rules

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"transferguard/internal/compliance"
	"transferguard/internal/identity"
)

// Stable rule identifiers, used for registration and audit attribution.
const (
	RuleIDKYCTier      = "kyc_tier"
	RuleIDJurisdiction = "jurisdiction"
	RuleIDBlacklist    = "blacklist"
	RuleIDLockup       = "lockup"
	RuleIDSupplyCap    = "supply_cap"
	RuleIDVelocity     = "velocity"
)

// KYCTierRule requires minimum attestation tiers for the parties to an
// operation. Actor and counterparty minimums are independent, so asymmetric
// policies like "anyone may buy, only advanced may sell" are expressible.
type KYCTierRule struct {
	resolver          identity.Resolver
	minActor          identity.Tier
	minCounterparty   identity.Tier
	checkCounterparty bool
}

type KYCTierOption func(*KYCTierRule)

// WithCounterpartyMinimum enables counterparty checking with its own
// minimum tier.
func WithCounterpartyMinimum(tier identity.Tier) KYCTierOption {
	return func(r *KYCTierRule) {
		r.checkCounterparty = true
		r.minCounterparty = tier
	}
}

// NewKYCTier builds the rule with the actor minimum; counterparty checking
// is off unless configured.
func NewKYCTier(resolver identity.Resolver, minActor identity.Tier, opts ...KYCTierOption) *KYCTierRule {
	r := &KYCTierRule{resolver: resolver, minActor: minActor}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *KYCTierRule) ID() string {
	return RuleIDKYCTier
}

func (r *KYCTierRule) Evaluate(ctx context.Context, op compliance.Operation) compliance.RuleResult {
	type partyCheck struct {
		label   string
		minimum identity.Tier
		ok      bool
	}

	checks := []*partyCheck{{label: "actor", minimum: r.minActor}}
	checkCounterparty := r.checkCounterparty && !op.Counterparty.IsZero()
	if checkCounterparty {
		checks = append(checks, &partyCheck{label: "counterparty", minimum: r.minCounterparty})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		addr := op.Actor
		if check.label == "counterparty" {
			addr = op.Counterparty
		}
		c := checks[i]
		g.Go(func() error {
			ok, err := r.resolver.HasMinimumTier(gctx, addr, c.minimum)
			if err != nil {
				return fmt.Errorf("%s: %w", c.label, err)
			}
			c.ok = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return compliance.Fail(r.ID(), "identity resolver unavailable")
	}

	for _, check := range checks {
		if !check.ok {
			return compliance.Fail(r.ID(), fmt.Sprintf(
				"%s does not meet minimum KYC tier %s", check.label, check.minimum))
		}
	}
	return compliance.Pass(r.ID())
}
