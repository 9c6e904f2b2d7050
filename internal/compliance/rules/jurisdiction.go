package rules

import (
	"context"
	"fmt"

	"transferguard/internal/compliance"
	"transferguard/internal/identity"
	"transferguard/pkg/domain"
)

// JurisdictionMode selects how the configured code set is interpreted.
type JurisdictionMode string

const (
	// ModeAllowlist permits only parties attested into one of the
	// configured jurisdictions.
	ModeAllowlist JurisdictionMode = "allowlist"
	// ModeDenylist blocks parties attested into any configured
	// jurisdiction.
	ModeDenylist JurisdictionMode = "denylist"
)

// JurisdictionRule gates operations on the geographic attestation of both
// parties. A party with no valid, resolvable jurisdiction fails the check in
// either mode: geographic restriction is fail-closed.
type JurisdictionRule struct {
	resolver identity.Resolver
	mode     JurisdictionMode
	codes    map[string]struct{}
}

// NewJurisdiction builds the rule over a set of ISO 3166-1 alpha-2 codes.
func NewJurisdiction(resolver identity.Resolver, mode JurisdictionMode, codes []string) *JurisdictionRule {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return &JurisdictionRule{resolver: resolver, mode: mode, codes: set}
}

func (r *JurisdictionRule) ID() string {
	return RuleIDJurisdiction
}

func (r *JurisdictionRule) Evaluate(ctx context.Context, op compliance.Operation) compliance.RuleResult {
	if res := r.checkParty(ctx, "actor", op.Actor); !res.Passed {
		return res
	}
	if !op.Counterparty.IsZero() {
		if res := r.checkParty(ctx, "counterparty", op.Counterparty); !res.Passed {
			return res
		}
	}
	return compliance.Pass(r.ID())
}

func (r *JurisdictionRule) checkParty(ctx context.Context, label string, addr domain.Address) compliance.RuleResult {
	status, err := r.resolver.ResolveIdentity(ctx, addr)
	if err != nil {
		return compliance.Fail(r.ID(), "identity resolver unavailable")
	}
	if !status.IsValid || status.Jurisdiction == "" {
		return compliance.Fail(r.ID(), fmt.Sprintf("%s has no valid jurisdiction attestation", label))
	}

	_, listed := r.codes[status.Jurisdiction]
	switch r.mode {
	case ModeAllowlist:
		if !listed {
			return compliance.Fail(r.ID(), fmt.Sprintf(
				"%s jurisdiction %s is not permitted", label, status.Jurisdiction))
		}
	case ModeDenylist:
		if listed {
			return compliance.Fail(r.ID(), fmt.Sprintf(
				"%s jurisdiction %s is restricted", label, status.Jurisdiction))
		}
	}
	return compliance.Pass(r.ID())
}
