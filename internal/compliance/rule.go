package compliance

import "context"

// Rule is a pure predicate over one Operation. Implementations may consult
// read-only external state (identity attestations, asset supply) but must not
// mutate anything during Evaluate. Dependency faults are converted into
// fail-closed results by the rule itself; only programming errors panic, and
// the engine deliberately lets those propagate.
type Rule interface {
	// ID returns the stable identifier used for registration, ordering,
	// and audit attribution. Unique within a RuleSet.
	ID() string

	// Evaluate decides whether the operation is permitted by this rule.
	Evaluate(ctx context.Context, op Operation) RuleResult
}

// RuleResult is the outcome of a single rule evaluation. A failed result
// always carries a non-empty human-readable reason; that reason is what the
// end user sees when the operation is blocked.
type RuleResult struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
	RuleID string `json:"rule_id"`
}

// Pass builds a passing result for the given rule.
func Pass(ruleID string) RuleResult {
	return RuleResult{Passed: true, RuleID: ruleID}
}

// Fail builds a failing result with the blocking reason.
func Fail(ruleID, reason string) RuleResult {
	return RuleResult{Passed: false, Reason: reason, RuleID: ruleID}
}
