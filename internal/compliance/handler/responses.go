package handler

import (
	"transferguard/internal/compliance"
)

// EvaluateResponse is the HTTP response for POST /compliance/evaluate.
type EvaluateResponse struct {
	Passed         bool   `json:"passed"`
	FailedRule     string `json:"failed_rule,omitempty"`
	Reason         string `json:"reason,omitempty"`
	EvaluatedRules int    `json:"evaluated_rules"`
	Mode           string `json:"mode"`
	RuleSetVersion uint64 `json:"rule_set_version"`
}

// FromResult converts an evaluation result to an HTTP response.
func FromResult(result compliance.EvaluationResult, mode compliance.EvaluationMode, version uint64) *EvaluateResponse {
	return &EvaluateResponse{
		Passed:         result.Passed,
		FailedRule:     result.FailedRule,
		Reason:         result.Reason,
		EvaluatedRules: result.EvaluatedRules,
		Mode:           mode.String(),
		RuleSetVersion: version,
	}
}
