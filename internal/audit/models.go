package audit

import (
	"time"

	"transferguard/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. Categories
// drive retention and routing: compliance events need long, tamper-evident
// retention while operational events can be sampled.
type EventCategory string

const (
	// CategoryCompliance covers configuration changes and policy lifecycle
	// transitions with regulatory significance.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers per-evaluation summaries used for
	// monitoring and debugging.
	CategoryOperations EventCategory = "operations"
)

// EventType identifies what happened. Every ruleset change, evaluation-mode
// change, policy transition, and evaluation outcome emits exactly one event,
// synchronously within the triggering call.
type EventType string

const (
	EventRuleAdded      EventType = "ruleset_rule_added"
	EventRuleEnabled    EventType = "ruleset_rule_enabled"
	EventRuleDisabled   EventType = "ruleset_rule_disabled"
	EventRuleReordered  EventType = "ruleset_rule_reordered"
	EventRuleSetSwapped EventType = "ruleset_swapped"
	EventModeChanged    EventType = "evaluation_mode_changed"

	EventPolicyRegistered      EventType = "policy_registered"
	EventPolicyStaged          EventType = "policy_staged"
	EventPolicyActivated       EventType = "policy_activated"
	EventPolicyDeprecated      EventType = "policy_deprecated"
	EventPolicyStagingCanceled EventType = "policy_staging_canceled"
	EventPolicyDelayChanged    EventType = "policy_delay_changed"

	EventBlacklistAdded     EventType = "blacklist_entry_added"
	EventBlacklistRemoved   EventType = "blacklist_entry_removed"
	EventLockupSet          EventType = "lockup_record_set"
	EventLockupRemoved      EventType = "lockup_record_removed"
	EventAttestationSet     EventType = "attestation_set"
	EventAttestationRemoved EventType = "attestation_removed"
	EventSupplyReported     EventType = "supply_reported"

	EventEvaluationCompleted EventType = "evaluation_completed"

	EventTransferRecorded EventType = "velocity_transfer_recorded"
)

// Event is one audit record. Keep it transport-agnostic so sinks (memory,
// log, Kafka) can fan out without caring who produced it.
type Event struct {
	ID        string         `json:"id"`
	Category  EventCategory  `json:"category"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Actor     string         `json:"actor,omitempty"` // admin subject for config changes
	RequestID string         `json:"request_id,omitempty"`
	Address   domain.Address `json:"address,omitempty"`
	Asset     domain.AssetID `json:"asset,omitempty"`

	// Evaluation summary fields, set for EventEvaluationCompleted.
	Passed     *bool  `json:"passed,omitempty"`
	FailedRule string `json:"failed_rule,omitempty"`
	Reason     string `json:"reason,omitempty"`

	// Configuration fields, set for ruleset and policy events.
	RuleID        string `json:"rule_id,omitempty"`
	Mode          string `json:"mode,omitempty"`
	PolicyVersion int    `json:"policy_version,omitempty"`
	Detail        string `json:"detail,omitempty"`
}
