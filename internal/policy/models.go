// Package policy versions rule-set configurations through a staged
// activation lifecycle. The registry is deliberately decoupled from the hot
// evaluation path: activating a policy emits the signal that should trigger
// swapping the engine's active configuration, but the two remain separate
// collaborators so time-locked governance stays out of per-transaction code.
package policy

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of one policy version.
type Status string

const (
	// StatusDraft is the initial state; the only state in which the
	// activation delay may be changed.
	StatusDraft Status = "draft"
	// StatusStaged starts the activation delay clock.
	StatusStaged Status = "staged"
	// StatusActive is held by at most one version at a time.
	StatusActive Status = "active"
	// StatusDeprecated is terminal; no transition leaves it.
	StatusDeprecated Status = "deprecated"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusStaged, StatusActive, StatusDeprecated:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Policy is one versioned rule-set configuration record. History is
// append-only: versions are never deleted, and every version's metadata
// stays queryable forever.
type Policy struct {
	ID          uuid.UUID `json:"id"`
	Version     int       `json:"version"`
	Status      Status    `json:"status"`
	ConfigRef   string    `json:"config_ref"`
	Description string    `json:"description,omitempty"`

	// ActivationDelay is the minimum time between staging and a permitted
	// activation.
	ActivationDelay time.Duration `json:"activation_delay"`

	CreatedAt    time.Time `json:"created_at"`
	StagedAt     time.Time `json:"staged_at,omitzero"`
	ActivatedAt  time.Time `json:"activated_at,omitzero"`
	DeprecatedAt time.Time `json:"deprecated_at,omitzero"`
	CreatedBy    string    `json:"created_by,omitempty"`
}

// ActivatableAt returns the earliest instant at which the version may be
// activated. Only meaningful while Staged.
func (p *Policy) ActivatableAt() time.Time {
	return p.StagedAt.Add(p.ActivationDelay)
}
