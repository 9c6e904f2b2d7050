package handler

import (
	"time"

	"transferguard/internal/policy"
)

// PolicyResponse is the HTTP representation of one policy version.
type PolicyResponse struct {
	ID                 string    `json:"id"`
	Version            int       `json:"version"`
	Status             string    `json:"status"`
	ConfigRef          string    `json:"config_ref"`
	Description        string    `json:"description,omitempty"`
	ActivationDelaySec int64     `json:"activation_delay_seconds"`
	CreatedAt          time.Time `json:"created_at"`
	StagedAt           time.Time `json:"staged_at,omitzero"`
	ActivatableAt      time.Time `json:"activatable_at,omitzero"`
	ActivatedAt        time.Time `json:"activated_at,omitzero"`
	DeprecatedAt       time.Time `json:"deprecated_at,omitzero"`
	CreatedBy          string    `json:"created_by,omitempty"`
}

// FromPolicy converts a policy record to an HTTP response. ActivatableAt is
// populated only while the version is staged.
func FromPolicy(p *policy.Policy) *PolicyResponse {
	resp := &PolicyResponse{
		ID:                 p.ID.String(),
		Version:            p.Version,
		Status:             p.Status.String(),
		ConfigRef:          p.ConfigRef,
		Description:        p.Description,
		ActivationDelaySec: int64(p.ActivationDelay / time.Second),
		CreatedAt:          p.CreatedAt,
		StagedAt:           p.StagedAt,
		ActivatedAt:        p.ActivatedAt,
		DeprecatedAt:       p.DeprecatedAt,
		CreatedBy:          p.CreatedBy,
	}
	if p.Status == policy.StatusStaged {
		resp.ActivatableAt = p.ActivatableAt()
	}
	return resp
}
