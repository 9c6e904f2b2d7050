package handler

import (
	"strings"
	"time"

	"transferguard/internal/compliance"
	dErrors "transferguard/pkg/domain-errors"
	"transferguard/pkg/domain"
)

// EvaluateRequest is the HTTP request body for POST /compliance/evaluate.
type EvaluateRequest struct {
	OperationType string            `json:"operation_type"`
	Actor         string            `json:"actor"`
	Counterparty  string            `json:"counterparty,omitempty"`
	Amount        uint64            `json:"amount"`
	Asset         string            `json:"asset"`
	Timestamp     time.Time         `json:"timestamp,omitzero"`
	Metadata      map[string][]byte `json:"metadata,omitempty"`
}

// Validate validates the request fields.
func (r *EvaluateRequest) Validate() error {
	r.OperationType = strings.TrimSpace(strings.ToLower(r.OperationType))
	if r.OperationType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "operation_type is required")
	}
	if !compliance.OperationType(r.OperationType).IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown operation_type %q", r.OperationType)
	}

	r.Actor = strings.TrimSpace(r.Actor)
	if r.Actor == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actor is required")
	}

	r.Counterparty = strings.TrimSpace(r.Counterparty)
	r.Asset = strings.TrimSpace(r.Asset)
	return nil
}

// ToOperation builds the domain operation, stamping the request arrival time
// when the caller did not supply one.
func (r *EvaluateRequest) ToOperation(now time.Time) compliance.Operation {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return compliance.NewOperation(compliance.OperationParams{
		Type:         compliance.OperationType(r.OperationType),
		Actor:        domain.Address(r.Actor),
		Counterparty: domain.Address(r.Counterparty),
		Amount:       r.Amount,
		Asset:        domain.AssetID(r.Asset),
		Timestamp:    ts,
		Metadata:     r.Metadata,
	})
}

// RecordTransferRequest is the HTTP request body for
// POST /compliance/transfers/record.
type RecordTransferRequest struct {
	Actor  string `json:"actor"`
	Amount uint64 `json:"amount"`
}

// Validate validates the request fields.
func (r *RecordTransferRequest) Validate() error {
	r.Actor = strings.TrimSpace(r.Actor)
	if r.Actor == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actor is required")
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	return nil
}

// ActorAddress returns the validated actor address.
func (r *RecordTransferRequest) ActorAddress() domain.Address {
	return domain.Address(r.Actor)
}
