package compliance

import (
	"time"

	"transferguard/pkg/domain"
)

// OperationType enumerates the asset operations subject to compliance review.
type OperationType string

const (
	OpTransfer OperationType = "transfer"
	OpMint     OperationType = "mint"
	OpBurn     OperationType = "burn"
	OpApprove  OperationType = "approve"
	OpDeposit  OperationType = "deposit"
	OpWithdraw OperationType = "withdraw"
	OpRedeem   OperationType = "redeem"
)

// IsValid checks if the operation type is one of the supported enum values.
func (t OperationType) IsValid() bool {
	switch t {
	case OpTransfer, OpMint, OpBurn, OpApprove, OpDeposit, OpWithdraw, OpRedeem:
		return true
	}
	return false
}

func (t OperationType) String() string {
	return string(t)
}

// Outgoing reports whether the operation moves assets out of the actor's
// balance. Lockups apply only to outgoing operations.
func (t OperationType) Outgoing() bool {
	switch t {
	case OpTransfer, OpBurn, OpWithdraw, OpRedeem:
		return true
	}
	return false
}

// Operation is an immutable description of one proposed asset operation.
// It is built once by the caller and passed by value through evaluation;
// rules see a stable snapshot even when external state changes between them.
type Operation struct {
	Type         OperationType
	Actor        domain.Address
	Counterparty domain.Address
	Amount       uint64
	Asset        domain.AssetID
	Timestamp    time.Time
	metadata     map[string][]byte
}

// OperationParams carries the inputs for NewOperation.
type OperationParams struct {
	Type         OperationType
	Actor        domain.Address
	Counterparty domain.Address
	Amount       uint64
	Asset        domain.AssetID
	Timestamp    time.Time
	Metadata     map[string][]byte
}

// NewOperation constructs an Operation, copying the metadata map so later
// mutations by the caller cannot leak into an in-flight evaluation.
func NewOperation(p OperationParams) Operation {
	op := Operation{
		Type:         p.Type,
		Actor:        p.Actor,
		Counterparty: p.Counterparty,
		Amount:       p.Amount,
		Asset:        p.Asset,
		Timestamp:    p.Timestamp,
	}
	if len(p.Metadata) > 0 {
		op.metadata = make(map[string][]byte, len(p.Metadata))
		for k, v := range p.Metadata {
			buf := make([]byte, len(v))
			copy(buf, v)
			op.metadata[k] = buf
		}
	}
	return op
}

// Metadata returns the side-channel blob stored under key, copied so rules
// cannot mutate shared state. The second return reports presence.
func (o Operation) Metadata(key string) ([]byte, bool) {
	v, ok := o.metadata[key]
	if !ok {
		return nil, false
	}
	buf := make([]byte, len(v))
	copy(buf, v)
	return buf, true
}
