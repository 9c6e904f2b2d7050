package rules

import (
	"context"
	"fmt"

	"transferguard/internal/compliance"
	"transferguard/pkg/domain"
)

// SupplyReader exposes the live total supply of an asset. The read is
// synchronous; a failure to obtain it fails the check, never silently
// passes.
type SupplyReader interface {
	TotalSupply(ctx context.Context, asset domain.AssetID) (uint64, error)
}

// SupplyCapRule blocks mints that would push total supply past the cap.
// Every other operation type passes through.
type SupplyCapRule struct {
	supply    SupplyReader
	maxSupply uint64
}

func NewSupplyCap(supply SupplyReader, maxSupply uint64) *SupplyCapRule {
	return &SupplyCapRule{supply: supply, maxSupply: maxSupply}
}

func (r *SupplyCapRule) ID() string {
	return RuleIDSupplyCap
}

func (r *SupplyCapRule) Evaluate(ctx context.Context, op compliance.Operation) compliance.RuleResult {
	if op.Type != compliance.OpMint {
		return compliance.Pass(r.ID())
	}

	current, err := r.supply.TotalSupply(ctx, op.Asset)
	if err != nil {
		return compliance.Fail(r.ID(), "total supply unavailable")
	}

	// Overflow-safe form of current+amount > max.
	if op.Amount > r.maxSupply || current > r.maxSupply-op.Amount {
		return compliance.Fail(r.ID(), fmt.Sprintf(
			"mint of %d would exceed max supply %d (current %d)", op.Amount, r.maxSupply, current))
	}
	return compliance.Pass(r.ID())
}
