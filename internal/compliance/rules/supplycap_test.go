package rules

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"transferguard/internal/compliance"
	"transferguard/pkg/domain"
)

type stubSupplyReader struct {
	total uint64
	err   error
}

func (s *stubSupplyReader) TotalSupply(ctx context.Context, asset domain.AssetID) (uint64, error) {
	return s.total, s.err
}

type SupplyCapRuleSuite struct {
	suite.Suite
	supply *stubSupplyReader
	ctx    context.Context
}

func TestSupplyCapRuleSuite(t *testing.T) {
	suite.Run(t, new(SupplyCapRuleSuite))
}

func (s *SupplyCapRuleSuite) SetupTest() {
	s.supply = &stubSupplyReader{}
	s.ctx = context.Background()
}

func (s *SupplyCapRuleSuite) TestEvaluate() {
	rule := NewSupplyCap(s.supply, 1000)

	s.Run("non-mint operations pass without a supply read", func() {
		s.supply.err = errors.New("should not be called")
		defer func() { s.supply.err = nil }()

		res := rule.Evaluate(s.ctx, opOfType(compliance.OpTransfer, 5000))
		s.True(res.Passed)
	})

	s.Run("mint within cap passes", func() {
		s.supply.total = 900
		res := rule.Evaluate(s.ctx, opOfType(compliance.OpMint, 100))
		s.True(res.Passed)
	})

	s.Run("mint exceeding cap fails", func() {
		s.supply.total = 900
		res := rule.Evaluate(s.ctx, opOfType(compliance.OpMint, 101))
		s.False(res.Passed)
		s.Contains(res.Reason, "would exceed max supply 1000")
		s.Contains(res.Reason, "current 900")
	})

	s.Run("supply read failure fails closed", func() {
		s.supply.err = errors.New("ledger unreachable")
		res := rule.Evaluate(s.ctx, opOfType(compliance.OpMint, 1))
		s.False(res.Passed)
		s.Equal("total supply unavailable", res.Reason)
	})
}

func (s *SupplyCapRuleSuite) TestOverflow() {
	rule := NewSupplyCap(s.supply, math.MaxUint64-1)
	s.supply.total = math.MaxUint64 - 10

	// current+amount overflows uint64; the check must still fail.
	res := rule.Evaluate(s.ctx, opOfType(compliance.OpMint, 100))
	s.False(res.Passed)
}
