package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"transferguard/internal/identity"
	"transferguard/internal/identity/mocks"
	"transferguard/pkg/domain"
)

func attested(code string) identity.AttestationStatus {
	return identity.AttestationStatus{Tier: identity.TierBasic, IsValid: true, Jurisdiction: code}
}

type JurisdictionRuleSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	resolver *mocks.MockResolver
	ctx      context.Context
}

func TestJurisdictionRuleSuite(t *testing.T) {
	suite.Run(t, new(JurisdictionRuleSuite))
}

func (s *JurisdictionRuleSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mocks.NewMockResolver(s.ctrl)
	s.ctx = context.Background()
}

func (s *JurisdictionRuleSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *JurisdictionRuleSuite) TestAllowlist() {
	rule := NewJurisdiction(s.resolver, ModeAllowlist, []string{"US", "GB"})

	s.Run("listed parties pass", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).Return(attested("US"), nil)
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), otherAddr).Return(attested("GB"), nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.True(res.Passed)
	})

	s.Run("unlisted actor fails", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).Return(attested("KP"), nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.False(res.Passed)
		s.Contains(res.Reason, "actor jurisdiction KP is not permitted")
	})

	s.Run("unlisted counterparty fails", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).Return(attested("US"), nil)
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), otherAddr).Return(attested("RU"), nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.False(res.Passed)
		s.Contains(res.Reason, "counterparty jurisdiction RU is not permitted")
	})
}

func (s *JurisdictionRuleSuite) TestDenylist() {
	rule := NewJurisdiction(s.resolver, ModeDenylist, []string{"KP", "IR"})

	s.Run("unlisted parties pass", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).Return(attested("US"), nil)
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), otherAddr).Return(attested("DE"), nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.True(res.Passed)
	})

	s.Run("listed actor fails", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).Return(attested("KP"), nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.False(res.Passed)
		s.Contains(res.Reason, "actor jurisdiction KP is restricted")
	})
}

func (s *JurisdictionRuleSuite) TestFailClosed() {
	rule := NewJurisdiction(s.resolver, ModeDenylist, []string{"KP"})

	s.Run("missing attestation fails in denylist mode", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).
			Return(identity.AttestationStatus{Tier: identity.TierNone}, nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.False(res.Passed)
		s.Contains(res.Reason, "actor has no valid jurisdiction attestation")
	})

	s.Run("valid attestation without jurisdiction fails", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).
			Return(identity.AttestationStatus{Tier: identity.TierBasic, IsValid: true}, nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.False(res.Passed)
	})

	s.Run("resolver error fails closed", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).
			Return(identity.AttestationStatus{}, errors.New("registry down"))

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, otherAddr, 100))
		s.False(res.Passed)
		s.Equal("identity resolver unavailable", res.Reason)
	})

	s.Run("zero counterparty skipped", func() {
		s.resolver.EXPECT().ResolveIdentity(gomock.Any(), actorAddr).Return(attested("US"), nil)

		res := rule.Evaluate(s.ctx, transferOp(actorAddr, domain.ZeroAddress, 100))
		s.True(res.Passed)
	})
}
