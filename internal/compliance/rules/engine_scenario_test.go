package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"transferguard/internal/compliance"
	"transferguard/internal/identity"
	"transferguard/internal/identity/mocks"
)

// Full engine pass over the built-in rules: the blacklist clears the actor,
// the KYC check blocks, and evaluation stops there under short-circuit.
func TestEngineWithBuiltinRules(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	resolver := mocks.NewMockResolver(ctrl)

	blacklistStore := newStubBlacklistStore()
	windowStore := newStubWindowStore()

	set := compliance.NewRuleSet()
	require.NoError(t, set.AddRule(NewBlacklist(blacklistStore), 10, true))
	require.NoError(t, set.AddRule(NewKYCTier(resolver, identity.TierIntermediate), 20, false))
	require.NoError(t, set.AddRule(NewVelocity(windowStore, 100, 24*time.Hour), 30, false))

	engine, err := compliance.NewEngine(set)
	require.NoError(t, err)

	resolver.EXPECT().
		HasMinimumTier(gomock.Any(), actorAddr, identity.TierIntermediate).
		Return(false, nil)

	result := engine.Evaluate(timeCtx(testNow), transferOp(actorAddr, otherAddr, 50))

	assert.False(t, result.Passed)
	assert.Equal(t, RuleIDKYCTier, result.FailedRule)
	assert.Equal(t, 2, result.EvaluatedRules)
	assert.Zero(t, windowStore.records)
}
