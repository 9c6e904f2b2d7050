//go:build integration

package blacklist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"transferguard/internal/compliance/rules"
	"transferguard/internal/compliance/store/blacklist"
	"transferguard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *blacklist.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), "../../../../db/migrations")
	s.store = blacklist.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "blacklist_entries"))
}

func (s *PostgresStoreSuite) TestAddAndGet() {
	now := time.Now().UTC().Truncate(time.Millisecond)
	want := rules.BlacklistEntry{
		Address:   "0xsanctioned",
		Reason:    "ofac sdn match",
		ExpiresAt: now.Add(30 * 24 * time.Hour),
		CreatedAt: now,
		CreatedBy: "compliance-officer",
	}
	s.Require().NoError(s.store.Add(s.ctx, want))

	got, err := s.store.Get(s.ctx, "0xsanctioned")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(want.Address, got.Address)
	s.Equal(want.Reason, got.Reason)
	s.Equal(want.CreatedBy, got.CreatedBy)
	s.WithinDuration(want.ExpiresAt, got.ExpiresAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestPermanentEntryRoundTripsZeroExpiry() {
	s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{
		Address:   "0xpermanent",
		Reason:    "court order",
		CreatedAt: time.Now().UTC(),
	}))

	got, err := s.store.Get(s.ctx, "0xpermanent")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.ExpiresAt.IsZero(), "NULL expires_at maps back to the zero time")
}

func (s *PostgresStoreSuite) TestAddUpserts() {
	s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{
		Address: "0xupdated", Reason: "initial", CreatedAt: time.Now().UTC(),
	}))
	s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{
		Address: "0xupdated", Reason: "revised", CreatedAt: time.Now().UTC(),
	}))

	got, err := s.store.Get(s.ctx, "0xupdated")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("revised", got.Reason)

	entries, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *PostgresStoreSuite) TestRemove() {
	s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{
		Address: "0xgone", Reason: "pending review", CreatedAt: time.Now().UTC(),
	}))
	s.Require().NoError(s.store.Remove(s.ctx, "0xgone"))

	got, err := s.store.Get(s.ctx, "0xgone")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *PostgresStoreSuite) TestListOrdersByCreation() {
	base := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{
		Address: "0xsecond", Reason: "b", CreatedAt: base.Add(time.Minute),
	}))
	s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{
		Address: "0xfirst", Reason: "a", CreatedAt: base,
	}))

	entries, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("0xfirst", string(entries[0].Address))
	s.Equal("0xsecond", string(entries[1].Address))
}
