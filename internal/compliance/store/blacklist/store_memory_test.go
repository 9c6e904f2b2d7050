package blacklist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"transferguard/internal/compliance/rules"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestGet() {
	s.Run("unknown address returns nil", func() {
		entry, err := s.store.Get(s.ctx, "0xnobody")
		s.Require().NoError(err)
		s.Nil(entry)
	})

	s.Run("returns stored entry", func() {
		want := rules.BlacklistEntry{
			Address:   "0xsanctioned",
			Reason:    "ofac sdn match",
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			CreatedBy: "admin@example.com",
		}
		s.Require().NoError(s.store.Add(s.ctx, want))

		entry, err := s.store.Get(s.ctx, "0xsanctioned")
		s.Require().NoError(err)
		s.Require().NotNil(entry)
		s.Equal(want, *entry)
	})
}

func (s *MemoryStoreSuite) TestAdd() {
	s.Run("re-adding an address overwrites the entry", func() {
		s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{Address: "0xupdated", Reason: "initial"}))
		s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{Address: "0xupdated", Reason: "revised"}))

		entry, err := s.store.Get(s.ctx, "0xupdated")
		s.Require().NoError(err)
		s.Require().NotNil(entry)
		s.Equal("revised", entry.Reason)

		entries, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Len(entries, 1)
	})
}

func (s *MemoryStoreSuite) TestRemove() {
	s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{Address: "0xgone", Reason: "pending review"}))
	s.Require().NoError(s.store.Remove(s.ctx, "0xgone"))

	entry, err := s.store.Get(s.ctx, "0xgone")
	s.Require().NoError(err)
	s.Nil(entry)

	s.Run("removing an unknown address is a no-op", func() {
		s.NoError(s.store.Remove(s.ctx, "0xnever"))
	})
}

func (s *MemoryStoreSuite) TestList() {
	s.Run("empty store lists nothing", func() {
		entries, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Empty(entries)
	})

	s.Run("lists every entry", func() {
		s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{Address: "0xone", Reason: "a"}))
		s.Require().NoError(s.store.Add(s.ctx, rules.BlacklistEntry{Address: "0xtwo", Reason: "b"}))

		entries, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Len(entries, 2)

		addrs := make(map[string]bool, len(entries))
		for _, entry := range entries {
			addrs[string(entry.Address)] = true
		}
		s.True(addrs["0xone"])
		s.True(addrs["0xtwo"])
	})
}
