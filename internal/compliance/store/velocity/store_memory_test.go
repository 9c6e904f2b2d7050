package velocity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"transferguard/pkg/domain"
)

const testWindow = 24 * time.Hour

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) TestGet() {
	s.Run("unknown address returns zero window", func() {
		window, err := s.store.Get(s.ctx, "0xnobody")
		s.Require().NoError(err)
		s.True(window.WindowStart.IsZero())
		s.Zero(window.Amount)
	})

	s.Run("returns recorded window", func() {
		s.Require().NoError(s.store.Record(s.ctx, "0xactor", 250, s.now, testWindow))

		window, err := s.store.Get(s.ctx, "0xactor")
		s.Require().NoError(err)
		s.Equal(s.now, window.WindowStart)
		s.Equal(uint64(250), window.Amount)
	})
}

func (s *MemoryStoreSuite) TestRecord() {
	s.Run("first record opens window at now", func() {
		s.Require().NoError(s.store.Record(s.ctx, "0xfirst", 100, s.now, testWindow))

		window, err := s.store.Get(s.ctx, "0xfirst")
		s.Require().NoError(err)
		s.Equal(s.now, window.WindowStart)
		s.Equal(uint64(100), window.Amount)
	})

	s.Run("records within the window accumulate", func() {
		s.Require().NoError(s.store.Record(s.ctx, "0xacc", 100, s.now, testWindow))
		s.Require().NoError(s.store.Record(s.ctx, "0xacc", 50, s.now.Add(time.Hour), testWindow))

		window, err := s.store.Get(s.ctx, "0xacc")
		s.Require().NoError(err)
		s.Equal(s.now, window.WindowStart, "window start is unchanged by later records")
		s.Equal(uint64(150), window.Amount)
	})

	s.Run("record after expiry resets the window", func() {
		s.Require().NoError(s.store.Record(s.ctx, "0xreset", 900, s.now, testWindow))

		later := s.now.Add(testWindow)
		s.Require().NoError(s.store.Record(s.ctx, "0xreset", 30, later, testWindow))

		window, err := s.store.Get(s.ctx, "0xreset")
		s.Require().NoError(err)
		s.Equal(later, window.WindowStart)
		s.Equal(uint64(30), window.Amount, "prior window amount is discarded")
	})

	s.Run("addresses are tracked independently", func() {
		s.Require().NoError(s.store.Record(s.ctx, "0xone", 10, s.now, testWindow))
		s.Require().NoError(s.store.Record(s.ctx, "0xtwo", 20, s.now, testWindow))

		one, err := s.store.Get(s.ctx, "0xone")
		s.Require().NoError(err)
		two, err := s.store.Get(s.ctx, "0xtwo")
		s.Require().NoError(err)
		s.Equal(uint64(10), one.Amount)
		s.Equal(uint64(20), two.Amount)
	})
}

func (s *MemoryStoreSuite) TestConcurrent() {
	const (
		workers = 100
		amount  = uint64(7)
	)
	addr := domain.Address("0xconcurrent")
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			s.Require().NoError(s.store.Record(s.ctx, addr, amount, s.now, testWindow))
		})
	}
	wg.Wait()

	window, err := s.store.Get(s.ctx, addr)
	s.Require().NoError(err)
	s.Equal(uint64(workers)*amount, window.Amount, "concurrent commits must not be lost")
}
