package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 5
	testWindow = time.Minute
)

type MemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) fill(key string) {
	for range testLimit {
		res, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
		s.Require().True(res.Allowed)
	}
}

func (s *MemoryStoreSuite) TestFirstRequestAllowed() {
	res, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(testLimit, res.Limit)
	s.Equal(testLimit-1, res.Remaining)
	s.Equal(s.now.Add(testWindow), res.ResetAt)
	s.Zero(res.RetryAfter)
}

func (s *MemoryStoreSuite) TestOverLimitDenied() {
	s.fill("k")

	s.now = s.now.Add(20 * time.Second)
	res, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(testLimit, res.Limit)
	s.Equal(0, res.Remaining)
	s.Equal(40, res.RetryAfter, "oldest request leaves the window in 40s")
}

func (s *MemoryStoreSuite) TestWindowSlides() {
	s.fill("k")

	s.now = s.now.Add(testWindow)
	res, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed, "requests exactly one window old have expired")
	s.Equal(testLimit-1, res.Remaining)
}

func (s *MemoryStoreSuite) TestKeysAreIndependent() {
	s.fill("a")

	res, err := s.store.Allow(s.ctx, "b", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(2, s.store.Len())
}

func (s *MemoryStoreSuite) TestConcurrentCallersNeverExceedLimit() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(s.ctx, "shared", testLimit, testWindow)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}

func (s *MemoryStoreSuite) TestIdleKeysAreSwept() {
	s.fill("idle")
	s.now = s.now.Add(2 * testWindow)

	for range sweepEvery {
		_, err := s.store.Allow(s.ctx, "busy", sweepEvery*2, testWindow)
		s.Require().NoError(err)
	}
	s.Equal(1, s.store.Len())
}
