package bucket

import (
	"context"
	"sync"
	"time"

	"fiscalid/internal/ratelimit/models"
)

// MemoryStore is a process-local sliding window store. It is the default when
// Redis is not configured and the fallback when Redis errors.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*window
	now     func() time.Time
	calls   int
}

type window struct {
	stamps []time.Time
	length time.Duration
}

// sweepEvery is how many Allow calls pass between scans for idle keys.
const sweepEvery = 1024

type MemoryOption func(*MemoryStore)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request against key if the window has room.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, length time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(now)
	}

	w := s.buckets[key]
	if w == nil {
		w = &window{}
	}
	w.length = length
	w.stamps = prune(w.stamps, now.Add(-length))

	allowed := len(w.stamps) < limit
	if allowed {
		w.stamps = append(w.stamps, now)
	}
	stamps := w.stamps
	if len(stamps) == 0 {
		delete(s.buckets, key)
	} else {
		s.buckets[key] = w
	}

	resetAt := now.Add(length)
	if len(stamps) > 0 {
		resetAt = stamps[0].Add(length)
	}
	res := &models.Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(limit-len(stamps), 0),
		ResetAt:   resetAt,
	}
	if !allowed {
		res.RetryAfter = models.RetryAfterSeconds(now, resetAt)
	}
	return res, nil
}

// Len reports how many keys hold live timestamps.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// sweep drops keys whose every timestamp has left its window.
func (s *MemoryStore) sweep(now time.Time) {
	for key, w := range s.buckets {
		w.stamps = prune(w.stamps, now.Add(-w.length))
		if len(w.stamps) == 0 {
			delete(s.buckets, key)
		}
	}
}

// prune drops timestamps at or before cutoff. Timestamps are appended in order.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}
