package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one recorded call outcome and what the breaker must report for it.
type step struct {
	success  bool
	fallback bool // RecordFailure's useFallback, or !usePrimary for RecordSuccess
	opened   bool
	closed   bool
	open     bool // IsOpen afterwards
}

func run(t *testing.T, b *Breaker, steps []step) {
	t.Helper()
	for i, st := range steps {
		var change StateChange
		if st.success {
			var usePrimary bool
			usePrimary, change = b.RecordSuccess()
			assert.Equal(t, st.fallback, !usePrimary, "step %d: primary", i)
		} else {
			var useFallback bool
			useFallback, change = b.RecordFailure()
			assert.Equal(t, st.fallback, useFallback, "step %d: fallback", i)
		}
		assert.Equal(t, st.opened, change.Opened, "step %d: opened", i)
		assert.Equal(t, st.closed, change.Closed, "step %d: closed", i)
		require.Equal(t, st.open, b.IsOpen(), "step %d: open", i)
	}
}

func TestNewBreakerIsClosed(t *testing.T) {
	b := New("taxpayer-registry")
	assert.Equal(t, "taxpayer-registry", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "opens on the threshold failure only",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{},
				{},
				{fallback: true, opened: true, open: true},
				{fallback: true, open: true},
			},
		},
		{
			name: "success clears the failure streak",
			opts: []Option{WithFailureThreshold(2)},
			steps: []step{
				{},
				{success: true},
				{},
				{fallback: true, opened: true, open: true},
			},
		},
		{
			name: "closes after consecutive successes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{fallback: true, opened: true, open: true},
				{success: true, fallback: true, open: true},
				{success: true, closed: true},
			},
		},
		{
			name: "failure while open restarts the success count",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{fallback: true, opened: true, open: true},
				{success: true, fallback: true, open: true},
				{fallback: true, open: true},
				{success: true, fallback: true, open: true},
				{success: true, closed: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, New("taxpayer-registry", tt.opts...), tt.steps)
		})
	}
}

func TestAllowProbesOncePerCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := New("taxpayer-registry",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow(), "open breaker rejects during cooldown")

	now = now.Add(11 * time.Second)
	assert.True(t, b.Allow(), "first call after cooldown is a probe")
	assert.False(t, b.Allow(), "only one probe per cooldown window")

	now = now.Add(11 * time.Second)
	assert.True(t, b.Allow())
}
