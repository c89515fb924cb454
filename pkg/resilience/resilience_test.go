package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var transitions []State
	cb := NewCircuitBreaker("sparql", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
		OnStateChange: func(_ string, _, to State) {
			transitions = append(transitions, to)
		},
	})
	now := time.Unix(1000, 0)
	cb.now = func() time.Time { return now }

	boom := errors.New("boom")
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("x", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second})
	now := time.Unix(0, 0)
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errors.New("down") })
	now = now.Add(2 * time.Second)
	_ = cb.Execute(func() error { return errors.New("still down") })
	assert.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	bad := errors.New("bad request")
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond}, func() error {
		calls++
		return Permanent(bad)
	})
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
}

func TestRetryExhausted(t *testing.T) {
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}, func() error {
		return errors.New("nope")
	})
	assert.ErrorContains(t, err, "all 2 attempts failed")
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "op", RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour}, func() error {
		return errors.New("nope")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
