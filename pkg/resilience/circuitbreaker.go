// Package resilience provides fault-tolerance primitives for remote
// collaborators: a circuit breaker and exponential-backoff retry.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig controls failure thresholds and recovery timing.
// OnStateChange, when set, is called after the breaker lock is released.
type CircuitBreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	OnStateChange    func(name string, from, to State)
}

// CircuitBreaker opens after FailureThreshold consecutive failures and lets
// a single probe through once ResetTimeout has elapsed.
type CircuitBreaker struct {
	name   string
	cfg    CircuitBreakerConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		logger: slog.Default().With("component", "circuit-breaker", "name", name),
		now:    time.Now,
	}
}

// Execute runs fn if the circuit allows it and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.probing = false
	cb.mu.Unlock()
	cb.notify(from, StateClosed)
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	switch cb.state {
	case StateOpen:
		wait := cb.cfg.ResetTimeout - cb.now().Sub(cb.openedAt)
		if wait > 0 {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %s (retry after %v)", ErrCircuitOpen, cb.name, wait)
		}
		cb.state = StateHalfOpen
		cb.probing = true
		cb.mu.Unlock()
		cb.notify(StateOpen, StateHalfOpen)
		return nil
	case StateHalfOpen:
		if cb.probing {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %s (probe in flight)", ErrCircuitOpen, cb.name)
		}
		cb.probing = true
	}
	cb.mu.Unlock()
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	from := cb.state
	to := from
	if err == nil {
		cb.failures = 0
		to = StateClosed
	} else {
		cb.failures++
		if from == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			to = StateOpen
			cb.openedAt = cb.now()
		}
	}
	cb.state = to
	cb.probing = false
	failures := cb.failures
	cb.mu.Unlock()

	if from != to {
		cb.logger.Warn("circuit state changed", "from", from, "to", to, "consecutive_failures", failures)
		cb.notify(from, to)
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.cfg.OnStateChange != nil && from != to {
		cb.cfg.OnStateChange(cb.name, from, to)
	}
}
