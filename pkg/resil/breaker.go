// breaker.go implements a three-state circuit breaker around a chronically
// failing operation. The breaker is unaware of failure categories; it
// reacts only to success and failure.

package resil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when a call is rejected without invoking the
// wrapped operation. Detect it with errors.Is.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState is the circuit breaker's FSM state.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Breaker defaults.
const (
	DefaultBreakerThreshold = 5
	DefaultBreakerTimeout   = 60 * time.Second
)

// BreakerConfig holds the breaker policy, fixed at construction.
type BreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the circuit.
	Threshold int

	// Timeout is the cooldown after which an open circuit lets one probe through.
	Timeout time.Duration
}

// BreakerOption configures a CircuitBreaker.
type BreakerOption func(*BreakerConfig)

// WithThreshold sets the consecutive-failure threshold.
func WithThreshold(n int) BreakerOption {
	return func(c *BreakerConfig) {
		if n >= 1 {
			c.Threshold = n
		}
	}
}

// WithBreakerTimeout sets the open-state cooldown.
func WithBreakerTimeout(d time.Duration) BreakerOption {
	return func(c *BreakerConfig) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// CircuitBreaker gates calls to one protected dependency. Create one per
// dependency; all state mutations happen under its lock.
type CircuitBreaker struct {
	name string
	cfg  BreakerConfig
	log  *Logger

	mu              sync.Mutex
	state           BreakerState
	failureCount    int
	lastFailureTime time.Time
	probing         bool

	// now is injectable for tests.
	now func() time.Time
}

// NewCircuitBreaker creates a breaker in the CLOSED state with defaults
// (threshold 5, timeout 60s) adjusted by the given options.
func NewCircuitBreaker(name string, log *Logger, opts ...BreakerOption) *CircuitBreaker {
	cfg := BreakerConfig{
		Threshold: DefaultBreakerThreshold,
		Timeout:   DefaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cb := &CircuitBreaker{
		name: name,
		cfg:  cfg,
		log:  log,
		now:  time.Now,
	}
	breakerStateGauge.WithLabelValues(name).Set(float64(StateClosed))
	return cb
}

// Execute runs op through the breaker. While OPEN and inside the cooldown
// the call fails immediately with ErrCircuitOpen and op is never invoked.
// At most one probe call is in flight while HALF_OPEN; concurrent callers
// are rejected with ErrCircuitOpen until the probe resolves.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	probe, err := cb.admit()
	if err != nil {
		breakerRejectedTotal.WithLabelValues(cb.name).Inc()
		return err
	}

	opErr := op(ctx)
	cb.settle(probe, opErr)
	return opErr
}

// Call runs a value-returning operation through the breaker.
func Call[T any](ctx context.Context, cb *CircuitBreaker, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := cb.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// admit decides whether a call may proceed and whether it is the half-open
// probe.
func (cb *CircuitBreaker) admit() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.cfg.Timeout {
			return false, fmt.Errorf("%s: %w", cb.name, ErrCircuitOpen)
		}
		cb.transition(StateHalfOpen)
		cb.probing = true
		return true, nil
	case StateHalfOpen:
		if cb.probing {
			return false, fmt.Errorf("%s: probe in flight: %w", cb.name, ErrCircuitOpen)
		}
		cb.probing = true
		return true, nil
	}
	return false, nil
}

// settle applies the call result to the FSM.
func (cb *CircuitBreaker) settle(probe bool, opErr error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.probing = false
	}

	if opErr == nil {
		cb.failureCount = 0
		if cb.state == StateHalfOpen {
			cb.transition(StateClosed)
			if cb.log != nil {
				cb.log.Info(fmt.Sprintf("circuit breaker %q closed after successful probe", cb.name), nil)
			}
		}
		return
	}

	cb.failureCount++
	cb.lastFailureTime = cb.now()

	switch {
	case cb.state == StateHalfOpen:
		cb.transition(StateOpen)
		if cb.log != nil {
			cb.log.Warn(fmt.Sprintf("circuit breaker %q reopened: probe failed", cb.name), nil)
		}
	case cb.state == StateClosed && cb.failureCount >= cb.cfg.Threshold:
		cb.transition(StateOpen)
		if cb.log != nil {
			cb.log.Warn(fmt.Sprintf("circuit breaker %q opened after %d consecutive failures", cb.name, cb.failureCount), nil)
		}
	}
}

// transition must be called with the lock held.
func (cb *CircuitBreaker) transition(to BreakerState) {
	cb.state = to
	breakerStateGauge.WithLabelValues(cb.name).Set(float64(to))
}

// State returns the current FSM state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureCount returns the current consecutive-failure count.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}

// Reset forces the breaker back to CLOSED with the failure count and last
// failure time cleared. Intended for operators and test harnesses.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
	cb.failureCount = 0
	cb.lastFailureTime = time.Time{}
	cb.probing = false
}
