// retry.go runs an operation up to a bounded number of sequential attempts
// with exponential backoff, jitter, and a pluggable retry predicate.

package resil

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Retry defaults.
const (
	DefaultMaxAttempts       = 3
	DefaultInitialDelay      = 1 * time.Second
	DefaultMaxDelay          = 10 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// retryableStatusCodes are the HTTP status codes worth retrying when the
// failure text carries one and no category rule applies.
var retryableStatusCodes = []string{"408", "429", "500", "502", "503", "504"}

// RetryPredicate decides whether a failure on the given attempt should be
// retried. Attempt numbering starts at 1.
type RetryPredicate func(err *CategorizedError, attempt int) bool

// RetryHook runs before each backoff sleep.
type RetryHook func(err *CategorizedError, attempt int, delay time.Duration)

// RetryConfig holds the retry policy, fully populated once at construction.
type RetryConfig struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	Jitter            bool
	ShouldRetry       RetryPredicate
	OnRetry           RetryHook
}

// RetryOption configures a Retrier.
type RetryOption func(*RetryConfig)

// WithMaxAttempts sets the maximum number of attempts (minimum 1).
func WithMaxAttempts(n int) RetryOption {
	return func(c *RetryConfig) {
		if n >= 1 {
			c.MaxAttempts = n
		}
	}
}

// WithInitialDelay sets the first backoff delay.
func WithInitialDelay(d time.Duration) RetryOption {
	return func(c *RetryConfig) {
		if d > 0 {
			c.InitialDelay = d
		}
	}
}

// WithMaxDelay caps the computed backoff delay.
func WithMaxDelay(d time.Duration) RetryOption {
	return func(c *RetryConfig) {
		if d > 0 {
			c.MaxDelay = d
		}
	}
}

// WithBackoffMultiplier sets the exponential growth factor.
func WithBackoffMultiplier(m float64) RetryOption {
	return func(c *RetryConfig) {
		if m > 0 {
			c.BackoffMultiplier = m
		}
	}
}

// WithJitter enables or disables randomized delay perturbation.
func WithJitter(enabled bool) RetryOption {
	return func(c *RetryConfig) { c.Jitter = enabled }
}

// WithShouldRetry replaces the default retry predicate.
func WithShouldRetry(p RetryPredicate) RetryOption {
	return func(c *RetryConfig) {
		if p != nil {
			c.ShouldRetry = p
		}
	}
}

// WithOnRetry installs a hook invoked before each backoff sleep.
func WithOnRetry(h RetryHook) RetryOption {
	return func(c *RetryConfig) { c.OnRetry = h }
}

// DefaultShouldRetry always retries NETWORK and TIMEOUT failures, retries
// BROWSER failures only on the first attempt, and otherwise retries only
// when the failure text carries a retryable HTTP status code.
func DefaultShouldRetry(err *CategorizedError, attempt int) bool {
	switch err.Context.Category {
	case CategoryNetwork, CategoryTimeout:
		return true
	case CategoryBrowser:
		return attempt == 1
	}
	msg := err.Error()
	for _, code := range retryableStatusCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether a fresh failure would be retried by the
// default predicate.
func IsRetryable(err error) bool {
	cerr := Categorize(err)
	if cerr == nil {
		return false
	}
	return DefaultShouldRetry(cerr, 1)
}

// Retrier executes operations with bounded, strictly sequential attempts.
type Retrier struct {
	cfg RetryConfig
	log *Logger

	// sleep and jitterFn are injectable for tests.
	sleep    func(ctx context.Context, d time.Duration) error
	jitterFn func() float64
}

// NewRetrier creates a Retrier with defaults (3 attempts, 1s initial delay,
// 10s cap, multiplier 2, jitter on) adjusted by the given options.
func NewRetrier(log *Logger, opts ...RetryOption) *Retrier {
	cfg := RetryConfig{
		MaxAttempts:       DefaultMaxAttempts,
		InitialDelay:      DefaultInitialDelay,
		MaxDelay:          DefaultMaxDelay,
		BackoffMultiplier: DefaultBackoffMultiplier,
		Jitter:            true,
		ShouldRetry:       DefaultShouldRetry,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Retrier{
		cfg:      cfg,
		log:      log,
		sleep:    sleepCtx,
		jitterFn: rand.Float64,
	}
}

// Config returns the retrier's policy.
func (r *Retrier) Config() RetryConfig {
	return r.cfg
}

// Do runs op up to MaxAttempts times. Intermediate failures are invisible
// to the caller: it sees either a success or the final failure, logged once
// with the attempt count and total elapsed time. The backoff sleep honors
// ctx cancellation. If the context carries a check name or page URL (see
// WithCheck and WithPageURL), failures are enriched with them.
func (r *Retrier) Do(ctx context.Context, op func(context.Context) error) error {
	name, _ := CheckFromContext(ctx)
	url, _ := PageURLFromContext(ctx)
	return r.do(ctx, name, url, op)
}

// DoCheck runs op like Do, enriching every failure's context with the check
// name, page URL, and the number of attempts that preceded it.
func (r *Retrier) DoCheck(ctx context.Context, checkName, url string, op func(context.Context) error) error {
	return r.do(WithPageURL(WithCheck(ctx, checkName), url), checkName, url, op)
}

func (r *Retrier) do(ctx context.Context, checkName, url string, op func(context.Context) error) error {
	start := time.Now()

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		cerr := Categorize(err)
		cerr.Context.RetryCount = attempt - 1
		if checkName != "" && cerr.Context.CheckName == "" {
			cerr.Context.CheckName = checkName
		}
		if url != "" && cerr.Context.URL == "" {
			cerr.Context.URL = url
		}

		if attempt >= r.cfg.MaxAttempts || !r.cfg.ShouldRetry(cerr, attempt) {
			retryExhaustedTotal.WithLabelValues(checkLabel(checkName), string(cerr.Context.Category)).Inc()
			if r.log != nil {
				r.log.LogError(cerr, map[string]any{
					"attempts":  attempt,
					"elapsedMs": time.Since(start).Milliseconds(),
				})
			}
			return cerr
		}

		delay := r.backoff(attempt)
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(cerr, attempt, delay)
		}
		if r.log != nil {
			r.log.LogRetry(cerr, attempt, delay)
		}
		retryAttemptsTotal.WithLabelValues(checkLabel(checkName), string(cerr.Context.Category)).Inc()

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// backoff computes the delay before the attempt following the given one:
// min(initial * multiplier^(attempt-1), max), plus up to 25% jitter.
func (r *Retrier) backoff(attempt int) time.Duration {
	d := float64(r.cfg.InitialDelay) * math.Pow(r.cfg.BackoffMultiplier, float64(attempt-1))
	if d > float64(r.cfg.MaxDelay) {
		d = float64(r.cfg.MaxDelay)
	}
	if r.cfg.Jitter {
		d += r.jitterFn() * 0.25 * d
	}
	return time.Duration(d)
}

// RetryValue runs a value-returning operation through the retrier.
func RetryValue[T any](ctx context.Context, r *Retrier, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
