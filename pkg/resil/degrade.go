// degrade.go provides the graceful-degradation combinators. They convert an
// operation's failure into a policy-chosen outcome instead of letting it
// abort the caller: every path through a combinator (except Fallback)
// returns an outcome value, never an error.

package resil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Check pairs a named check with its operation.
type Check[T any] struct {
	Name string
	Fn   func(context.Context) (T, error)
}

// Outcome is the result of running one operation through a degradation
// combinator.
type Outcome[T any] struct {
	Name string

	// Passed reports the check's disposition. On degraded outcomes it is
	// the configured PassOnError policy, not the operation's result.
	Passed bool

	// Degraded is true when the operation failed and policy decided the
	// outcome.
	Degraded bool

	// Message describes a degraded outcome; empty on plain success.
	Message string

	// Value is the operation's result; zero on degraded outcomes.
	Value T

	// Err is the categorized failure behind a degraded outcome.
	Err *CategorizedError
}

// DegradeOptions controls how a failure is converted into an outcome.
type DegradeOptions struct {
	// PassOnError makes a failed operation yield a passed outcome.
	PassOnError bool

	// IncludeErrorDetails appends the failure's text to the outcome message.
	IncludeErrorDetails bool

	// MessagePrefix starts the outcome message.
	MessagePrefix string

	// LogError logs the failure before degrading it.
	LogError bool

	// LogSeverity overrides the severity used for that log entry.
	LogSeverity Severity
}

// DefaultDegradeOptions logs failures at their own severity, includes error
// details, and fails the check (no pass-on-error).
func DefaultDegradeOptions() DegradeOptions {
	return DegradeOptions{
		IncludeErrorDetails: true,
		LogError:            true,
	}
}

// Degrade invokes op once. On success it returns the operation's result;
// on failure (or panic) it classifies, attaches the check name, optionally
// logs, and returns the outcome the options dictate. It never returns an
// error.
func Degrade[T any](ctx context.Context, log *Logger, name string, op func(context.Context) (T, error), opts DegradeOptions) Outcome[T] {
	v, err := safeCall(WithCheck(ctx, name), op)
	if err == nil {
		degradedOutcomesTotal.WithLabelValues(checkLabel(name), "passed").Inc()
		return Outcome[T]{Name: name, Passed: true, Value: v}
	}
	return degrade[T](log, name, err, opts)
}

// degrade converts a failure into an outcome per the options.
func degrade[T any](log *Logger, name string, err error, opts DegradeOptions) Outcome[T] {
	cerr := Categorize(err)
	if cerr.Context.CheckName == "" {
		cerr.Context.CheckName = name
	}

	if opts.LogError && log != nil {
		logged := cerr
		if opts.LogSeverity != "" && opts.LogSeverity != cerr.Context.Severity {
			clone := *cerr
			clone.Context.Severity = opts.LogSeverity
			logged = &clone
		}
		log.LogError(logged, nil)
	}

	var parts []string
	if opts.MessagePrefix != "" {
		parts = append(parts, opts.MessagePrefix)
	}
	if opts.IncludeErrorDetails {
		parts = append(parts, cerr.Error())
	}

	disposition := "failed"
	if opts.PassOnError {
		disposition = "passed-on-error"
	}
	degradedOutcomesTotal.WithLabelValues(checkLabel(name), disposition).Inc()

	return Outcome[T]{
		Name:     name,
		Passed:   opts.PassOnError,
		Degraded: true,
		Message:  strings.Join(parts, ": "),
		Err:      cerr,
	}
}

// DegradeBatch runs the checks strictly in input order, each wrapped like
// Degrade. One check's failure never prevents the next from running, and
// result[i] always corresponds to checks[i].
func DegradeBatch[T any](ctx context.Context, log *Logger, checks []Check[T], opts DegradeOptions) []Outcome[T] {
	results := make([]Outcome[T], len(checks))
	for i, c := range checks {
		results[i] = Degrade(ctx, log, c.Name, c.Fn, opts)
	}
	return results
}

// DegradeParallel runs all checks concurrently. Results are written to
// pre-allocated slots keyed by input index, so result[i] corresponds to
// checks[i] regardless of completion order.
func DegradeParallel[T any](ctx context.Context, log *Logger, checks []Check[T], opts DegradeOptions) []Outcome[T] {
	results := make([]Outcome[T], len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c Check[T]) {
			defer wg.Done()
			results[i] = Degrade(ctx, log, c.Name, c.Fn, opts)
		}(i, c)
	}
	wg.Wait()
	return results
}

// Fallback tries primary; on failure it logs and tries secondary. If the
// secondary also fails, its categorized failure propagates: this is the one
// combinator that can still fail, since there is no further policy to apply.
func Fallback[T any](ctx context.Context, log *Logger, name string, primary, secondary func(context.Context) (T, error)) (T, error) {
	ctx = WithCheck(ctx, name)

	v, err := safeCall(ctx, primary)
	if err == nil {
		return v, nil
	}

	cerr := Categorize(err)
	if cerr.Context.CheckName == "" {
		cerr.Context.CheckName = name
	}
	if log != nil {
		log.Warn(fmt.Sprintf("%s: primary failed, trying fallback: %s", name, cerr.Error()), nil)
	}

	v, err = safeCall(ctx, secondary)
	if err == nil {
		return v, nil
	}

	cerr = Categorize(err)
	if cerr.Context.CheckName == "" {
		cerr.Context.CheckName = name
	}
	if log != nil {
		log.LogError(cerr, map[string]any{"fallback": true})
	}
	var zero T
	return zero, cerr
}

// DegradeTimeout races op against the given deadline and applies the same
// policy as Degrade to whichever failure results. The operation receives a
// context cancelled when the timer wins, so a cooperative operation
// actually stops; one that ignores its context keeps running in the
// background with its result discarded.
func DegradeTimeout[T any](ctx context.Context, log *Logger, name string, d time.Duration, op func(context.Context) (T, error), opts DegradeOptions) Outcome[T] {
	tctx, cancel := context.WithTimeout(WithCheck(ctx, name), d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		v, err := safeCall(tctx, op)
		done <- result{v, err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			degradedOutcomesTotal.WithLabelValues(checkLabel(name), "passed").Inc()
			return Outcome[T]{Name: name, Passed: true, Value: res.v}
		}
		return degrade[T](log, name, res.err, opts)
	case <-tctx.Done():
		elapsed := time.Since(start)
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			terr := NewTimeoutError(
				fmt.Errorf("%s timed out after %s", name, d),
				WithCheckName(name),
				WithErrorMetadata("timeoutMs", d.Milliseconds()),
				WithErrorMetadata("elapsedMs", elapsed.Milliseconds()),
			)
			return degrade[T](log, name, terr, opts)
		}
		return degrade[T](log, name, tctx.Err(), opts)
	}
}

// Report is the aggregate result of PartialSuccess.
type Report[T any] struct {
	Outcomes []Outcome[T]

	// Success is the logical AND of all individual outcomes.
	Success bool
}

// PartialSuccess runs all checks, never short-circuiting on individual
// failure, and reports per-item outcomes plus an overall success flag.
func PartialSuccess[T any](ctx context.Context, log *Logger, checks []Check[T], opts DegradeOptions) Report[T] {
	outcomes := DegradeBatch(ctx, log, checks, opts)
	success := true
	for _, o := range outcomes {
		success = success && o.Passed
	}
	return Report[T]{Outcomes: outcomes, Success: success}
}
