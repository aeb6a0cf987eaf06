// Package resil is the resilience core for end-to-end page-quality checks.
// It wraps arbitrary fallible operations with retries, circuit breaking,
// structured logging, and graceful degradation. The core never inspects
// what an operation does, only how it fails and how that failure should be
// handled.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - CategorizedError: a failure carrying category, severity, and check context
//   - Retrier: bounded sequential attempts with exponential backoff and jitter
//   - CircuitBreaker: a three-state gate in front of a chronically failing dependency
//   - Logger: level-filtered history with pluggable sinks and failure summaries
//   - Degrade combinators: convert failures into policy-chosen outcomes
//
// # Quick Start
//
//	cfg := resil.DefaultConfig()
//	log := resil.New(cfg, sinks.ForConfig(cfg))
//	defer log.Close()
//
//	retrier := resil.NewRetrier(log, resil.WithMaxAttempts(3))
//	outcome := resil.Degrade(ctx, log, "meta-description",
//	    func(ctx context.Context) (CheckResult, error) {
//	        var res CheckResult
//	        err := retrier.Do(ctx, func(ctx context.Context) error {
//	            var err error
//	            res, err = inspectMetaDescription(ctx, page)
//	            return err
//	        })
//	        return res, err
//	    },
//	    resil.DefaultDegradeOptions(),
//	)
//
// # Design Principles
//
//   - Combinators never abort the caller: every failure becomes an outcome value
//   - Classification happens once, at the boundary, and is idempotent thereafter
//   - No global state: loggers and breakers are constructed and closed explicitly
//   - External dependencies only in sink packages; the core stays lean
package resil
