// recover.go converts panics in wrapped operations into categorized
// failures, so a panicking check degrades like any other failure instead of
// taking the process down.

package resil

import (
	"context"
	"fmt"
	"os"
	"runtime"
)

// safeCall runs op, converting a panic into a CRITICAL categorized failure
// carrying the stack and basic process state.
func safeCall[T any](ctx context.Context, op func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return op(ctx)
}

// panicError builds the failure recorded for a recovered panic.
func panicError(recovered any) *CategorizedError {
	hostname, _ := os.Hostname()
	return newCategorized(CategoryUnknown, fmt.Errorf("panic: %s", formatRecovered(recovered)),
		WithSeverity(SeverityCritical),
		WithErrorMetadata("goroutines", runtime.NumGoroutine()),
		WithErrorMetadata("hostname", hostname),
	)
}

func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}

// Recovered captures a panic, logs it as a CRITICAL failure attributed to
// the named check, and returns the recovered value. It does not re-panic.
//
// Use in defer:
//
//	defer resil.Recovered(log, "heading-structure")
func Recovered(log *Logger, checkName string) any {
	r := recover()
	if r == nil {
		return nil
	}
	cerr := panicError(r)
	cerr.Context.CheckName = checkName
	if log != nil {
		log.LogError(cerr, nil)
	}
	return r
}
