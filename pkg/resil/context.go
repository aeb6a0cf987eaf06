// context.go propagates the current check name and page URL through
// context.Context, so nested wrappers can enrich failures without explicit
// plumbing at every level.

package resil

import "context"

// Context key types (unexported to avoid collisions)
type checkNameKey struct{}
type pageURLKey struct{}

// WithCheck returns a context with the check name attached. The degradation
// combinators attach the check name before invoking an operation, so a
// retrier running inside one can enrich failures with it.
func WithCheck(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, checkNameKey{}, name)
}

// CheckFromContext extracts the check name from context.
// Returns empty string and false if not set or empty.
func CheckFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(checkNameKey{}).(string)
	return name, ok && name != ""
}

// WithPageURL returns a context with the page URL under check attached.
func WithPageURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, pageURLKey{}, url)
}

// PageURLFromContext extracts the page URL from context.
// Returns empty string and false if not set or empty.
func PageURLFromContext(ctx context.Context) (string, bool) {
	url, ok := ctx.Value(pageURLKey{}).(string)
	return url, ok && url != ""
}
