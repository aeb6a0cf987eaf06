// errors.go defines the failure taxonomy: categories, severities, and the
// categorization of raw failures into context-bearing errors.

package resil

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies a failure's origin.
type Category string

const (
	// CategoryNetwork covers connection failures, DNS failures, and failed fetches.
	CategoryNetwork Category = "network"

	// CategoryBrowser covers page crashes and navigation failures.
	CategoryBrowser Category = "browser"

	// CategoryValidation covers failures produced by the checks themselves.
	CategoryValidation Category = "validation"

	// CategoryConfiguration covers bad or missing configuration.
	CategoryConfiguration Category = "configuration"

	// CategoryTimeout covers exceeded deadlines.
	CategoryTimeout Category = "timeout"

	// CategoryUnknown is the fallback when no rule matches.
	CategoryUnknown Category = "unknown"
)

// Severity indicates the impact of a failure, independent of its category.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ErrorContext carries everything known about a failure at classification
// time. Category and severity are assigned once and never change;
// RetryCount is the one field a retry wrapper may update afterwards.
type ErrorContext struct {
	// ID is a unique identifier for this failure (UUID).
	ID string

	// Timestamp is when the failure was classified.
	Timestamp time.Time

	Category Category
	Severity Severity

	// URL is the page being checked when the failure occurred, if known.
	URL string

	// CheckName identifies the check that produced the failure, if known.
	CheckName string

	// RetryCount is the number of attempts that preceded this failure.
	RetryCount int

	// Metadata holds additional key-value context.
	Metadata map[string]any

	// StackTrace is the stack captured at classification time.
	StackTrace string
}

// CategorizedError is a failure carrying an ErrorContext. It wraps the
// original failure, so errors.Is and errors.As still see it.
type CategorizedError struct {
	Context ErrorContext
	Err     error
}

func (e *CategorizedError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Context.Category) + " failure"
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// ErrorOption adjusts the context attached by a typed constructor.
type ErrorOption func(*ErrorContext)

// WithSeverity overrides the default severity.
func WithSeverity(s Severity) ErrorOption {
	return func(c *ErrorContext) { c.Severity = s }
}

// WithURL records the page URL the failure belongs to.
func WithURL(url string) ErrorOption {
	return func(c *ErrorContext) { c.URL = url }
}

// WithCheckName records the check that produced the failure.
func WithCheckName(name string) ErrorOption {
	return func(c *ErrorContext) { c.CheckName = name }
}

// WithErrorMetadata attaches a key-value pair to the failure's context.
func WithErrorMetadata(key string, value any) ErrorOption {
	return func(c *ErrorContext) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]any)
		}
		c.Metadata[key] = value
	}
}

func newCategorized(cat Category, err error, opts ...ErrorOption) *CategorizedError {
	ctx := ErrorContext{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Category:   cat,
		Severity:   SeverityError,
		StackTrace: string(debug.Stack()),
	}
	for _, opt := range opts {
		opt(&ctx)
	}
	return &CategorizedError{Context: ctx, Err: err}
}

// NewNetworkError builds an already-categorized network failure.
func NewNetworkError(err error, opts ...ErrorOption) *CategorizedError {
	return newCategorized(CategoryNetwork, err, opts...)
}

// NewBrowserError builds an already-categorized browser failure.
func NewBrowserError(err error, opts ...ErrorOption) *CategorizedError {
	return newCategorized(CategoryBrowser, err, opts...)
}

// NewValidationError builds an already-categorized validation failure.
func NewValidationError(err error, opts ...ErrorOption) *CategorizedError {
	return newCategorized(CategoryValidation, err, opts...)
}

// NewConfigurationError builds an already-categorized configuration failure.
func NewConfigurationError(err error, opts ...ErrorOption) *CategorizedError {
	return newCategorized(CategoryConfiguration, err, opts...)
}

// NewTimeoutError builds an already-categorized timeout failure.
func NewTimeoutError(err error, opts ...ErrorOption) *CategorizedError {
	return newCategorized(CategoryTimeout, err, opts...)
}

// Categorize classifies a raw failure by matching its text against a fixed
// rule order, first match wins. An already-categorized failure is returned
// unchanged, so re-classification is a no-op. String matching is the
// fallback path for failures from opaque collaborators; code under this
// module's control should construct typed failures at the point of origin.
func Categorize(err error, opts ...ErrorOption) *CategorizedError {
	if err == nil {
		return nil
	}
	var cerr *CategorizedError
	if errors.As(err, &cerr) {
		return cerr
	}
	return newCategorized(classify(err), err, opts...)
}

func classify(err error) Category {
	msg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "timed out"),
		strings.Contains(msg, "deadline exceeded"):
		return CategoryTimeout
	case strings.Contains(msg, "network"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "name not resolved"),
		strings.Contains(msg, "fetch failed"),
		strings.Contains(msg, "connection error"):
		return CategoryNetwork
	case strings.Contains(msg, "browser"),
		strings.Contains(msg, "page crash"),
		strings.Contains(msg, "navigation"):
		return CategoryBrowser
	case strings.Contains(msg, "configuration"):
		return CategoryConfiguration
	}
	return CategoryUnknown
}
