// Package errors provides a lightweight structured error type (NewsletterError)
// for category-based classification of pipeline failures and CLI exit codes.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a newsletter error for classification.
type ErrorCategory string

const (
	// CategoryConfig covers missing or invalid static configuration (ConfigurationError).
	CategoryConfig ErrorCategory = "config"

	// CategoryProvider covers any failed collaborator call (ProviderError).
	CategoryProvider ErrorCategory = "provider"

	// CategoryComposition covers template parsing and substitution failures (CompositionError).
	CategoryComposition ErrorCategory = "composition"

	// CategoryPipeline wraps a failure with the stage it aborted.
	CategoryPipeline ErrorCategory = "pipeline"

	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the run
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// NewsletterError is a structured error with category, retryability, and context.
type NewsletterError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for NewsletterError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *NewsletterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping.
func (e *NewsletterError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *NewsletterError) WithContext(key string, value any) *NewsletterError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new NewsletterError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *NewsletterError {
	return &NewsletterError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new NewsletterError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *NewsletterError {
	return &NewsletterError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable NewsletterError that wraps an existing error.
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *NewsletterError {
	e := Wrap(err, category, severity, message)
	e.Retryable = true
	return e
}

// As is a shorthand for errors.As against *NewsletterError.
func As(err error) (*NewsletterError, bool) {
	var ne *NewsletterError
	if stderrors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// innermost returns the deepest NewsletterError in the chain that is not a
// pipeline wrapper, falling back to the outermost one.
func innermost(err error) (*NewsletterError, bool) {
	outer, ok := As(err)
	if !ok {
		return nil, false
	}
	cur := outer
	for cur.Category == CategoryPipeline && cur.Cause != nil {
		next, ok := As(cur.Cause)
		if !ok {
			break
		}
		cur = next
	}
	return cur, true
}

// IsCategory reports whether any NewsletterError in the chain, including
// the branches of joined errors, belongs to category.
func IsCategory(err error, category ErrorCategory) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *NewsletterError:
		return e.Category == category || IsCategory(e.Cause, category)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if IsCategory(inner, category) {
				return true
			}
		}
		return false
	default:
		return IsCategory(stderrors.Unwrap(err), category)
	}
}

// IsRetryable reports whether the innermost classified error is retryable.
func IsRetryable(err error) bool {
	if ne, ok := innermost(err); ok {
		return ne.Retryable
	}
	return false
}

// GetCategory extracts the category of the innermost classified error,
// or returns CategoryInternal if the chain carries none.
func GetCategory(err error) ErrorCategory {
	if ne, ok := innermost(err); ok {
		return ne.Category
	}
	return CategoryInternal
}
