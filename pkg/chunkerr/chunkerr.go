// Package chunkerr defines the sentinel error taxonomy shared by the
// chunker, router and orchestrator packages.
package chunkerr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers should compare against these with errors.Is;
// the helpers below wrap them with %w. Errors that come straight from a
// collaborator (a context, a segmenter, a store) are returned without a
// sentinel.
var (
	// ErrInvalidConfig is returned when budget arguments violate bounds or
	// ordering (overlap_tokens >= chunk_tokens, negative budgets, unknown
	// legacy keyword arguments at the API boundary).
	ErrInvalidConfig = errors.New("invalid config")

	// ErrSubmissionNotFound is returned when the orchestrator cannot
	// resolve a submission id.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrUnsupportedContentType is returned when the router has no handler
	// for a submission's content type.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrExtractionFailed is returned when an external parser fails.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrSinkFailed is returned when a ChunkSink operation fails.
	ErrSinkFailed = errors.New("sink failed")
)

// PreprocessingFailedError wraps the underlying cause of a failed
// preprocessing run. The orchestrator surfaces this after transitioning the
// submission to the failed status, per the propagation policy: every
// external error is caught exactly once to enforce that transition before
// re-raising.
type PreprocessingFailedError struct {
	Cause error
}

// NewPreprocessingFailed wraps cause as a PreprocessingFailedError.
func NewPreprocessingFailed(cause error) error {
	return &PreprocessingFailedError{Cause: cause}
}

func (e *PreprocessingFailedError) Error() string {
	return fmt.Sprintf("preprocessing failed: %v", e.Cause)
}

func (e *PreprocessingFailedError) Unwrap() error {
	return e.Cause
}

// InvalidConfig wraps ErrInvalidConfig with a descriptive reason.
func InvalidConfig(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidConfig)
}

// SubmissionNotFound wraps ErrSubmissionNotFound with the offending id.
func SubmissionNotFound(id string) error {
	return fmt.Errorf("submission %q: %w", id, ErrSubmissionNotFound)
}

// UnsupportedContentType wraps ErrUnsupportedContentType with the offending type.
func UnsupportedContentType(contentType string) error {
	return fmt.Errorf("content type %q: %w", contentType, ErrUnsupportedContentType)
}

// ExtractionFailed wraps ErrExtractionFailed with the underlying cause.
func ExtractionFailed(cause error) error {
	return fmt.Errorf("%w: %v", ErrExtractionFailed, cause)
}

// SinkFailed wraps ErrSinkFailed with the underlying cause.
func SinkFailed(cause error) error {
	return fmt.Errorf("%w: %v", ErrSinkFailed, cause)
}
