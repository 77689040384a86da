package analytics

import (
	"errors"
	"fmt"
)

// ErrorCode distinguishes "nothing to analyze" from a genuine fault so the
// boundary layer can render them differently.
type ErrorCode string

const (
	// ErrNoData means the input collection was empty or too small for the
	// requested computation. Not a server fault.
	ErrNoData ErrorCode = "NO_DATA"
	// ErrInsufficientTrainingData is forecaster-specific: the training
	// preconditions failed. It triggers the historical-average fallback and
	// is never surfaced as a request error.
	ErrInsufficientTrainingData ErrorCode = "INSUFFICIENT_TRAINING_DATA"
	// ErrComputationFailure is an unexpected internal fault.
	ErrComputationFailure ErrorCode = "COMPUTATION_FAILURE"
)

// Error is a structured engine error carrying a taxonomy code.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an engine error with the given code.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError attaches a cause to an engine error.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the taxonomy code from err, defaulting to
// COMPUTATION_FAILURE for errors that did not originate in the engine.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrComputationFailure
}

// IsNoData reports whether err means "no data to analyze".
func IsNoData(err error) bool {
	return CodeOf(err) == ErrNoData
}
