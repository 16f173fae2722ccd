// Package errors provides error handling for gwa.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints for recoverable conditions
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadPar(path); err != nil {
//	    return errors.Wrap(err, "failed to load par file")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "re-run the timing fit to produce a residual product")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNoResiduals) {
//	    // handle missing timing product
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapOnce   = crdb.UnwrapOnce
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Assertions and panics
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// GetStack returns the reportable stack trace attached to an error, if any.
var GetStack = crdb.GetReportableStackTrace

// Common sentinel errors for use across gwa.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates an input was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrNoResiduals indicates a pulsar has par/tim files but no residual
	// product from the timing engine; noise analysis cannot proceed
	ErrNoResiduals = New("no residual product")

	// ErrChainMissing indicates a run directory has no chain file
	ErrChainMissing = New("chain file missing")

	// ErrIncompatibleRun indicates a run directory was written by an
	// incompatible gwa version and cannot be resumed
	ErrIncompatibleRun = New("incompatible run version")

	// ErrNoSuchParameter indicates a parameter name was not found in a
	// model or chain column listing
	ErrNoSuchParameter = New("no such parameter")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
