package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the short-code lifecycle

// ErrInvalidURL is returned when the target URL is not an absolute http(s) URL
var ErrInvalidURL = errors.New("invalid URL format")

// ErrInvalidCode is returned when a caller-supplied code violates the charset or length rules
var ErrInvalidCode = errors.New("invalid short code format")

// ErrInvalidValidity is returned when an explicit validity is not strictly positive
var ErrInvalidValidity = errors.New("validity must be a positive number of seconds")

// ErrCodeConflict is returned when a caller-supplied code is already held by a live link
var ErrCodeConflict = errors.New("short code already in use")

// ErrDuplicateCode is returned by the link store when the unique index on code rejects an insert
var ErrDuplicateCode = errors.New("duplicate short code")

// ErrNotFound is returned when a code never existed or has been fully reclaimed
var ErrNotFound = errors.New("short code not found")

// ErrGone is returned when a code exists but is logically expired
var ErrGone = errors.New("short code has expired")

// ErrAllocationExhausted is returned when random generation keeps colliding
var ErrAllocationExhausted = errors.New("failed to allocate a unique short code")

// ErrUnauthenticated is returned when an operation needs an account and the caller has none
var ErrUnauthenticated = errors.New("authentication required")

// ErrClickRecordingFailed is returned when click recording fails
type ErrClickRecordingFailed struct {
	LinkID uint
	Reason string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for link %d: %s", e.LinkID, e.Reason)
}

// ErrSweepFailed is returned when a reclamation pass cannot complete
type ErrSweepFailed struct {
	Reason string
}

func (e ErrSweepFailed) Error() string {
	return fmt.Sprintf("expiry sweep failed: %s", e.Reason)
}

// ErrConfigLoad is returned when configuration loading fails
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}

// Machine-readable reason codes surfaced to API callers.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConflict            = "CODE_CONFLICT"
	CodeNotFound            = "NOT_FOUND"
	CodeGone                = "GONE"
	CodeAllocationExhausted = "ALLOCATION_EXHAUSTED"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeInternal            = "INTERNAL_ERROR"
)

// IsInvalidInput reports whether err belongs to the InvalidInput family.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrInvalidCode) ||
		errors.Is(err, ErrInvalidValidity)
}

// Code maps an error to its reason code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrCodeConflict), errors.Is(err, ErrDuplicateCode):
		return CodeConflict
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrGone):
		return CodeGone
	case errors.Is(err, ErrAllocationExhausted):
		return CodeAllocationExhausted
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	default:
		return CodeInternal
	}
}
