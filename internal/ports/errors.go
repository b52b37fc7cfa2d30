package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors surfaced by external oracle adapters.
var (
	// ErrRateLimited indicates the external service throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates the external service is unreachable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidResponse indicates the service returned a payload the
	// adapter could not interpret.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrUnknownAttack indicates a registry lookup for an unregistered
	// attack identifier.
	ErrUnknownAttack = errors.New("unknown attack")
)

// OracleError wraps a failure from an external model or dictionary
// service with enough context to log at the smallest enclosing operation.
// Attacks that can degrade (back-translation, synonym replacement,
// lexicon loading) catch these locally and fall back to "no change".
type OracleError struct {
	// Oracle names the service: "tagger", "fill-mask", "translator",
	// "qa-model", "lexicon".
	Oracle string

	// Operation is the call that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %s: %v", e.Oracle, e.Operation, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }
