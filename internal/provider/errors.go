// Package provider defines the failure taxonomy shared by every external data
// provider. Provider clients wrap their errors with one of the sentinels so the
// source chain can classify and log them uniformly.
package provider

import (
	"context"
	"errors"
)

// Provider errors.
var (
	// ErrUnavailable covers network failures, timeouts and non-200 responses.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrMalformed covers responses that could not be decoded or have an unexpected shape.
	ErrMalformed = errors.New("provider response malformed")
	// ErrCredentialMissing is returned without any network attempt when a
	// provider needs a credential and none was supplied.
	ErrCredentialMissing = errors.New("provider credential missing")
	// ErrEmptyResult is a structurally valid but empty success, e.g. zero
	// matched land-use elements.
	ErrEmptyResult = errors.New("provider returned no data")
)

// Failure classifies a failed provider attempt.
type Failure string

const (
	FailureNone              Failure = ""
	FailureUnavailable       Failure = "unavailable"
	FailureMalformed         Failure = "malformed"
	FailureCredentialMissing Failure = "credential_missing"
	FailureEmpty             Failure = "empty"
	FailureTimeout           Failure = "timeout"
	FailureCancelled         Failure = "cancelled"
)

// Classify maps an error returned by a provider onto the failure taxonomy.
// Unknown errors are treated as unavailability.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrCredentialMissing):
		return FailureCredentialMissing
	case errors.Is(err, ErrEmptyResult):
		return FailureEmpty
	case errors.Is(err, ErrMalformed):
		return FailureMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	default:
		return FailureUnavailable
	}
}
