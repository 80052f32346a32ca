package models

import (
	"errors"
	"fmt"
)

// Fatal pipeline errors. Endpoint- and record-level failures never surface
// as these; they are contained in the IngestionReport.
var (
	ErrStoreUnavailable      = errors.New("time-series store unavailable")
	ErrPredictionUnavailable = errors.New("prediction service unavailable")
)

// FetchErrorKind classifies a failed endpoint fetch.
type FetchErrorKind string

const (
	FetchTimeout   FetchErrorKind = "TIMEOUT"
	FetchTransport FetchErrorKind = "TRANSPORT"
	FetchMalformed FetchErrorKind = "MALFORMED_RESPONSE"
)

// FetchError is a typed per-endpoint failure. Status is set for TRANSPORT.
type FetchError struct {
	Kind   FetchErrorKind `json:"kind"`
	Status int            `json:"status,omitempty"`
	Err    error          `json:"-"`
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTransport:
		return fmt.Sprintf("fetch: transport status %d", e.Status)
	case FetchTimeout:
		return "fetch: timeout"
	default:
		return "fetch: malformed response"
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewTimeoutError marks a fetch that ran out of its request budget.
func NewTimeoutError(err error) *FetchError {
	return &FetchError{Kind: FetchTimeout, Err: err}
}

// NewTransportError marks a non-2xx response.
func NewTransportError(status int) *FetchError {
	return &FetchError{Kind: FetchTransport, Status: status}
}

// NewMalformedError marks an unparseable payload.
func NewMalformedError(err error) *FetchError {
	return &FetchError{Kind: FetchMalformed, Err: err}
}
