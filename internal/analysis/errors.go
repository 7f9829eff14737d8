package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when remote analysis is requested without an API key.
	ErrMissingCredential = errors.New("an API key is required for remote analysis")
	// ErrUnparseableResponse is returned when the vision service reply is not valid JSON.
	ErrUnparseableResponse = errors.New("could not parse the response from the vision service")
	// ErrNoRoutes is returned when the reply is not an array or holds no usable routes.
	ErrNoRoutes = errors.New("no routes detected, try a clearer photo of the wall")
)

// TransportError is a network or provider failure. Message is shown to the
// user verbatim.
type TransportError struct {
	Err      error
	Provider string
	Message  string
	Status   int
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Kind names the taxonomy bucket of an analysis error.
type Kind string

// Error kinds.
const (
	KindNone              Kind = ""
	KindMissingCredential Kind = "missing_credential"
	KindTransport         Kind = "transport"
	KindUnparseable       Kind = "unparseable_response"
	KindNoRoutes          Kind = "empty_or_invalid_result"
	KindUnknown           Kind = "unknown"
)

// KindOf classifies err.
func KindOf(err error) Kind {
	var transportErr *TransportError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrUnparseableResponse):
		return KindUnparseable
	case errors.Is(err, ErrNoRoutes):
		return KindNoRoutes
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}

func unparseable(cause error) error {
	return fmt.Errorf("%w: %v", ErrUnparseableResponse, cause)
}
