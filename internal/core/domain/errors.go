package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession        = errors.New("no session stored")
	ErrMalformedSession = errors.New("stored session is malformed")
	ErrMissingSelection = errors.New("an option must be selected")
	ErrMissingVoterFile = errors.New("a voter CSV file must be selected")
	ErrMissingVoters    = errors.New("a voter list must be provided")
	ErrStaleResponse    = errors.New("response arrived for a stale view")
)

// RequestError is any failed backend call, normalized by the gateway.
// Message holds the server-supplied error when the response carried one;
// transport failures leave it empty and keep the underlying error in Err.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// MessageOr applies the extraction policy: prefer the server message,
// fall back to the caller's action-specific text.
func (e *RequestError) MessageOr(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// Feedback converts a failed call into the message a controller renders:
// the server message when the error is a RequestError carrying one,
// otherwise the action-specific fallback.
func Feedback(err error, fallback string) Message {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return Failure(reqErr.MessageOr(fallback))
	}
	return Failure(fallback)
}
