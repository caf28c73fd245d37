package service

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the external repository has no record for the
// requested file. A normal outcome, mapped to 404 by the API layer.
var ErrNotFound = errors.New("no metadata found")

// MalformedResponseError indicates the enrichment service answered with a
// payload that could not be parsed even after salvage. Never retried:
// resending the same prompt will not fix a parsing defect.
type MalformedResponseError struct {
	Reason  string
	Content string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed enrichment response: %s", e.Reason)
}

// TransientError marks a rate-limited or temporarily unavailable enrichment
// service. Wrapped calls are retried with linear backoff.
type TransientError struct {
	StatusCode int
	Body       string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("enrichment service unavailable: status %d", e.StatusCode)
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
