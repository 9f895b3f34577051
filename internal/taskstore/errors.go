package taskstore

import (
	"errors"
	"fmt"
)

// TransportError reports a failed call to the task store: either the request
// never completed or the server answered with a non-2xx status.
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %s", e.Op, e.Method, e.URL, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
