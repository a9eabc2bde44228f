package rancher

import (
	"errors"
	"fmt"
)

// ErrServiceNotFound is returned when a service lookup matches nothing.
var ErrServiceNotFound = errors.New("service not found")

// ErrStackNotFound is returned when a stack lookup matches nothing.
var ErrStackNotFound = errors.New("stack not found")

// TransportError reports a failed exchange with the API: the request could
// not be sent, the response status was unexpected, or the body did not parse.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PlatformError is a business-level rejection: the API answered the call
// with a document of type "error".
type PlatformError struct {
	Status  int
	Code    string
	Message string
	// Body is the raw response, kept for diagnostics.
	Body string
}

func (e *PlatformError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rancher error %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("rancher error %s (status %d)", e.Code, e.Status)
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsPlatformError reports whether err is or wraps a *PlatformError.
func IsPlatformError(err error) bool {
	var pe *PlatformError
	return errors.As(err, &pe)
}

// ErrorCode returns the platform error code carried by err, or "".
func ErrorCode(err error) string {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
