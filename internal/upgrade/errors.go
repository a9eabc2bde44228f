package upgrade

import (
	"errors"
	"fmt"
)

// Error kinds. Every error in an Outcome wraps exactly one of them.
var (
	// ErrTransport means the cluster API could not be reached or answered
	// with something unparseable.
	ErrTransport = errors.New("cluster API transport error")
	// ErrValidation means the service is not eligible for an upgrade.
	ErrValidation = errors.New("service not upgradeable")
	// ErrPlatformRejection means the API accepted the call but refused it.
	ErrPlatformRejection = errors.New("platform rejected request")
	// ErrUnexpectedState means polling saw a state other than upgrading or
	// upgraded, or gave up waiting.
	ErrUnexpectedState = errors.New("unexpected service state")
	// ErrIrrecoverable means finishing or rolling back failed.
	ErrIrrecoverable = errors.New("irrecoverable upgrade error")
)

// ValidationError describes why a service was rejected.
type ValidationError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unexpected service %s: expected '%s' but was '%s'", e.Field, e.Expected, e.Actual)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// kindError attaches an error kind to a cause without hiding the cause
// from errors.Is/As.
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

func wrapKind(kind error, cause error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}
