package core

import "errors"

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindValidation   ErrorKind = "validation"
	KindInternal     ErrorKind = "internal"
)

const (
	MsgUnauthorized = "Unauthorized"
	MsgInternal     = "An error occured"
)

// ErrorKind tags the failure returned across the service boundary.
type ErrorKind string

// ActionError is the failure half of a mutation result. Message is safe to
// show to the caller as-is.
type ActionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ErrNotFound is returned by reads when the row is missing or owned by
// someone else.
var ErrNotFound = errors.New("not found")

func Unauthorized() *ActionError {
	return &ActionError{Kind: KindUnauthorized, Message: MsgUnauthorized}
}

func Invalid(message string) *ActionError {
	return &ActionError{Kind: KindValidation, Message: message}
}

func Internal(err error) *ActionError {
	return &ActionError{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// KindOf returns the kind of an ActionError in err's chain, or KindInternal
// for any other non-nil error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return MsgInternal
}
