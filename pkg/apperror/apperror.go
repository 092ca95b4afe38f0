// Package apperror defines the error kinds shared by services and transports.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindValidation         Kind = "VALIDATION_FAILURE"
	KindUpstream           Kind = "UPSTREAM_DEPENDENCY_FAILURE"
	KindDataInconsistency  Kind = "DATA_INCONSISTENCY"
	KindTransientWrite     Kind = "TRANSIENT_WRITE_FAILURE"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindInternal           Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NotFound(msg string) *Error {
	return New(KindNotFound, msg)
}

func Validation(msg string) *Error {
	return New(KindValidation, msg)
}

func Upstream(msg string, err error) *Error {
	return Wrap(KindUpstream, msg, err)
}

func DataInconsistency(msg string) *Error {
	return New(KindDataInconsistency, msg)
}

func TransientWrite(msg string, err error) *Error {
	return Wrap(KindTransientWrite, msg, err)
}

func ServiceUnavailable(msg string, err error) *Error {
	return Wrap(KindServiceUnavailable, msg, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the Message of the first *Error in err's chain, without
// its cause. Errors without a kind yield "".
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

// WrapUnkinded wraps err with kind and msg unless err already carries a
// kind, in which case it is returned unchanged.
func WrapUnkinded(kind Kind, msg string, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(kind, msg, err)
}
