package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine-readable class of a failure.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindRetryable    ErrorKind = "retryable"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindRateLimited  ErrorKind = "rate_limited"
	KindInternal     ErrorKind = "internal"
)

// Error is a domain failure with a kind and a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind-only sentinels such as ErrValidation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrRetryable  = &Error{Kind: KindRetryable}
)

var (
	ErrItemNotFound     = NotFound("item not found")
	ErrBookingNotFound  = NotFound("booking not found")
	ErrCouponNotFound   = NotFound("coupon not found")
	ErrAlreadyCancelled = &Error{Kind: KindConflict, Message: "booking already cancelled"}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Retryable reports that the retry budget ran out on transient contention.
func Retryable(attempts int, err error) *Error {
	return &Error{
		Kind:    KindRetryable,
		Message: fmt.Sprintf("booking contention persisted after %d attempts, try again", attempts),
		Err:     err,
	}
}

// ConflictError is the permanent stock conflict returned when an item cannot
// cover the requested quantity for the window.
type ConflictError struct {
	FreeQuantity      int `json:"freeQuantity"`
	RequestedQuantity int `json:"requestedQuantity"`
	TotalStock        int `json:"totalStock"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, free %d of %d",
		e.RequestedQuantity, e.FreeQuantity, e.TotalStock)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// KindOf classifies any error. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return KindConflict
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
