// Package serrors defines the error kinds services return so the HTTP layer
// and the job workers can react to them without knowing where they came from.
package serrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a sentinel naming a category of failure. Each kind knows the HTTP
// status it is served with and the text shown when an error has no message.
type Kind interface {
	error
	Status() int
	isKind()
}

type kind struct {
	name   string
	status int
	public string
}

func (k *kind) Error() string { return k.name }
func (k *kind) Status() int   { return k.status }
func (k *kind) isKind()       {}

// NewKind declares a kind. Kinds are compared by identity.
func NewKind(name string, status int, public string) Kind {
	return &kind{name: name, status: status, public: public}
}

var (
	ErrNotFound     = NewKind("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized = NewKind("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = NewKind("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrBadRequest   = NewKind("BAD_REQUEST", http.StatusBadRequest, "bad request")
	// ErrConflict covers status moves the submission cannot make and work
	// that is already done or queued.
	ErrConflict = NewKind("CONFLICT", http.StatusConflict, "conflict")
	ErrInternal = NewKind("INTERNAL", http.StatusInternalServerError, "internal error")
	ErrTimeout  = NewKind("TIMEOUT", http.StatusGatewayTimeout, "request timed out")
	// ErrUnavailable is returned when an optional integration (payments, mail,
	// grading, background jobs) is not configured or is failing upstream.
	ErrUnavailable = NewKind("UNAVAILABLE", http.StatusServiceUnavailable, "service unavailable")
	ErrRateLimited = NewKind("RATE_LIMITED", http.StatusTooManyRequests, "too many requests")
	// ErrPaymentRequired means the submission has no settled payment yet.
	ErrPaymentRequired = NewKind("PAYMENT_REQUIRED", http.StatusPaymentRequired, "payment required")
	ErrTooLarge        = NewKind("TOO_LARGE", http.StatusRequestEntityTooLarge, "payload too large")
)

// Error attaches a kind to an optional client-facing message and an
// optional cause. errors.Is and errors.As match both the kind and the cause.
//
// The text is "<msg>: <cause>", or whichever of the two is set, or the
// kind's name when neither is.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With returns an error of kind k whose message is shown to clients.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap is With plus a cause. The cause is logged but never shown to clients.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly returns a bare error of kind k.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}

	return e.kind != nil && errors.Is(e.kind, target) || e.err != nil && errors.Is(e.err, target)
}

func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}

	return e.kind != nil && errors.As(e.kind, target) || e.err != nil && errors.As(e.err, target)
}

// Kind returns the error's kind, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the client-facing message.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, or nil.
func (e *Error) Cause() error { return e.err }

// KindOf returns the first kind found in err's chain, or nil for errors
// that carry none.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}
