// Package errtypes contains the kind-tagged error model shared by the whole
// server. Errors are distinguished by kind, not by Go runtime type name, so a
// dispatcher can map any error back to an HTTP status and a WebDAV XML body
// without a type switch per call site.
//
// It would have been nice to call this package errors, but that clashes with
// github.com/pkg/errors, and error is a reserved word.
package errtypes

import "net/http"

// Kind identifies the class of error independent of its message.
type Kind int

// Kinds the core raises, per the precondition/method-handler design.
const (
	KindBadRequest Kind = iota
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindConflict
	KindPreconditionFailed
	KindUnsupportedMediaType
	KindRequestedRangeNotSatisfiable
	KindLocked
	KindInvalidResourceType
	KindReportNotImplemented
	KindNotImplemented
	KindServerError
)

var statusByKind = map[Kind]int{
	KindBadRequest:                   http.StatusBadRequest,
	KindForbidden:                    http.StatusForbidden,
	KindNotFound:                     http.StatusNotFound,
	KindMethodNotAllowed:             http.StatusMethodNotAllowed,
	KindConflict:                     http.StatusConflict,
	KindPreconditionFailed:           http.StatusPreconditionFailed,
	KindUnsupportedMediaType:         http.StatusUnsupportedMediaType,
	KindRequestedRangeNotSatisfiable: http.StatusRequestedRangeNotSatisfiable,
	KindLocked:                       http.StatusLocked,
	KindInvalidResourceType:          http.StatusUnprocessableEntity,
	KindReportNotImplemented:         http.StatusNotImplemented,
	KindNotImplemented:               http.StatusNotImplemented,
	KindServerError:                  http.StatusInternalServerError,
}

// exceptionByKind is the Sabre-compatible exception token emitted in the
// <s:exception> element of the error body, matching what existing WebDAV
// clients already parse.
var exceptionByKind = map[Kind]string{
	KindBadRequest:                   "Sabre\\DAV\\Exception\\BadRequest",
	KindForbidden:                    "Sabre\\DAV\\Exception\\Forbidden",
	KindNotFound:                     "Sabre\\DAV\\Exception\\NotFound",
	KindMethodNotAllowed:             "Sabre\\DAV\\Exception\\MethodNotAllowed",
	KindConflict:                     "Sabre\\DAV\\Exception\\Conflict",
	KindPreconditionFailed:           "Sabre\\DAV\\Exception\\PreconditionFailed",
	KindUnsupportedMediaType:         "Sabre\\DAV\\Exception\\UnsupportedMediaType",
	KindRequestedRangeNotSatisfiable: "Sabre\\DAV\\Exception\\RequestedRangeNotSatisfiable",
	KindLocked:                       "Sabre\\DAV\\Exception\\Locked",
	KindInvalidResourceType:          "Sabre\\DAV\\Exception\\InvalidResourceType",
	KindReportNotImplemented:         "Sabre\\DAV\\Exception\\ReportNotSupported",
	KindNotImplemented:               "Sabre\\DAV\\Exception\\NotImplemented",
	KindServerError:                  "Sabre\\DAV\\Exception\\Error",
}

// Error is the error type every handler in this module raises. It carries
// enough information for the dispatcher to produce a compliant response
// without re-deriving it: code, message, and any header contributions.
type Error struct {
	kind    Kind
	message string
	// Headers are additional response headers the error wants written
	// alongside the status, e.g. Lock-Token or Retry-After.
	Headers map[string]string
	cause   error
}

func (e Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap allows errors.Is/errors.As and github.com/pkg/errors.Cause to reach
// the underlying cause.
func (e Error) Unwrap() error { return e.cause }

// Kind returns the error's kind tag.
func (e Error) Kind() Kind { return e.kind }

// StatusCode returns the HTTP status this error maps to.
func (e Error) StatusCode() int {
	if c, ok := statusByKind[e.kind]; ok {
		return c
	}
	return http.StatusInternalServerError
}

// SabreException returns the Sabre-compatible exception token for this
// error's kind, used in the <s:exception> body element.
func (e Error) SabreException() string {
	return exceptionByKind[e.kind]
}

// WithHeader attaches a response header contribution and returns the error,
// for fluent construction at the raise site (e.g. a Lock-Token on 423).
func (e Error) WithHeader(name, value string) Error {
	if e.Headers == nil {
		e.Headers = map[string]string{}
	}
	e.Headers[name] = value
	return e
}

// WithCause attaches an underlying cause for logging and Unwrap, without
// altering the message shown to the client.
func (e Error) WithCause(cause error) Error {
	e.cause = cause
	return e
}

func newError(kind Kind, message string) Error {
	return Error{kind: kind, message: message}
}

// Constructors, one per kind the core raises.
func BadRequest(message string) Error       { return newError(KindBadRequest, message) }
func Forbidden(message string) Error        { return newError(KindForbidden, message) }
func NotFound(message string) Error         { return newError(KindNotFound, message) }
func MethodNotAllowed(message string) Error { return newError(KindMethodNotAllowed, message) }
func Conflict(message string) Error         { return newError(KindConflict, message) }
func PreconditionFailed(message string) Error {
	return newError(KindPreconditionFailed, message)
}
func UnsupportedMediaType(message string) Error {
	return newError(KindUnsupportedMediaType, message)
}
func RequestedRangeNotSatisfiable(message string) Error {
	return newError(KindRequestedRangeNotSatisfiable, message)
}
func Locked(message string) Error              { return newError(KindLocked, message) }
func InvalidResourceType(message string) Error { return newError(KindInvalidResourceType, message) }
func ReportNotImplemented(message string) Error {
	return newError(KindReportNotImplemented, message)
}
func NotImplemented(message string) Error { return newError(KindNotImplemented, message) }
func ServerError(message string) Error    { return newError(KindServerError, message) }

// AsError unwraps err into an Error, wrapping unknown errors as a generic
// ServerError so the dispatcher always has a kind and status to work with.
func AsError(err error) Error {
	if err == nil {
		return Error{}
	}
	var e Error
	if ok := asErrtypesError(err, &e); ok {
		return e
	}
	return ServerError(err.Error()).WithCause(err)
}

func asErrtypesError(err error, target *Error) bool {
	for err != nil {
		if e, ok := err.(Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
