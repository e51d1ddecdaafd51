package bresult

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidReturn is passed to the continuation when a handler returns (or a deferred value resolves to) a
// function that is not tagged as an asynchronous computation.
var ErrInvalidReturn = errors.New( //nolint:stylecheck,revive
	"Only Promises, async functions, and objects can be returned when using this plugin.")

// ErrNoServer is returned by [Install] when it is not given anything to install on.
var ErrNoServer = errors.New("bresult: can't help you if you don't give me a server")

// ErrUncomparableRegistrar is returned by [Install] for a registrar that cannot be told apart from others, use a
// pointer registrar instead.
var ErrUncomparableRegistrar = errors.New("bresult: registrar must be of a comparable type")

// Code is an error code that mirrors the http status codes. Errors carrying a code determine the status of the
// error response that the server renders for them.
type Code int

const (
	CodeUnknown              Code = 0
	CodeBadRequest           Code = http.StatusBadRequest
	CodeUnauthorized         Code = http.StatusUnauthorized
	CodeForbidden            Code = http.StatusForbidden
	CodeNotFound             Code = http.StatusNotFound
	CodeMethodNotAllowed     Code = http.StatusMethodNotAllowed
	CodeNotAcceptable        Code = http.StatusNotAcceptable
	CodeConflict             Code = http.StatusConflict
	CodeGone                 Code = http.StatusGone
	CodePreconditionFailed   Code = http.StatusPreconditionFailed
	CodeUnsupportedMediaType Code = http.StatusUnsupportedMediaType
	CodeTeapot               Code = http.StatusTeapot
	CodeUnprocessableEntity  Code = http.StatusUnprocessableEntity
	CodeTooManyRequests      Code = http.StatusTooManyRequests

	CodeInternalServerError Code = http.StatusInternalServerError
	CodeNotImplemented      Code = http.StatusNotImplemented
	CodeBadGateway          Code = http.StatusBadGateway
	CodeServiceUnavailable  Code = http.StatusServiceUnavailable
	CodeGatewayTimeout      Code = http.StatusGatewayTimeout
	CodeInsufficientStorage Code = http.StatusInsufficientStorage
)

// StatusCoder is implemented by errors and response bodies that carry their own HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code { return e.code }

// StatusCode implements [StatusCoder].
func (e *Error) StatusCode() int { return int(e.code) }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Code()
	}

	return CodeUnknown
}

// StatusCodeOf returns the HTTP status an error asks for: the status of the first error in the chain that
// implements [StatusCoder] with a non-zero code. It returns zero when no such error exists.
func StatusCodeOf(err error) int {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if sc, ok := e.(StatusCoder); ok && sc.StatusCode() != 0 {
			return sc.StatusCode()
		}
	}

	return 0
}

// errorBody is what the server responds with when a route fails.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// renderError replaces the buffered response with an error response for err and returns its status. Errors that
// carry their own status only expose the status, other errors become a 500 that names its cause.
func renderError(w *ResponseBuffer, err error) int {
	var body errorBody

	status := StatusCodeOf(err)
	if status == 0 {
		status = http.StatusInternalServerError
		body.Message = "caused by " + err.Error()
	}

	body.Code = strings.ReplaceAll(http.StatusText(status), " ", "")
	if body.Code == "" {
		body.Code = "Unknown"
	}

	if w.flushed {
		return status // part of the response is out, nothing to replace
	}

	w.Reset()
	w.limit = -1 // the limit only applies to what handlers write
	w.Status(status)
	if serr := w.Send(body); serr != nil {
		w.Reset()
		http.Error(w, http.StatusText(status), status)
	}

	return status
}
