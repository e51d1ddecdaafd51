package bresult

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
)

// handledErrorTag is passed to [ErrorLogger.Error] for every error the adapter routes to the continuation.
const handledErrorTag = "HANDLED ERROR: "

// statusCodeKey is the map key that lets a returned map choose the response status.
const statusCodeKey = "statusCode"

// ErrorLogger records errors before they are passed on.
type ErrorLogger interface {
	Error(tag string, err error)
}

// ErrorTransformer replaces errors before they are passed on.
type ErrorTransformer interface {
	Transform(err error) error
}

// ErrorTransformerFunc allow casting a function to implement [ErrorTransformer].
type ErrorTransformerFunc func(err error) error

// Transform implements the [ErrorTransformer] interface.
func (f ErrorTransformerFunc) Transform(err error) error { return f(err) }

// Options configure how adapted handlers treat errors. The zero value logs nothing and passes errors on unchanged.
type Options struct {
	Logger           ErrorLogger
	ErrorTransformer ErrorTransformer
}

// Adapt turns a value-returning handler into a [NextHandler]. The adapted handler calls next exactly once, however
// often the handler itself calls it:
//
//   - a returned value is sent with status 200 (or the status it carries) unless the response was already
//     finalized, then next(nil) is called;
//   - a returned [Deferred] or [AsyncFunc] is awaited and its value is sent the same way;
//   - a returned or panicked error, a rejection, or an invalid return value is passed to next, after logging and
//     transforming it according to opts;
//   - a nil or falsy return (false, 0, "") leaves completion to the handler.
func Adapt(h Handler, opts Options) NextHandler {
	return NextHandlerFunc(func(ctx context.Context, w ResponseWriter, r *http.Request, next Next) {
		inv := &invocation{opts: opts, w: w, next: guard(next)}
		inv.run(ctx, h, r)
	})
}

// guard returns a continuation that forwards only its first call.
func guard(next Next) Next {
	var fired atomic.Bool

	return func(err error) {
		if !fired.CompareAndSwap(false, true) {
			return
		}

		next(err)
	}
}

// invocation holds the state of one adapted handler call.
type invocation struct {
	opts Options
	w    ResponseWriter
	next Next
}

func (inv *invocation) run(ctx context.Context, h Handler, r *http.Request) {
	v, err := inv.call(ctx, h, r)
	if err != nil {
		inv.fail(err)
		return
	}

	switch c := classify(ctx, v); c.kind {
	case completionPending:
		inv.await(c.deferred)
	case completionValue:
		inv.sendAndContinue(c.body)
	case completionInvalid:
		inv.fail(ErrInvalidReturn)
	case completionNone:
	}
}

func (inv *invocation) call(ctx context.Context, h Handler, r *http.Request) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler { //nolint:errorlint,err113
				panic(p)
			}

			v, err = nil, panicError(p)
		}
	}()

	return h.ServeResult(ctx, inv.w, r, inv.next)
}

// await blocks until d settles. The route is completed on the calling goroutine, never inside the callbacks. A value
// that is itself a plain function is rejected just like a returned one.
func (inv *invocation) await(d Deferred) {
	type outcome struct {
		value any
		err   error
	}

	done := make(chan outcome, 1)
	var once sync.Once
	settle := func(o outcome) { once.Do(func() { done <- o }) }

	d.Then(func(v any) {
		settle(outcome{value: v})
	}, func(err error) {
		settle(outcome{err: err})
	})

	switch o := <-done; {
	case o.err != nil:
		inv.fail(o.err)
	case isPlainFunc(o.value):
		inv.fail(ErrInvalidReturn)
	default:
		inv.sendAndContinue(o.value)
	}
}

func (inv *invocation) sendAndContinue(body any) {
	if !inv.w.Finished() && !inv.w.HeadersSent() {
		code, body := extractStatusCode(body)
		inv.w.Status(code)
		if err := inv.w.Send(body); err != nil {
			inv.fail(err)
			return
		}
	}

	inv.next(nil)
}

func (inv *invocation) fail(err error) {
	if inv.opts.Logger != nil {
		inv.opts.Logger.Error(handledErrorTag, err)
	}

	if inv.opts.ErrorTransformer != nil {
		err = inv.opts.ErrorTransformer.Transform(err)
	}

	inv.next(err)
}

type completionKind int

const (
	completionNone completionKind = iota
	completionPending
	completionValue
	completionInvalid
)

// completion is what a handler's return value asks the adapter to do.
type completion struct {
	kind     completionKind
	deferred Deferred
	body     any
}

func classify(ctx context.Context, v any) completion {
	switch x := v.(type) {
	case Deferred:
		if isNil(v) {
			return completion{kind: completionNone}
		}

		return completion{kind: completionPending, deferred: x}
	case AsyncFunc:
		if x == nil {
			return completion{kind: completionNone}
		}

		return completion{kind: completionPending, deferred: Go(ctx, x)}
	}

	switch {
	case isFalsy(v):
		return completion{kind: completionNone}
	case isPlainFunc(v):
		return completion{kind: completionInvalid}
	default:
		return completion{kind: completionValue, body: v}
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	switch rv := reflect.ValueOf(v); rv.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface,
		reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// isFalsy reports whether v is nil or the zero value of a scalar kind. Zero structs, arrays and empty non-nil
// collections are values like any other.
func isFalsy(v any) bool {
	if isNil(v) {
		return true
	}

	switch rv := reflect.ValueOf(v); rv.Kind() { //nolint:exhaustive
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return rv.IsZero()
	default:
		return false
	}
}

func isPlainFunc(v any) bool {
	if _, ok := v.(AsyncFunc); ok {
		return false
	}

	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// WithStatus wraps body so that it is sent with the given status. The wrapper is removed before the body is
// serialized.
func WithStatus(code int, body any) any {
	return statusBody{code: code, body: body}
}

type statusBody struct {
	code int
	body any
}

func (b statusBody) StatusCode() int { return b.code }

func (b statusBody) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.body) //nolint:wrapcheck
}

// extractStatusCode determines the status a body is sent with, 200 unless the body carries a status in the range
// 100-999. A valid "statusCode" key is deleted from map bodies so it never reaches the client, anything else under
// that key stays in the body.
func extractStatusCode(body any) (int, any) {
	switch b := body.(type) {
	case statusBody:
		if validStatus(b.code) {
			return b.code, b.body
		}

		return http.StatusOK, b.body
	case map[string]any:
		if code, ok := toStatus(b[statusCodeKey]); ok {
			delete(b, statusCodeKey)
			return code, b
		}
	case StatusCoder:
		if isNil(body) {
			break
		}

		if code := b.StatusCode(); validStatus(code) {
			return code, body
		}
	}

	return http.StatusOK, body
}

func toStatus(v any) (int, bool) {
	var code int
	switch n := v.(type) {
	case int:
		code = n
	case int32:
		code = int(n)
	case int64:
		code = int(n)
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}

		code = int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}

		code = int(i)
	default:
		return 0, false
	}

	return code, validStatus(code)
}

// validStatus reports whether code is a status net/http accepts for a response.
func validStatus(code int) bool {
	return code >= 100 && code <= 999
}
