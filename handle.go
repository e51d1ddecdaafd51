package bresult

import (
	"context"
	"net/http"
)

// ResponseWriter implements the http.ResponseWriter but the underlying bytes are buffered. On top of that it offers
// the send-style methods that value-returning handlers are adapted to, and it reports whether a response has been
// finalized.
type ResponseWriter interface {
	http.ResponseWriter
	Status(code int)
	Send(body any) error
	StatusCode() int
	HeadersSent() bool
	Finished() bool
	Reset()
	Free()
	FlushBuffer() error
}

// Next is the continuation handed to every handler of a route. Calling it with a nil error lets the route proceed
// to the next handler, calling it with an error stops the route and has the server render an error response.
type Next func(err error)

// NextHandler is the handler signature the [Server] natively understands.
type NextHandler interface {
	ServeNext(ctx context.Context, w ResponseWriter, r *http.Request, next Next)
}

// NextHandlerFunc allow casting a function to implement [NextHandler].
type NextHandlerFunc func(ctx context.Context, w ResponseWriter, r *http.Request, next Next)

// ServeNext implements the [NextHandler] interface.
func (f NextHandlerFunc) ServeNext(ctx context.Context, w ResponseWriter, r *http.Request, next Next) {
	f(ctx, w, r, next)
}

// Handler describes route logic that completes by returning. The returned value is sent as the response body, a
// returned [Deferred] or [AsyncFunc] is awaited, and a returned error is passed on to the continuation. Handlers
// can still write the response and call next themselves. Use [Adapt] to turn it into a [NextHandler].
type Handler interface {
	ServeResult(ctx context.Context, w ResponseWriter, r *http.Request, next Next) (any, error)
}

// HandlerFunc allow casting a function to implement [Handler].
type HandlerFunc func(ctx context.Context, w ResponseWriter, r *http.Request, next Next) (any, error)

// ServeResult implements the [Handler] interface.
func (f HandlerFunc) ServeResult(ctx context.Context, w ResponseWriter, r *http.Request, next Next) (any, error) {
	return f(ctx, w, r, next)
}

// BareHandler describes how middleware serves HTTP requests: the error it returns is whatever the route passed to
// its continuation.
type BareHandler interface {
	ServeBare(w ResponseWriter, r *http.Request) error
}

// BareHandlerFunc allow casting a function to an implementation of [BareHandler].
type BareHandlerFunc func(ResponseWriter, *http.Request) error

// ServeBare implements the [BareHandler] interface.
func (f BareHandlerFunc) ServeBare(w ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Chain runs handlers in order as one bare handler. The chain only moves on when a handler called next(nil) before
// returning. The error a handler passes to next ends the chain and is returned.
func Chain(handlers ...NextHandler) BareHandler {
	return BareHandlerFunc(func(w ResponseWriter, r *http.Request) error {
		for _, h := range handlers {
			var (
				called bool
				err    error
			)

			h.ServeNext(r.Context(), w, r, func(e error) {
				if called {
					return
				}

				called, err = true, e
			})

			switch {
			case err != nil:
				return err
			case !called:
				return nil
			}
		}

		return nil
	})
}

// ToStd converts a bare handler into a standard library http.Handler. The implementation
// creates a buffered response writer and flushes it implicitly after serving the request.
func ToStd(h BareHandler, bufLimit int, logs Logger) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		bresp := newBufferResponse(resp, bufLimit)
		defer bresp.Free()

		if err := h.ServeBare(bresp, req); err != nil {
			status := renderError(bresp, err)
			if status >= http.StatusInternalServerError {
				logs.LogUnhandledServeError(err)
			}
		}

		if err := bresp.FlushBuffer(); err != nil {
			logs.LogImplicitFlushError(err)
		}
	})
}
