package bresult

import (
	"context"
	"fmt"
	"net/http"
)

// Method is one of the HTTP verbs the server registers routes for.
type Method string

const (
	MethodDelete  Method = http.MethodDelete
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
)

// Methods is the fixed set of verbs with a registration function.
var Methods = [...]Method{MethodDelete, MethodGet, MethodHead, MethodOptions, MethodPost, MethodPut, MethodPatch}

// RegisterFunc registers a route's handler chain for a path pattern. Handlers may be [NextHandler] values, functions
// with the [NextHandlerFunc] signature or plain [http.Handler] values.
type RegisterFunc func(pattern string, handlers ...any)

// Registrar is something that registration functions can be intercepted on.
type Registrar interface {
	Intercept(m Method, wrap func(RegisterFunc) RegisterFunc)
}

// Route describes a registered route.
type Route struct {
	Method  Method
	Pattern string
}

// Server is an HTTP multiplexer that runs chains of continuation-style handlers with buffered responses and turns
// the errors they pass to their continuation into error responses.
type Server struct {
	logs        Logger
	bufLimit    int
	mux         *http.ServeMux
	register    map[Method]RegisterFunc
	routes      []Route
	middlewares struct {
		captured bool
		buffered []Middleware
	}
}

// NewServer creates a new Server with default settings.
func NewServer() *Server {
	return NewServerWith(-1, NewStdLogger(nil), http.NewServeMux())
}

// NewServerWith creates a Server with custom settings.
func NewServerWith(bufLimit int, logger Logger, baseMux *http.ServeMux) *Server {
	s := &Server{
		bufLimit: bufLimit,
		logs:     logger,
		mux:      baseMux,
		register: make(map[Method]RegisterFunc, len(Methods)),
	}

	for _, m := range Methods {
		s.register[m] = s.registerFor(m)
	}

	return s
}

// Use allows providing of middleware.
func (s *Server) Use(mw ...Middleware) {
	s.ensureNoUseAfterHandle()
	s.middlewares.buffered = append(s.middlewares.buffered, mw...)
}

// Intercept replaces the registration function of method m with what wrap makes of it. It implements [Registrar].
func (s *Server) Intercept(m Method, wrap func(RegisterFunc) RegisterFunc) {
	s.register[m] = wrap(s.Route(m))
}

// Route returns the current registration function for method m.
func (s *Server) Route(m Method) RegisterFunc {
	reg, ok := s.register[m]
	if !ok {
		panic(fmt.Sprintf("bresult: no registration function for method %q", m))
	}

	return reg
}

// Routes returns the routes registered so far.
func (s *Server) Routes() []Route {
	return append([]Route(nil), s.routes...)
}

func (s *Server) Delete(pattern string, handlers ...any)  { s.Route(MethodDelete)(pattern, handlers...) }
func (s *Server) Get(pattern string, handlers ...any)     { s.Route(MethodGet)(pattern, handlers...) }
func (s *Server) Head(pattern string, handlers ...any)    { s.Route(MethodHead)(pattern, handlers...) }
func (s *Server) Options(pattern string, handlers ...any) { s.Route(MethodOptions)(pattern, handlers...) }
func (s *Server) Post(pattern string, handlers ...any)    { s.Route(MethodPost)(pattern, handlers...) }
func (s *Server) Put(pattern string, handlers ...any)     { s.Route(MethodPut)(pattern, handlers...) }
func (s *Server) Patch(pattern string, handlers ...any)   { s.Route(MethodPatch)(pattern, handlers...) }

// HandleStd registers a standard library [http.Handler] for any method. Middleware registered via [Server.Use]
// is applied.
func (s *Server) HandleStd(pattern string, handler http.Handler) {
	s.handle("", pattern, ToStd(Wrap(Chain(stdHandler(handler)), s.middlewares.buffered...), s.bufLimit, s.logs))
}

// ServeHTTP makes the server implement the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerFor(m Method) RegisterFunc {
	return func(pattern string, handlers ...any) {
		chain := make([]NextHandler, 0, len(handlers))
		for _, h := range handlers {
			switch x := h.(type) {
			case NextHandler:
				chain = append(chain, x)
			case func(context.Context, ResponseWriter, *http.Request, Next):
				chain = append(chain, NextHandlerFunc(x))
			case http.Handler:
				chain = append(chain, stdHandler(x))
			case Handler, func(context.Context, ResponseWriter, *http.Request, Next) (any, error):
				panic(fmt.Sprintf("bresult: %T returns a result, wrap it with Adapt or Install the adapter", h))
			default:
				panic(fmt.Sprintf("bresult: unsupported handler type %T", h))
			}
		}

		if len(chain) < 1 {
			panic(fmt.Sprintf("bresult: route %s %s has no handlers", m, pattern))
		}

		s.handle(m, pattern, ToStd(
			Wrap(Chain(chain...), s.middlewares.buffered...),
			s.bufLimit,
			s.logs,
		))
	}
}

func (s *Server) handle(m Method, pattern string, handler http.Handler) {
	s.middlewares.captured = true
	s.routes = append(s.routes, Route{Method: m, Pattern: pattern})

	if m != "" {
		pattern = string(m) + " " + pattern
	}

	s.mux.Handle(pattern, handler)
}

func (s *Server) ensureNoUseAfterHandle() {
	if s.middlewares.captured {
		panic("bresult: cannot call Use() after registering a route")
	}
}

// stdHandler runs a standard library handler as a chain member that always proceeds.
func stdHandler(h http.Handler) NextHandler {
	return NextHandlerFunc(func(_ context.Context, w ResponseWriter, r *http.Request, next Next) {
		h.ServeHTTP(w, r)
		next(nil)
	})
}

var _ Registrar = &Server{}
