package bresult

import (
	"context"
	"net/http"
	"reflect"
	"slices"
	"sync"
)

// Installer installs the adapter on registrars. It remembers every registrar it installed on, so installing twice
// does not wrap handlers twice.
type Installer struct {
	mu        sync.Mutex
	installed map[Registrar]struct{}
}

// NewInstaller inits an installer.
func NewInstaller() *Installer {
	return &Installer{installed: map[Registrar]struct{}{}}
}

var defaultInstaller = NewInstaller()

// Install intercepts the registration function of every method in [Methods] on reg, such that a route's final
// handler is adapted with [Adapt] using opts. Once installed, value-returning handlers can be registered directly:
//
//	srv := bresult.NewServer()
//	if err := bresult.Install(srv, bresult.Options{}); err != nil {
//	    return err
//	}
//
//	srv.Get("/items/{id}", func(ctx context.Context, w bresult.ResponseWriter, r *http.Request, next bresult.Next) (any, error) {
//	    return map[string]any{"id": r.PathValue("id")}, nil
//	})
//
// Installing on a registrar a second time has no effect, the first options stay in place. The registrar's dynamic
// type must be comparable, which any pointer is.
func Install(reg Registrar, opts Options) error {
	return defaultInstaller.Install(reg, opts)
}

// Install is like the package-level [Install] but tracks registrars in this installer.
func (in *Installer) Install(reg Registrar, opts Options) error {
	if isNil(reg) {
		return ErrNoServer
	}

	if !reflect.TypeOf(reg).Comparable() {
		return ErrUncomparableRegistrar
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if _, ok := in.installed[reg]; ok {
		return nil
	}

	in.installed[reg] = struct{}{}
	for _, m := range Methods {
		reg.Intercept(m, adaptLast(opts))
	}

	return nil
}

// Installed reports whether the installer already installed on reg.
func (in *Installer) Installed(reg Registrar) bool {
	if isNil(reg) || !reflect.TypeOf(reg).Comparable() {
		return false
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	_, ok := in.installed[reg]

	return ok
}

// adaptLast returns a wrapper for registration functions that adapts the final handler of a route before passing
// all arguments on.
func adaptLast(opts Options) func(RegisterFunc) RegisterFunc {
	return func(prev RegisterFunc) RegisterFunc {
		return func(pattern string, handlers ...any) {
			if n := len(handlers); n > 0 {
				if h, ok := asHandler(handlers[n-1]); ok {
					handlers = slices.Clone(handlers)
					handlers[n-1] = Adapt(h, opts)
				}
			}

			prev(pattern, handlers...)
		}
	}
}

// asHandler returns v as a [Handler] if it is a handler function. Continuation-style handlers are lifted into a
// handler that returns nothing, so they still get a guarded continuation.
func asHandler(v any) (Handler, bool) {
	switch h := v.(type) {
	case Handler:
		return h, !isNil(v)
	case func(context.Context, ResponseWriter, *http.Request, Next) (any, error):
		return HandlerFunc(h), h != nil
	case NextHandler:
		return lift(h), !isNil(v)
	case func(context.Context, ResponseWriter, *http.Request, Next):
		return lift(NextHandlerFunc(h)), h != nil
	default:
		return nil, false
	}
}

func lift(h NextHandler) Handler {
	return HandlerFunc(func(ctx context.Context, w ResponseWriter, r *http.Request, next Next) (any, error) {
		h.ServeNext(ctx, w, r, next)
		return nil, nil
	})
}
