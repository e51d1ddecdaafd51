package brapp

import (
	"net/http"

	"github.com/advdv/bresult"
	"github.com/carlmjohnson/requests"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
// Example:
//
//	type Handlers struct {
//	    rt *brapp.Runtime[Env]
//	}
//
//	func (h *Handlers) GetUpstream(ctx context.Context, w bresult.ResponseWriter, r *http.Request, next bresult.Next) (any, error) {
//	    var out map[string]any
//	    err := h.rt.NewRequest().BaseURL(h.rt.Env().UpstreamURL).ToJSON(&out).Fetch(ctx)
//	    return out, err
//	}
type Runtime[E Environment] struct {
	env       E
	router    *bresult.Server
	transport http.RoundTripper
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, router *bresult.Server, transport http.RoundTripper) *Runtime[E] {
	return &Runtime[E]{env: env, router: router, transport: transport}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Routes returns the routes registered on the app's router so far.
func (r *Runtime[E]) Routes() []bresult.Route {
	return r.router.Routes()
}

// NewRequest returns a request builder whose requests are traced as children of the calling request.
func (r *Runtime[E]) NewRequest() *requests.Builder {
	return newRequestBuilder(r.transport)
}
