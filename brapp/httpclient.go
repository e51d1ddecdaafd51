package brapp

import (
	"net/http"

	"github.com/carlmjohnson/requests"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// NewHTTPTransport wraps the default transport so calls to upstream services join the trace of the route making them.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "upstream " + r.Method + " " + r.URL.Host
		}),
	)
}

// NewHTTPClient provides a client on top of the traced transport.
func NewHTTPClient(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt}
}

func newRequestBuilder(rt http.RoundTripper) *requests.Builder {
	return requests.New().Transport(rt)
}
