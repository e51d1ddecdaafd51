// Package brapp provides a batteries-included setup for HTTP services whose handlers return their results.
//
// # Overview
//
// brapp handles the boilerplate around a [bresult.Server]: environment parsing, structured logging,
// OpenTelemetry tracing, the health route and graceful shutdown. The result adapter is installed on the router, so
// routes take value-returning handlers directly:
//
//	brapp.NewApp[Env](func(s *bresult.Server, h *Handlers) {
//	    s.Get("/items", h.ListItems)
//	    s.Get("/items/{id}", h.GetItem)
//	},
//	    brapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    brapp.BaseEnvironment
//	    UpstreamURL string `env:"UPSTREAM_URL,required"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable                  | Required | Default | Description                                       |
//	|---------------------------|----------|---------|---------------------------------------------------|
//	| BR_PORT                   | Yes      | -       | Port the HTTP server listens on                   |
//	| BR_SERVICE_NAME           | Yes      | -       | Service name for logging and tracing              |
//	| BR_HEALTH_CHECK_PATH      | No       | /health | Path of the health route, not traced              |
//	| BR_LOG_LEVEL              | No       | info    | Log level (debug, info, warn, error)              |
//	| BR_OTEL_EXPORTER          | No       | stdout  | Trace exporter: "stdout", "xrayudp" or "none"     |
//	| BR_RESPONSE_BUFFER_LIMIT  | No       | -1      | Max buffered response bytes, -1 for no limit      |
//	| BR_LOG_HANDLED_ERRORS     | No       | true    | Log every error a handler returns or panics with  |
//	| BR_REQUEST_TIMEOUT        | No       | 30s     | Deadline of every request, 0 disables it          |
//
// # Errors
//
// Errors that handlers return, panic with or reject with are logged (see BR_LOG_HANDLED_ERRORS), optionally
// replaced through [WithErrorTransformer], and rendered by the router: errors carrying a status code get that
// status, others become a 500 response.
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected into handler constructors via fx:
//   - [Runtime.Env] returns the typed environment configuration
//   - [Runtime.Routes] lists the registered routes
//   - [Runtime.NewRequest] builds outgoing requests that continue the request's trace
//
// Request-scoped values come from the context: [Log] returns a logger with trace correlation, [Span] the current
// span.
package brapp
