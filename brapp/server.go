package brapp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/advdv/bresult"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler    bresult.HandlerFunc
	ErrorTransformer bresult.ErrorTransformer
	Middleware       []bresult.Middleware
}

// RouterParams holds the dependencies for creating the router.
type RouterParams struct {
	fx.In

	Env    Environment
	Logger *zap.Logger
	Config ServerConfig
}

// NewRouter creates the [bresult.Server] routes are registered on, with the result adapter installed. Handlers
// can return their results directly:
//
//	func(s *bresult.Server) {
//	    s.Get("/items/{id}", func(ctx context.Context, w bresult.ResponseWriter, r *http.Request, next bresult.Next) (any, error) {
//	        return map[string]any{"id": r.PathValue("id")}, nil
//	    })
//	}
func NewRouter(params RouterParams) (*bresult.Server, error) {
	srv := bresult.NewServerWith(
		params.Env.responseBufferLimit(),
		newZapServerLogger(params.Logger),
		http.NewServeMux(),
	)

	srv.Use(withRequestDep(&requestDep{logger: params.Logger}))
	srv.Use(WithRequestTimeout(params.Env.requestTimeout()))
	srv.Use(params.Config.Middleware...)

	opts := bresult.Options{ErrorTransformer: params.Config.ErrorTransformer}
	if params.Env.logHandledErrors() {
		opts.Logger = NewZapErrorLogger(params.Logger)
	}

	if err := bresult.NewInstaller().Install(srv, opts); err != nil {
		return nil, errors.Wrap(err, "install result adapter")
	}

	return srv, nil
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Router     *bresult.Server
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
	Config     ServerConfig
}

// NewServer creates an HTTP server with the health route, tracing and timeouts configured.
func NewServer(params ServerParams) *http.Server {
	// Tracing is disabled for the health path to avoid noisy traces from probes.
	healthPath := params.Env.healthCheckPath()
	healthHandler := params.Config.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler(params.Env.serviceName())
	}

	params.Router.Get(healthPath, healthHandler)

	handler := withTracing(params.TracerProv, params.Propagator, params.Env.serviceName(), healthPath)(params.Router)

	tc := TimeoutConfig{RequestTimeout: params.Env.requestTimeout()}
	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := tc.ServerTimeouts()

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(service string) bresult.HandlerFunc {
	return func(context.Context, bresult.ResponseWriter, *http.Request, bresult.Next) (any, error) {
		return map[string]any{"status": "ok", "service": service}, nil
	}
}
