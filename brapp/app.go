package brapp

import (
	"context"

	"github.com/advdv/bresult"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a handler reporting the service as ok is used.
func WithHealthHandler(h bresult.HandlerFunc) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// WithErrorTransformer replaces every error a handler returns, panics or rejects with before it is rendered.
func WithErrorTransformer(t bresult.ErrorTransformer) Option {
	return func(c *AppConfig) {
		c.ErrorTransformer = t
	}
}

// WithMiddleware adds middleware that wraps every route, after the app's own middleware.
func WithMiddleware(mw ...bresult.Middleware) Option {
	return func(c *AppConfig) {
		c.Middleware = append(c.Middleware, mw...)
	}
}

type runtimeParams[E Environment] struct {
	fx.In

	Env        E
	Router     *bresult.Server
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// FxOptions returns the fx options that make up an app. [NewApp] and brapptest build on it.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 12+len(cfg.FxOptions))
	baseOpts = append(baseOpts,
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewRouter),
		fx.Provide(NewServer),
		fx.Provide(func(p runtimeParams[E]) *Runtime[E] {
			return NewRuntime(p.Env, p.Router, NewHTTPTransport(p.TracerProv, p.Propagator))
		}),
		fx.Invoke(startServerHook),
		fx.Invoke(routing),
	)

	return append(baseOpts, cfg.FxOptions...)
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx options.
// At minimum, it should accept *bresult.Server for routing.
//
// Example:
//
//	brapp.NewApp[Env](func(s *bresult.Server, h *Handlers) {
//	    s.Get("/items/{id}", h.GetItem)
//	    s.Post("/items", h.CreateItem)
//	},
//	    brapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{app: fx.New(FxOptions[E](routing, opts...)...)}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application, blocks until ctx is done and stops it again.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err //nolint:wrapcheck
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx) //nolint:wrapcheck
}
