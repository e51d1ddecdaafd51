// Package example implements example middleware in an outside package.
package example

import (
	"context"
	"net/http"

	"github.com/advdv/bresult"
	"go.uber.org/zap"
)

// ctxKey type scopes middlware values.
type ctxKey string

// Middleware provides an example for middleware that adds a request logger to the context and logs how each route
// ended.
func Middleware(logs *zap.Logger) bresult.Middleware {
	return func(n bresult.BareHandler) bresult.BareHandler {
		return bresult.BareHandlerFunc(func(w bresult.ResponseWriter, r *http.Request) error {
			logs := logs.With(zap.String("method", r.Method), zap.String("path", r.URL.Path))
			r = r.WithContext(context.WithValue(r.Context(), ctxKey("zap"), logs))

			err := n.ServeBare(w, r)
			if err != nil {
				logs.Info("route failed", zap.Error(err))
			} else {
				logs.Info("route done", zap.Int("status", w.StatusCode()))
			}

			return err
		})
	}
}

// Log returns the request logger, or a no-op logger outside of the middleware.
func Log(ctx context.Context) *zap.Logger {
	v, ok := ctx.Value(ctxKey("zap")).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}

	return v
}
