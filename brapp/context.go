package brapp

import (
	"context"
	"net/http"

	"github.com/advdv/bresult"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	ctxKeyRequestDep ctxKey = iota
)

// requestDep holds request-scoped dependencies available via context.
// App-scoped dependencies are accessed via Runtime instead.
type requestDep struct {
	logger *zap.Logger
}

// withRequestDep injects dependencies into the request context.
func withRequestDep(d *requestDep) bresult.Middleware {
	return func(next bresult.BareHandler) bresult.BareHandler {
		return bresult.BareHandlerFunc(func(w bresult.ResponseWriter, r *http.Request) error {
			ctx := context.WithValue(r.Context(), ctxKeyRequestDep, d)
			return next.ServeBare(w, r.WithContext(ctx))
		})
	}
}

// Log returns a trace-correlated zap logger from the context. Outside of a request served by the app it returns
// a no-op logger.
func Log(ctx context.Context) *zap.Logger {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		return zap.NewNop()
	}

	return d.logger.With(traceFields(ctx)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
