package brapp

import (
	"context"
	"net/http"
	"time"

	"github.com/advdv/bresult"
)

// TimeoutConfig derives the http.Server timeouts from the request timeout.
type TimeoutConfig struct {
	// RequestTimeout is BR_REQUEST_TIMEOUT. Zero leaves the server without read and write timeouts.
	RequestTimeout time.Duration
}

// maxReadHeaderTimeout caps how long a client may take to send its headers.
const maxReadHeaderTimeout = 5 * time.Second

// ServerTimeouts returns the http.Server timeout values. The request timeout is the outer bound for reading the
// request and writing the response; the per-request deadline of [WithRequestTimeout] is what handlers observe.
func (tc TimeoutConfig) ServerTimeouts() (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	if tc.RequestTimeout <= 0 {
		return maxReadHeaderTimeout, 0, 0, 0
	}

	readHeaderTimeout = min(tc.RequestTimeout, maxReadHeaderTimeout)
	readTimeout = tc.RequestTimeout
	writeTimeout = tc.RequestTimeout
	idleTimeout = tc.RequestTimeout

	return
}

// WithRequestTimeout returns middleware that sets a context deadline of d on every request. Deferred results
// started with [bresult.Go] receive the same context and can stop early. A zero d disables the deadline.
func WithRequestTimeout(d time.Duration) bresult.Middleware {
	return func(next bresult.BareHandler) bresult.BareHandler {
		if d <= 0 {
			return next
		}

		return bresult.BareHandlerFunc(func(w bresult.ResponseWriter, r *http.Request) error {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			return next.ServeBare(w, r.WithContext(ctx))
		})
	}
}

// RequestRemainingTime returns the duration until the request context deadline.
// Returns 0 if no deadline is set or if the deadline has passed.
func RequestRemainingTime(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}

	return max(time.Until(deadline), 0)
}
