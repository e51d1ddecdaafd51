package brapp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/advdv/bresult"
	"github.com/advdv/bresult/brapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerTimeouts(t *testing.T) {
	t.Run("derived from request timeout", func(t *testing.T) {
		rh, r, w, i := brapp.TimeoutConfig{RequestTimeout: 30 * time.Second}.ServerTimeouts()
		assert.Equal(t, 5*time.Second, rh)
		assert.Equal(t, 30*time.Second, r)
		assert.Equal(t, 30*time.Second, w)
		assert.Equal(t, 30*time.Second, i)
	})

	t.Run("short request timeout caps header timeout", func(t *testing.T) {
		rh, _, _, _ := brapp.TimeoutConfig{RequestTimeout: 2 * time.Second}.ServerTimeouts()
		assert.Equal(t, 2*time.Second, rh)
	})

	t.Run("disabled", func(t *testing.T) {
		rh, r, w, i := brapp.TimeoutConfig{}.ServerTimeouts()
		assert.Equal(t, 5*time.Second, rh)
		assert.Zero(t, r)
		assert.Zero(t, w)
		assert.Zero(t, i)
	})
}

func TestWithRequestTimeout(t *testing.T) {
	var remaining time.Duration
	h := bresult.BareHandlerFunc(func(_ bresult.ResponseWriter, r *http.Request) error {
		remaining = brapp.RequestRemainingTime(r.Context())
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	require.NoError(t, brapp.WithRequestTimeout(time.Minute)(h).ServeBare(nil, req))
	assert.Greater(t, remaining, 50*time.Second)
	assert.LessOrEqual(t, remaining, time.Minute)

	require.NoError(t, brapp.WithRequestTimeout(0)(h).ServeBare(nil, req))
	assert.Zero(t, remaining)
}

func TestRequestTimeoutReachesDeferredResults(t *testing.T) {
	srv := bresult.NewServerWith(-1, bresult.NewTestLogger(t), http.NewServeMux())
	srv.Use(brapp.WithRequestTimeout(10 * time.Millisecond))
	require.NoError(t, bresult.Install(srv, bresult.Options{}))

	srv.Get("/slow", func(ctx context.Context, _ bresult.ResponseWriter, _ *http.Request, _ bresult.Next) (any, error) {
		return bresult.Go(ctx, func(ctx context.Context) (any, error) {
			<-ctx.Done()
			return nil, bresult.NewError(bresult.CodeGatewayTimeout, ctx.Err())
		}), nil
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestRequestRemainingTimeWithoutDeadline(t *testing.T) {
	assert.Zero(t, brapp.RequestRemainingTime(context.Background()))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.Zero(t, brapp.RequestRemainingTime(ctx))
}
