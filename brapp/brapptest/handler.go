package brapptest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bresult"
)

// CallHandler serves req with a value-returning handler, adapted the way an app adapts its routes, and returns the
// recorded response. Errors are rendered like the app renders them.
func CallHandler(tb testing.TB, handler bresult.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	tb.Helper()

	logs := bresult.NewTestLogger(tb)
	rec := httptest.NewRecorder()
	bresult.ToStd(
		bresult.Chain(bresult.Adapt(handler, bresult.Options{Logger: logs})), -1, logs,
	).ServeHTTP(rec, req)

	return rec
}
