package bresult_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bresult"
	"github.com/stretchr/testify/require"
)

func greet(_ context.Context, w bresult.ResponseWriter, r *http.Request, next bresult.Next) {
	w.Header().Set("Is-Bar", "rab")
	w.WriteHeader(http.StatusCreated)

	fmt.Fprintf(w, `hello %s, at %s`, r.Header.Get("X-User"), r.URL.Path)

	if r.URL.Path == "/trigger-error" {
		next(errors.New("triggered error"))
		return
	}

	next(nil)
}

func TestHandleBasic(t *testing.T) {
	logs := bresult.NewTestLogger(t)
	shdlr := bresult.ToStd(bresult.Chain(bresult.NextHandlerFunc(greet)), -1, logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bar", nil)
	req.Header.Set("X-User", "foo")
	shdlr.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, `rab`, rec.Header().Get("Is-Bar"))
	require.Equal(t, `hello foo, at /bar`, rec.Body.String())
}

func TestHandleDefaultError(t *testing.T) {
	logs := bresult.NewTestLogger(t)
	shdlr := bresult.ToStd(bresult.Chain(bresult.NextHandlerFunc(greet)), -1, logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/trigger-error", nil)
	shdlr.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, ``, rec.Header().Get("Is-Bar"))
	require.JSONEq(t, `{"code":"InternalServerError","message":"caused by triggered error"}`, rec.Body.String())
	require.Equal(t, int64(1), logs.NumLogUnhandledServeError)
}

func TestChainOrder(t *testing.T) {
	var order []string
	step := func(name string, proceed bool) bresult.NextHandler {
		return bresult.NextHandlerFunc(func(_ context.Context, _ bresult.ResponseWriter, _ *http.Request, next bresult.Next) {
			order = append(order, name)
			if proceed {
				next(nil)
			}
		})
	}

	t.Run("all proceed", func(t *testing.T) {
		order = nil
		err := bresult.Chain(step("a", true), step("b", true), step("c", true)).
			ServeBare(nil, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("stops without next", func(t *testing.T) {
		order = nil
		err := bresult.Chain(step("a", true), step("b", false), step("c", true)).
			ServeBare(nil, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, order)
	})

	t.Run("stops on error", func(t *testing.T) {
		order = nil
		failing := bresult.NextHandlerFunc(func(_ context.Context, _ bresult.ResponseWriter, _ *http.Request, next bresult.Next) {
			order = append(order, "fail")
			next(errFooBar)
			next(nil)
		})

		err := bresult.Chain(step("a", true), failing, step("c", true)).
			ServeBare(nil, httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, err, errFooBar)
		require.Equal(t, []string{"a", "fail"}, order)
	})
}

func TestToStdCodedError(t *testing.T) {
	logs := bresult.NewTestLogger(t)
	shdlr := bresult.ToStd(bresult.BareHandlerFunc(func(w bresult.ResponseWriter, _ *http.Request) error {
		w.Header().Set("X-Partial", "1")
		fmt.Fprint(w, "partial")

		return bresult.NewError(bresult.CodeConflict, errors.New("already exists"))
	}), -1, logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/", nil)
	shdlr.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, rec.Header().Get("X-Partial"))
	require.JSONEq(t, `{"code":"Conflict"}`, rec.Body.String())
	require.Equal(t, int64(0), logs.NumLogUnhandledServeError)
}

func TestToStdAfterExplicitFlush(t *testing.T) {
	logs := bresult.NewTestLogger(t)
	shdlr := bresult.ToStd(bresult.BareHandlerFunc(func(w bresult.ResponseWriter, _ *http.Request) error {
		fmt.Fprint(w, "streamed")
		require.NoError(t, http.NewResponseController(w).Flush())

		return errors.New("too late")
	}), -1, logs)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	shdlr.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "streamed", rec.Body.String())
	require.Equal(t, int64(1), logs.NumLogUnhandledServeError)
}
