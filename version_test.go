package bresult_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bresult"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func versioned(v string) bresult.VersionedHandler {
	return bresult.VersionedHandler{Version: v, Handler: bresult.HandlerFunc(
		func(context.Context, bresult.ResponseWriter, *http.Request, bresult.Next) (any, error) {
			return map[string]any{"version": v}, nil
		})}
}

func TestByVersion(t *testing.T) {
	srv := newInstalledServer(t, bresult.Options{})
	srv.Get("/v", bresult.ByVersion(versioned("1.0.0"), versioned("2.0.0"), versioned("1.2.0")))

	for _, tt := range []struct {
		declared   string
		wantStatus int
		want       string
	}{
		{"1.0.0", http.StatusOK, "1.0.0"},
		{"", http.StatusOK, "2.0.0"},
		{"2.0.0", http.StatusOK, "2.0.0"},
		{"v1.2.0", http.StatusOK, "1.2.0"},
		{"~1", http.StatusOK, "1.2.0"},
		{"<2", http.StatusOK, "1.2.0"},
		{">=1.0.0", http.StatusOK, "2.0.0"},
		{"3.0.0", http.StatusBadRequest, ""},
		{"not a version", http.StatusBadRequest, ""},
	} {
		t.Run(tt.declared, func(t *testing.T) {
			rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v", nil)
			req.Header.Set(bresult.VersionHeader, tt.declared)
			srv.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.want != "" {
				assert.Equal(t, tt.want, gjson.Get(rec.Body.String(), "version").String())
			} else {
				assert.Equal(t, "BadRequest", gjson.Get(rec.Body.String(), "code").String())
			}
		})
	}
}

func TestByVersionFromContext(t *testing.T) {
	h := bresult.ByVersion(versioned("1.0.0"), versioned("2.0.0"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(bresult.VersionHeader, "2.0.0")
	req = req.WithContext(bresult.WithRequestVersion(req.Context(), "1.0.0"))
	require.Equal(t, "1.0.0", bresult.RequestVersion(req))

	v, err := h.ServeResult(req.Context(), nil, req, func(error) {})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"version": "1.0.0"}, v)
}

func TestByVersionUnsupported(t *testing.T) {
	h := bresult.ByVersion(versioned("1.0.0"))

	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	req.Header.Set(bresult.VersionHeader, "4.0.0")

	_, err := h.ServeResult(req.Context(), nil, req, func(error) {})
	require.Equal(t, bresult.CodeBadRequest, bresult.CodeOf(err))
	require.EqualError(t, err, "Bad Request: 4.0.0 is not supported by POST /things")
}

func TestByVersionPanics(t *testing.T) {
	require.PanicsWithValue(t, "bresult: ByVersion needs at least one entry", func() {
		bresult.ByVersion()
	})

	require.Panics(t, func() { bresult.ByVersion(versioned("one")) })
}
