package bresult

import (
	"context"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// VersionHeader is the request header clients declare the API version they want with.
const VersionHeader = "Accept-Version"

type versionCtxKey struct{}

// WithRequestVersion returns a context that declares version v for the request it is attached to. It takes
// precedence over the [VersionHeader].
func WithRequestVersion(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, versionCtxKey{}, v)
}

// RequestVersion returns the API version the request declares, or an empty string.
func RequestVersion(r *http.Request) string {
	if v, ok := r.Context().Value(versionCtxKey{}).(string); ok && v != "" {
		return v
	}

	return r.Header.Get(VersionHeader)
}

// VersionedHandler pairs a handler with the API version it implements.
type VersionedHandler struct {
	Version string
	Handler Handler
}

type versionEntry struct {
	version *semver.Version
	handler Handler
}

// ByVersion returns a handler that dispatches to the entry for the version the request declares. Without a
// declared version the entry with the highest version is used. A declared version may also be a range like "~1"
// or "^2.1", in which case the highest entry inside the range is used. Requests for a version no entry
// satisfies fail with [CodeBadRequest].
//
// ByVersion panics when given no entries or an entry with an invalid version.
func ByVersion(entries ...VersionedHandler) Handler {
	if len(entries) < 1 {
		panic("bresult: ByVersion needs at least one entry")
	}

	parsed := lo.Map(entries, func(e VersionedHandler, _ int) versionEntry {
		v, err := semver.NewVersion(e.Version)
		if err != nil {
			panic("bresult: invalid handler version " + e.Version + ": " + err.Error())
		}

		return versionEntry{v, e.Handler}
	})

	highest := highestVersion(parsed)

	return HandlerFunc(func(ctx context.Context, w ResponseWriter, r *http.Request, next Next) (any, error) {
		declared := RequestVersion(r)
		if declared == "" {
			return highest.handler.ServeResult(ctx, w, r, next)
		}

		e, ok := selectVersion(parsed, declared)
		if !ok {
			return nil, NewError(CodeBadRequest, errors.Newf("%s is not supported by %s %s",
				declared, r.Method, r.URL.Path))
		}

		return e.handler.ServeResult(ctx, w, r, next)
	})
}

func selectVersion(entries []versionEntry, declared string) (versionEntry, bool) {
	if v, err := semver.NewVersion(declared); err == nil {
		if e, ok := lo.Find(entries, func(e versionEntry) bool { return e.version.Equal(v) }); ok {
			return e, true
		}
	}

	c, err := semver.NewConstraint(declared)
	if err != nil {
		return versionEntry{}, false
	}

	matching := lo.Filter(entries, func(e versionEntry, _ int) bool { return c.Check(e.version) })
	if len(matching) < 1 {
		return versionEntry{}, false
	}

	return highestVersion(matching), true
}

// highestVersion returns the entry with the highest version, the first one on ties.
func highestVersion(entries []versionEntry) versionEntry {
	return lo.MaxBy(entries, func(a, b versionEntry) bool { return a.version.GreaterThan(b.version) })
}
