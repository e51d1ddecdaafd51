package bresult

import (
	"net/http"
	"net/url"
	"strings"
)

// Mount serves everything below the path of pattern with h, for example a [Server] holding one API version. The
// pattern may start with a method, like "GET /static". The mounted handler sees the path with the prefix removed,
// middleware registered via [Server.Use] runs before that and sees the original path.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.MountBare(pattern, Chain(stdHandler(h)))
}

// MountBare is like [Server.Mount] for a bare handler, errors it returns are rendered like those of any route.
func (s *Server) MountBare(pattern string, h BareHandler) {
	method, prefix := splitMountPattern(pattern)
	prefix = strings.TrimSuffix(prefix, "/")

	handler := ToStd(Wrap(withoutPrefix(prefix, h), s.middlewares.buffered...), s.bufLimit, s.logs)
	if prefix != "" {
		s.handle(method, prefix, handler)
	}

	s.handle(method, prefix+"/", handler)
}

// splitMountPattern splits an optional leading method off a pattern.
func splitMountPattern(pattern string) (Method, string) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok || strings.HasPrefix(method, "/") {
		return "", pattern
	}

	return Method(method), strings.TrimLeft(path, " ")
}

// withoutPrefix serves requests to h with prefix removed from the path.
func withoutPrefix(prefix string, h BareHandler) BareHandler {
	trim := func(p string) string {
		if p = strings.TrimPrefix(p, prefix); p == "" {
			return "/"
		}

		return p
	}

	return BareHandlerFunc(func(w ResponseWriter, r *http.Request) error {
		u := *r.URL
		u.Path = trim(r.URL.Path)
		if r.URL.RawPath != "" {
			u.RawPath = trim(r.URL.RawPath)
		}

		r2 := r.Clone(r.Context())
		r2.URL = &url.URL{}
		*r2.URL = u

		return h.ServeBare(w, r2)
	})
}
