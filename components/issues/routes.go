package issues

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux and by chi's router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPaths returns the subtree patterns a component mounted under basePath
// registers: the project pages and the issue update endpoint.
func MountPaths(basePath string) []string {
	base := normalizeBasePath(basePath)
	return []string{
		base + "/projects/",
		base + "/issues/",
	}
}

// RegisterRoutes builds a component from the given options and mounts it
// under basePath on mux. Callers that need the component afterwards, for
// example to reach its Store, should use New and the RegisterRoutes method
// instead.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) ([]string, error) {
	if mux == nil {
		return nil, fmt.Errorf("issues: missing mux")
	}
	c, err := New(fns...)
	if err != nil {
		return nil, err
	}
	return c.RegisterRoutes(mux, basePath)
}

// relativePath strips the configured base path from a request path. The
// second return is false when the path lies outside the mount.
func (c *Component) relativePath(path string) (string, bool) {
	base := c.opts.BasePath
	if base == "" {
		return path, true
	}
	if !strings.HasPrefix(path, base) {
		return "", false
	}
	rel := strings.TrimPrefix(path, base)
	if rel == "" {
		rel = "/"
	}
	if !strings.HasPrefix(rel, "/") {
		return "", false
	}
	return rel, true
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segs = append(segs, part)
	}
	return segs
}
