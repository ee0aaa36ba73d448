package routes

import (
	"fmt"
	"strings"
)

// reservedSegments are the first path segments under /api/ owned by the
// static router; user routes must never be created there.
var reservedSegments = map[string]bool{
	"projects":  true,
	"pages":     true,
	"endpoints": true,
	"debug":     true,
	"auth":      true,
	"generate":  true,
	"health":    true,
}

// NormalizePath ensures a leading slash and strips a single trailing
// slash unless the path is exactly "/".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}

// ComposeEndpointPath builds the full route path for an endpoint:
// "/api/" + slug + normalized(userPath). A proposal already anchored at
// /api/<slug>/... (a generator echoing a full path) is collapsed so the
// slug appears exactly once.
func ComposeEndpointPath(slug, userPath string) (string, error) {
	if slug == "" {
		return "", fmt.Errorf("project has no slug")
	}
	if reservedSegments[slug] {
		return "", fmt.Errorf("project slug %q collides with a reserved route", slug)
	}

	n := NormalizePath(userPath)
	if n == "/api" || strings.HasPrefix(n, "/api/") {
		n = NormalizePath(strings.TrimPrefix(n, "/api"))
	}
	if n == "/"+slug {
		n = "/"
	} else if strings.HasPrefix(n, "/"+slug+"/") {
		n = strings.TrimPrefix(n, "/"+slug)
	}

	if n == "/" {
		return "/api/" + slug, nil
	}
	return "/api/" + slug + n, nil
}

// ComposePagePath builds the full route path for a page:
// "/" + slug + normalized(userPath). Pages may not live under /api/; a
// proposal of the form /api/<slug>/... for this project's own slug is
// re-anchored under /<slug>/..., anything else under /api/ is rejected.
func ComposePagePath(slug, userPath string) (string, error) {
	if slug == "" {
		return "", fmt.Errorf("project has no slug")
	}
	if reservedSegments[slug] {
		return "", fmt.Errorf("project slug %q collides with a reserved route", slug)
	}

	n := NormalizePath(userPath)
	if n == "/api" || strings.HasPrefix(n, "/api/") {
		rest := NormalizePath(strings.TrimPrefix(n, "/api"))
		if rest == "/"+slug {
			n = "/"
		} else if strings.HasPrefix(rest, "/"+slug+"/") {
			n = strings.TrimPrefix(rest, "/"+slug)
		} else {
			return "", fmt.Errorf("pages may not live under /api/")
		}
	}

	if n == "/" {
		return "/" + slug, nil
	}
	return "/" + slug + n, nil
}
