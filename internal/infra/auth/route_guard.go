package auth

import (
	"strings"

	"gatekeeper/config"
	"gatekeeper/internal/domain/service"
)

// wildcardMarker ends an exclusion rule that matches by prefix instead of equality.
const wildcardMarker = "*"

// routeGuard holds the static exclusion rules describing which paths bypass
// authentication. Rules are loaded once from configuration and never mutated,
// so the guard is safe for concurrent use.
type routeGuard struct {
	publicPaths []string
}

// NewRouteGuard is the constructor for routeGuard.
func NewRouteGuard(cfg *config.Config) service.RouteGuard {
	var rules []string
	if cfg != nil && cfg.Auth != nil {
		rules = cfg.Auth.PublicPaths
	}

	return &routeGuard{publicPaths: rules}
}

// RequiresAuth reports whether the given path must carry a valid session.
func (g *routeGuard) RequiresAuth(path string) bool {
	return RequiresAuth(path, g.publicPaths)
}

// RequiresAuth decides whether a request path requires authentication given a
// set of exclusion rules. A rule ending in "*" excludes every path starting
// with the rule's prefix; any other rule excludes only the exact path, with
// "/a" and "/a/" treated as equal. Missing input fails closed: an empty path
// or an empty rule set always requires auth.
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}

	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	for _, rule := range excluded {
		if strings.HasSuffix(rule, wildcardMarker) {
			if strings.HasPrefix(path, strings.TrimSuffix(rule, wildcardMarker)) {
				return false
			}
		} else if rule == path {
			return false
		}
	}

	return true
}
