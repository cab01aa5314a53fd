package service

// RouteGuard decides whether a request path requires an authenticated session.
// Implementations are pure: static exclusion rules loaded once, no I/O, and the
// answer depends only on the path string. Missing or ambiguous input fails closed.
type RouteGuard interface {
	// RequiresAuth reports whether the given request path must carry a valid
	// session. An empty path always requires auth.
	RequiresAuth(path string) bool
}
