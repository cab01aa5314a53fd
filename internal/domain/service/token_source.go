package service

// TokenSource generates opaque, unguessable tokens for sessions and password
// resets. Implementations must provide at least 122 bits of entropy per token.
type TokenSource interface {
	// NewToken returns a fresh collision-resistant token string.
	NewToken() string
}
