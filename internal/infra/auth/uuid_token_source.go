package auth

import (
	"github.com/google/uuid"

	"gatekeeper/internal/domain/service"
)

// uuidTokenSource issues random version-4 UUID strings. A v4 UUID carries
// 122 bits of entropy, enough for session and reset tokens to be unguessable.
type uuidTokenSource struct{}

// NewUUIDTokenSource is the constructor for uuidTokenSource.
func NewUUIDTokenSource() service.TokenSource {
	return uuidTokenSource{}
}

// NewToken returns a fresh random UUID string.
func (uuidTokenSource) NewToken() string {
	return uuid.NewString()
}
