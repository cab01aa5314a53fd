package usecase

import (
	"context"

	"gatekeeper/internal/domain/entity"
)

// SessionUsecase manages the lifecycle of a user's single active session.
// Whether sessions expire is a configuration concern of the implementation;
// callers see one interface either way.
type SessionUsecase interface {
	// Create issues a fresh session token for the user, overwriting and thereby
	// invalidating any prior session. A missing user surfaces
	// repository.ErrUserNotFound as a normal, checked outcome.
	Create(ctx context.Context, userID int64) (string, error)

	// CreateByEmail issues a session for the account with the given email.
	// It is the adapter-side companion to AuthUsecase.Login, which verifies
	// credentials without issuing a session.
	CreateByEmail(ctx context.Context, email string) (string, error)

	// Resolve returns the user owning the token, or (nil, nil) when the token
	// is empty, unknown, or expired.
	Resolve(ctx context.Context, token string) (*entity.User, error)

	// Destroy clears the user's session token. Idempotent: destroying an
	// absent session, or the session of an unknown user, is a no-op.
	Destroy(ctx context.Context, userID int64) error
}
