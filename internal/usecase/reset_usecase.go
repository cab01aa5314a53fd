package usecase

import (
	"context"
)

// PasswordResetUsecase issues and consumes single-use password-reset tokens.
type PasswordResetUsecase interface {
	// Generate issues a fresh reset token for the account with the given email,
	// overwriting any prior unconsumed token. An unknown email surfaces
	// domainerrors.ErrUserNotFound.
	Generate(ctx context.Context, email string) (string, error)

	// Consume redeems the token: the new password hash is stored and the token
	// cleared as one update, so a consumed token can never be redeemed twice
	// and the password change never lands without the token clear (or vice
	// versa). An unknown token surfaces domainerrors.ErrResetTokenInvalid.
	Consume(ctx context.Context, token, newPassword string) error
}
