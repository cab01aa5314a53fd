// Package usecase defines the application's business logic interfaces and
// their input/output DTOs. The delivery layer depends on these interfaces,
// never on the implementations.
package usecase

import (
	"context"

	"gatekeeper/internal/domain/entity"
)

// RegisterInput holds the fields required to register a new account.
type RegisterInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginInput holds the credentials presented at login.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ResetRequestInput asks for a password-reset token for the given email.
type ResetRequestInput struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ResetConfirmInput redeems a reset token for a new password.
type ResetConfirmInput struct {
	ResetToken  string `json:"reset_token" form:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required"`
}

// AuthUsecase is the authentication facade consumed by the delivery layer.
// It composes the hasher, repository, session and reset services.
type AuthUsecase interface {
	// Register creates a new account. A duplicate email surfaces
	// domainerrors.ErrUserAlreadyExists; the first account is untouched.
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)

	// Login verifies credentials. Bad credentials are a normal false outcome,
	// never an error, so unknown email and wrong password are indistinguishable
	// to the caller. Session issuance is a separate SessionUsecase.Create call.
	Login(ctx context.Context, input *LoginInput) (bool, error)

	// CurrentUser resolves a session token to its user.
	// It returns (nil, nil) when the token does not identify a live session.
	CurrentUser(ctx context.Context, token string) (*entity.User, error)

	// Logout destroys the user's session. Destroying an absent session is a no-op.
	Logout(ctx context.Context, userID int64) error

	// RequestPasswordReset issues a single-use reset token for the email,
	// or domainerrors.ErrUserNotFound when no such account exists.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// ConfirmPasswordReset redeems a reset token and installs the new password.
	// A missing or already consumed token surfaces domainerrors.ErrResetTokenInvalid.
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}
