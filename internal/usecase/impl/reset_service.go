package impl

import (
	"context"
	"log/slog"

	"gatekeeper/config"
	deliverycontext "gatekeeper/internal/delivery/context"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// resetService implements the PasswordResetUsecase interface.
type resetService struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	tokens   service.TokenSource
	logger   *slog.Logger
}

// ResetServiceParams holds dependencies for resetService, injected by Fx.
type ResetServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	Tokens   service.TokenSource
	Config   *config.Config
	Logger   *slog.Logger
}

// NewResetService is the constructor for resetService.
func NewResetService(params ResetServiceParams) usecase.PasswordResetUsecase {
	return &resetService{
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		tokens:   params.Tokens,
		logger:   params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *resetService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Generate issues a fresh reset token for the account with the given email.
// A prior unconsumed token is overwritten and can no longer be redeemed.
func (srv *resetService) Generate(ctx context.Context, email string) (string, error) {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Reset token requested for unknown email", slog.String("email", email))

			return "", domainerrors.ErrUserNotFound.WrapMessage("cannot issue reset token")
		}

		return "", errors.Wrap(err, "failed to load user for reset token")
	}

	token := srv.tokens.NewToken()
	if err := srv.userRepo.UpdateFields(ctx, user.ID, repository.Fields{
		repository.AttrResetToken: token,
	}); err != nil {
		return "", errors.Wrap(err, "failed to persist reset token")
	}

	srv.log(ctx).Info("Reset token issued", slog.Int64("userID", user.ID))

	return token, nil
}

// Consume redeems the token for a new password. The new hash and the token
// clear are applied as one update: the token must not be clearable without the
// password change landing, and vice versa.
func (srv *resetService) Consume(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domainerrors.ErrResetTokenInvalid.WrapMessage("empty reset token")
	}

	user, err := srv.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Unknown or already consumed reset token presented")

			return domainerrors.ErrResetTokenInvalid.WrapMessage("no user owns this reset token")
		}

		return errors.Wrap(err, "failed to look up reset token")
	}

	digest, err := srv.hasher.Hash(newPassword)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	if err := srv.userRepo.UpdateFields(ctx, user.ID, repository.Fields{
		repository.AttrHashedPassword: digest,
		repository.AttrResetToken:     nil,
	}); err != nil {
		return errors.Wrap(err, "failed to update password")
	}

	srv.log(ctx).Info("Password updated via reset token", slog.Int64("userID", user.ID))

	return nil
}
