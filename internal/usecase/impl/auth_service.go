package impl

import (
	"context"
	"log/slog"

	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface. It is the facade the
// delivery layer talks to, composing the hasher, repository, session service
// and reset service.
type authService struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	sessions usecase.SessionUsecase
	resets   usecase.PasswordResetUsecase
	logger   *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	Sessions usecase.SessionUsecase
	Resets   usecase.PasswordResetUsecase
	Logger   *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		sessions: params.Sessions,
		resets:   params.Resets,
		logger:   params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account for the given credentials.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	_, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		srv.log(ctx).Warn("Registration rejected, email taken", slog.String("email", input.Email))

		return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check email availability")
	}

	digest, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	newUser := &entity.User{
		Email:          input.Email,
		HashedPassword: digest,
	}

	// The unique index backs this up: a racing duplicate still fails in Create.
	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Int64("userID", newUser.ID))

	return newUser, nil
}

// Login verifies the presented credentials. Unknown email and wrong password
// are the same false outcome so neither the return value nor the error path
// reveals which one failed.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (bool, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "failed to load user for login")
	}

	if !srv.hasher.Check(input.Password, user.HashedPassword) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return false, nil
	}

	srv.log(ctx).Debug("Login verified", slog.Int64("userID", user.ID))

	return true, nil
}

// CurrentUser resolves a session token to its user via the session service.
func (srv *authService) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	user, err := srv.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve current user")
	}

	return user, nil
}

// Logout destroys the user's session. Idempotent.
func (srv *authService) Logout(ctx context.Context, userID int64) error {
	if err := srv.sessions.Destroy(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to destroy session")
	}

	return nil
}

// RequestPasswordReset issues a single-use reset token for the email.
func (srv *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	token, err := srv.resets.Generate(ctx, email)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate reset token")
	}

	return token, nil
}

// ConfirmPasswordReset redeems a reset token and installs the new password.
func (srv *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := srv.resets.Consume(ctx, token, newPassword); err != nil {
		return errors.Wrap(err, "failed to consume reset token")
	}

	return nil
}
