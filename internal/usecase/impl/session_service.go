// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gatekeeper/config"
	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionMeta is the cached expiry metadata of one session, keyed by token.
type sessionMeta struct {
	userID    int64
	createdAt time.Time
}

// sessionService implements the SessionUsecase interface. A single
// implementation covers both policies: duration <= 0 means sessions never
// expire, duration > 0 bounds their lifetime.
//
// The creation instant persisted on the user record is the source of truth for
// expiry; the in-process map only caches it so the common case skips nothing
// but a map read. Expired sessions are evicted from the cache when checked;
// the persisted token is left in place (lazy invalidation).
type sessionService struct {
	userRepo repository.UserRepository
	tokens   service.TokenSource
	duration time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu   sync.RWMutex
	meta map[string]sessionMeta
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Tokens   service.TokenSource
	Config   *config.Config
	Logger   *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	var duration time.Duration
	if params.Config != nil && params.Config.Auth != nil {
		duration = params.Config.Auth.SessionDuration
	}

	return &sessionService{
		userRepo: params.UserRepo,
		tokens:   params.Tokens,
		duration: duration,
		now:      time.Now,
		logger:   params.Logger,
		meta:     make(map[string]sessionMeta),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create issues a fresh session token for the user and persists it together
// with the creation instant, overwriting any prior session.
func (srv *sessionService) Create(ctx context.Context, userID int64) (string, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Session requested for unknown user", slog.Int64("userID", userID))

			return "", errors.Wrap(repository.ErrUserNotFound, "cannot create session")
		}

		return "", errors.Wrap(err, "failed to load user for session creation")
	}

	token := srv.tokens.NewToken()
	issuedAt := srv.now()

	if err := srv.userRepo.UpdateFields(ctx, user.ID, repository.Fields{
		repository.AttrSessionToken:     token,
		repository.AttrSessionCreatedAt: issuedAt,
	}); err != nil {
		return "", errors.Wrap(err, "failed to persist session token")
	}

	srv.mu.Lock()
	if user.SessionToken != nil {
		// The overwritten token can never resolve again.
		delete(srv.meta, *user.SessionToken)
	}
	srv.meta[token] = sessionMeta{userID: user.ID, createdAt: issuedAt}
	srv.mu.Unlock()

	srv.log(ctx).Debug("Session created", slog.Int64("userID", user.ID))

	return token, nil
}

// CreateByEmail issues a session for the account with the given email.
func (srv *sessionService) CreateByEmail(ctx context.Context, email string) (string, error) {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", errors.Wrap(repository.ErrUserNotFound, "cannot create session")
		}

		return "", errors.Wrap(err, "failed to load user for session creation")
	}

	return srv.Create(ctx, user.ID)
}

// Resolve returns the user owning the token, or (nil, nil) when the token is
// empty, unknown, or expired. Expiry is exclusive on the valid side: a session
// is live strictly while now - createdAt < duration.
func (srv *sessionService) Resolve(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, nil
	}

	if srv.duration > 0 {
		if createdAt, cached := srv.cachedCreatedAt(token); cached && srv.expired(createdAt) {
			srv.evict(token)
			srv.log(ctx).Debug("Session expired")

			return nil, nil
		}
	}

	user, err := srv.userRepo.FindBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Stale cache entries for revoked tokens go with the miss.
			srv.evict(token)

			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to resolve session token")
	}

	if srv.duration > 0 {
		if user.SessionCreatedAt == nil {
			// A session without a creation instant cannot be aged, so it is invalid.
			return nil, nil
		}
		if srv.expired(*user.SessionCreatedAt) {
			srv.evict(token)
			srv.log(ctx).Debug("Session expired", slog.Int64("userID", user.ID))

			return nil, nil
		}
		srv.remember(token, user.ID, *user.SessionCreatedAt)
	}

	return user, nil
}

// Destroy clears the user's session token and creation instant.
// Unknown users and absent sessions are a no-op.
func (srv *sessionService) Destroy(ctx context.Context, userID int64) error {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}

		return errors.Wrap(err, "failed to load user for session destruction")
	}

	if !user.HasSession() {
		return nil
	}

	if err := srv.userRepo.UpdateFields(ctx, user.ID, repository.Fields{
		repository.AttrSessionToken:     nil,
		repository.AttrSessionCreatedAt: nil,
	}); err != nil {
		return errors.Wrap(err, "failed to clear session token")
	}

	srv.evict(*user.SessionToken)
	srv.log(ctx).Debug("Session destroyed", slog.Int64("userID", user.ID))

	return nil
}

// expired reports whether a session created at the given instant has aged out.
func (srv *sessionService) expired(createdAt time.Time) bool {
	return srv.now().Sub(createdAt) >= srv.duration
}

func (srv *sessionService) cachedCreatedAt(token string) (time.Time, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	meta, ok := srv.meta[token]

	return meta.createdAt, ok
}

func (srv *sessionService) remember(token string, userID int64, createdAt time.Time) {
	srv.mu.Lock()
	srv.meta[token] = sessionMeta{userID: userID, createdAt: createdAt}
	srv.mu.Unlock()
}

func (srv *sessionService) evict(token string) {
	srv.mu.Lock()
	delete(srv.meta, token)
	srv.mu.Unlock()
}
