package middleware

import (
	"log/slog"

	"gatekeeper/config"
	"gatekeeper/internal/delivery/http/response"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// contextKeyUser is where the resolved user is stored on the echo context.
const contextKeyUser = "currentUser"

// SessionMiddleware guards routes with cookie-based session authentication.
// The route guard is consulted first, so excluded paths never touch the store.
type SessionMiddleware struct {
	guard      service.RouteGuard
	auth       usecase.AuthUsecase
	cookieName string
	logger     *slog.Logger
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(guard service.RouteGuard, auth usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *SessionMiddleware {
	cookieName := "session_id"
	if cfg != nil && cfg.Auth != nil && cfg.Auth.SessionCookieName != "" {
		cookieName = cfg.Auth.SessionCookieName
	}

	return &SessionMiddleware{
		guard:      guard,
		auth:       auth,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Authenticate resolves the session cookie into a user for every path the
// route guard does not exclude. Missing or invalid sessions fail closed.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.guard.RequiresAuth(c.Request().URL.Path) {
			return next(c)
		}

		cookie, err := c.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			return response.Forbidden(c, "SESSION_NOT_FOUND", "no active session")
		}

		user, err := m.auth.CurrentUser(c.Request().Context(), cookie.Value)
		if err != nil {
			return errors.WithStack(err)
		}
		if user == nil {
			return response.Forbidden(c, "SESSION_NOT_FOUND", "no active session")
		}

		c.Set(contextKeyUser, user)

		return next(c)
	}
}

// CurrentUser returns the user resolved by Authenticate, or nil on an
// unauthenticated (excluded) route.
func CurrentUser(c echo.Context) *entity.User {
	user, _ := c.Get(contextKeyUser).(*entity.User)

	return user
}
