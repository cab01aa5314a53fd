// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"gatekeeper/config"
	"gatekeeper/internal/delivery/http/middleware"
	"gatekeeper/internal/delivery/http/response"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for registration, session and reset handlers.
type AuthHandler struct {
	auth            usecase.AuthUsecase
	sessions        usecase.SessionUsecase
	cookieName      string
	sessionDuration time.Duration
	logger          *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, sessions usecase.SessionUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	cookieName := "session_id"
	var sessionDuration time.Duration
	if cfg != nil && cfg.Auth != nil {
		if cfg.Auth.SessionCookieName != "" {
			cookieName = cfg.Auth.SessionCookieName
		}
		sessionDuration = cfg.Auth.SessionDuration
	}

	return &AuthHandler{
		auth:            auth,
		sessions:        sessions,
		cookieName:      cookieName,
		sessionDuration: sessionDuration,
		logger:          logger,
	}
}

// userView is the safe subset of a user record returned to clients.
type userView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Register handles the account registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var input *usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.auth.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, userView{ID: user.ID, Email: user.Email}, "User registered successfully")
}

// Login handles the session creation request. Valid credentials set the
// session cookie; invalid credentials are a 401, never an error.
func (h *AuthHandler) Login(c echo.Context) error {
	var input *usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	ok, err := h.auth.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return response.Unauthorized(c, "INVALID_CREDENTIALS", "wrong email or password")
	}

	token, err := h.sessions.CreateByEmail(c.Request().Context(), input.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.sessionCookie(token))

	return response.Success(c, http.StatusOK, map[string]string{"email": input.Email}, "Login successful")
}

// Logout handles the session destruction request. The route is excluded from
// the session middleware so the handler validates its own cookie and answers
// 403 when no live session backs it.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return response.Forbidden(c, "SESSION_NOT_FOUND", "no active session")
	}

	user, err := h.auth.CurrentUser(c.Request().Context(), cookie.Value)
	if err != nil {
		return errors.WithStack(err)
	}
	if user == nil {
		return response.Forbidden(c, "SESSION_NOT_FOUND", "no active session")
	}

	if err := h.auth.Logout(c.Request().Context(), user.ID); err != nil {
		return errors.WithStack(err)
	}

	expired := h.sessionCookie("")
	expired.MaxAge = -1
	c.SetCookie(expired)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// Profile returns the authenticated user resolved by the session middleware.
func (h *AuthHandler) Profile(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Forbidden(c, "SESSION_NOT_FOUND", "no active session")
	}

	return response.Success(c, http.StatusOK, userView{ID: user.ID, Email: user.Email}, "Profile retrieved successfully")
}

// RequestPasswordReset issues a reset token for a registered email.
// An unknown email is rejected with 403 so the endpoint cannot be used to
// probe which addresses hold a weak account state.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var input *usecase.ResetRequestInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset request input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	token, err := h.auth.RequestPasswordReset(c.Request().Context(), input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return response.Forbidden(c, "USER_NOT_FOUND", "no user found for this email")
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"email":       input.Email,
		"reset_token": token,
	}, "Reset token generated")
}

// ConfirmPasswordReset redeems a reset token for a new password.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var input *usecase.ResetConfirmInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset confirmation input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.auth.ConfirmPasswordReset(c.Request().Context(), input.ResetToken, input.NewPassword); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password updated")
}

// sessionCookie builds the session cookie with the configured name and lifetime.
func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.sessionDuration > 0 {
		cookie.MaxAge = int(h.sessionDuration / time.Second)
	}

	return cookie
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

// Status reports the API status for unauthenticated clients.
func Status(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "OK"}, "Service is up")
}
