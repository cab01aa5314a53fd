package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatekeeper/config"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/infra/auth"
	"gatekeeper/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth resolves a single known session token.
type fakeAuth struct {
	token string
	user  *entity.User
}

func (f *fakeAuth) Register(context.Context, *usecase.RegisterInput) (*entity.User, error) {
	return nil, nil
}

func (f *fakeAuth) Login(context.Context, *usecase.LoginInput) (bool, error) {
	return false, nil
}

func (f *fakeAuth) CurrentUser(_ context.Context, token string) (*entity.User, error) {
	if token == f.token {
		return f.user, nil
	}

	return nil, nil
}

func (f *fakeAuth) Logout(context.Context, int64) error { return nil }

func (f *fakeAuth) RequestPasswordReset(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeAuth) ConfirmPasswordReset(context.Context, string, string) error {
	return nil
}

func newMiddlewareFixture(t *testing.T) (*SessionMiddleware, *entity.User) {
	t.Helper()

	cfg := &config.Config{Auth: &config.AuthConfig{
		SessionCookieName: "session_id",
		PublicPaths:       []string{"/health/", "/sessions/"},
	}}
	user := &entity.User{ID: 7, Email: "a@b.com"}
	authUC := &fakeAuth{token: "live-token", user: user}

	return NewSessionMiddleware(auth.NewRouteGuard(cfg), authUC, cfg, slog.New(slog.DiscardHandler)), user
}

func doRequest(t *testing.T, m *SessionMiddleware, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, *entity.User) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *entity.User
	handler := m.Authenticate(func(c echo.Context) error {
		seen = CurrentUser(c)

		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	return rec, seen
}

func TestSessionMiddleware_PublicPathBypasses(t *testing.T) {
	m, _ := newMiddlewareFixture(t)

	rec, seen := doRequest(t, m, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)
}

func TestSessionMiddleware_MissingCookie(t *testing.T) {
	m, _ := newMiddlewareFixture(t)

	rec, _ := doRequest(t, m, "/profile", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionMiddleware_UnknownToken(t *testing.T) {
	m, _ := newMiddlewareFixture(t)

	rec, _ := doRequest(t, m, "/profile", &http.Cookie{Name: "session_id", Value: "stale"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionMiddleware_LiveSession(t *testing.T) {
	m, user := newMiddlewareFixture(t)

	rec, seen := doRequest(t, m, "/profile", &http.Cookie{Name: "session_id", Value: "live-token"})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}
