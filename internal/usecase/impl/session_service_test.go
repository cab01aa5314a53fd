package impl

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/infra/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceTokens hands out deterministic tokens for tests.
type sequenceTokens struct {
	next int
}

func (s *sequenceTokens) NewToken() string {
	s.next++

	return fmt.Sprintf("token-%d", s.next)
}

// testClock is a settable clock injected as the session service's now func.
type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newSessionFixture(t *testing.T, duration time.Duration) (*sessionService, repository.UserRepository, *testClock, *entity.User) {
	t.Helper()

	repo := memory.NewUserRepository()
	user := &entity.User{Email: "a@b.com", HashedPassword: []byte("digest")}
	require.NoError(t, repo.Create(context.Background(), user))

	clock := &testClock{current: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := &sessionService{
		userRepo: repo,
		tokens:   &sequenceTokens{},
		duration: duration,
		now:      clock.Now,
		logger:   slog.New(slog.DiscardHandler),
		meta:     make(map[string]sessionMeta),
	}

	return svc, repo, clock, user
}

func TestSessionService_CreateAndResolve(t *testing.T) {
	svc, repo, _, user := newSessionFixture(t, 0)

	token, err := svc.Create(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)

	// The token and its creation instant land on the record together.
	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SessionToken)
	assert.Equal(t, token, *stored.SessionToken)
	assert.NotNil(t, stored.SessionCreatedAt)
}

func TestSessionService_CreateUnknownUser(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t, 0)

	_, err := svc.Create(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestSessionService_CreateByEmail(t *testing.T) {
	svc, _, _, user := newSessionFixture(t, 0)

	token, err := svc.CreateByEmail(context.Background(), user.Email)
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.CreateByEmail(context.Background(), "missing@b.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestSessionService_ResolveMisses(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t, 0)

	tests := []struct {
		name  string
		token string
	}{
		{"Empty token", ""},
		{"Unknown token", "never-issued"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Resolve(context.Background(), tt.token)
			require.NoError(t, err)
			assert.Nil(t, user)
		})
	}
}

func TestSessionService_Expiry(t *testing.T) {
	duration := 5 * time.Second

	tests := []struct {
		name    string
		elapsed time.Duration
		alive   bool
	}{
		{"Well within lifetime", 4 * time.Second, true},
		{"Exactly at lifetime", 5 * time.Second, false},
		{"Past lifetime", 6 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, clock, user := newSessionFixture(t, duration)

			token, err := svc.Create(context.Background(), user.ID)
			require.NoError(t, err)

			clock.Advance(tt.elapsed)

			resolved, err := svc.Resolve(context.Background(), token)
			require.NoError(t, err)
			if tt.alive {
				require.NotNil(t, resolved)
				assert.Equal(t, user.ID, resolved.ID)
			} else {
				assert.Nil(t, resolved)
			}
		})
	}
}

func TestSessionService_ZeroDurationNeverExpires(t *testing.T) {
	svc, _, clock, user := newSessionFixture(t, 0)

	token, err := svc.Create(context.Background(), user.ID)
	require.NoError(t, err)

	clock.Advance(1000 * time.Hour)

	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSessionService_MissingCreationInstantIsInvalid(t *testing.T) {
	svc, repo, _, user := newSessionFixture(t, 5*time.Second)

	// A token persisted without its creation instant cannot be aged.
	require.NoError(t, repo.UpdateFields(context.Background(), user.ID, repository.Fields{
		repository.AttrSessionToken: "orphan-token",
	}))

	resolved, err := svc.Resolve(context.Background(), "orphan-token")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestSessionService_ResolveRebuildsCacheFromStore(t *testing.T) {
	svc, _, clock, user := newSessionFixture(t, 10*time.Second)

	token, err := svc.Create(context.Background(), user.ID)
	require.NoError(t, err)

	// Simulate a restart: the in-process cache is gone, the store is not.
	svc.meta = make(map[string]sessionMeta)

	clock.Advance(4 * time.Second)
	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved)

	clock.Advance(10 * time.Second)
	resolved, err = svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestSessionService_CreateOverwritesPriorSession(t *testing.T) {
	svc, _, _, user := newSessionFixture(t, 0)

	first, err := svc.Create(context.Background(), user.ID)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	resolved, err := svc.Resolve(context.Background(), first)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	resolved, err = svc.Resolve(context.Background(), second)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSessionService_Destroy(t *testing.T) {
	svc, repo, _, user := newSessionFixture(t, 0)

	token, err := svc.Create(context.Background(), user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(context.Background(), user.ID))

	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SessionToken)
	assert.Nil(t, stored.SessionCreatedAt)
}

func TestSessionService_DestroyIsIdempotent(t *testing.T) {
	svc, _, _, user := newSessionFixture(t, 0)

	// No session yet, destroying is a no-op.
	require.NoError(t, svc.Destroy(context.Background(), user.ID))

	// Unknown users are a no-op as well.
	require.NoError(t, svc.Destroy(context.Background(), 999))

	_, err := svc.Create(context.Background(), user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Destroy(context.Background(), user.ID))
	require.NoError(t, svc.Destroy(context.Background(), user.ID))
}
