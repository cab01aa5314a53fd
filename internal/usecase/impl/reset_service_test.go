package impl

import (
	"context"
	"log/slog"
	"testing"

	"gatekeeper/config"
	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/infra/auth"
	"gatekeeper/internal/infra/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHasher() service.PasswordHasher {
	return auth.NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})
}

func newResetFixture(t *testing.T) (*resetService, repository.UserRepository, *entity.User) {
	t.Helper()

	repo := memory.NewUserRepository()
	hasher := testHasher()

	digest, err := hasher.Hash("old password")
	require.NoError(t, err)
	user := &entity.User{Email: "a@b.com", HashedPassword: digest}
	require.NoError(t, repo.Create(context.Background(), user))

	svc := &resetService{
		userRepo: repo,
		hasher:   hasher,
		tokens:   &sequenceTokens{},
		logger:   slog.New(slog.DiscardHandler),
	}

	return svc, repo, user
}

func TestResetService_GenerateAndConsume(t *testing.T) {
	svc, repo, user := newResetFixture(t)

	token, err := svc.Generate(context.Background(), user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.Consume(context.Background(), token, "new password"))

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken)
	assert.True(t, svc.hasher.Check("new password", stored.HashedPassword))
	assert.False(t, svc.hasher.Check("old password", stored.HashedPassword))
}

func TestResetService_GenerateUnknownEmail(t *testing.T) {
	svc, _, _ := newResetFixture(t)

	_, err := svc.Generate(context.Background(), "missing@b.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestResetService_GenerateOverwritesPriorToken(t *testing.T) {
	svc, _, user := newResetFixture(t)

	first, err := svc.Generate(context.Background(), user.Email)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), user.Email)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	err = svc.Consume(context.Background(), first, "new password")
	assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)

	require.NoError(t, svc.Consume(context.Background(), second, "new password"))
}

func TestResetService_ConsumeIsSingleUse(t *testing.T) {
	svc, _, user := newResetFixture(t)

	token, err := svc.Generate(context.Background(), user.Email)
	require.NoError(t, err)

	require.NoError(t, svc.Consume(context.Background(), token, "new password"))

	err = svc.Consume(context.Background(), token, "another password")
	assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)
}

func TestResetService_ConsumeInvalidTokens(t *testing.T) {
	svc, _, _ := newResetFixture(t)

	tests := []struct {
		name  string
		token string
	}{
		{"Empty token", ""},
		{"Unknown token", "never-issued"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Consume(context.Background(), tt.token, "new password")
			assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)
		})
	}
}
