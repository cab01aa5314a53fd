package memory

import (
	"context"
	"testing"
	"time"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, repo repository.UserRepository, email string) *entity.User {
	t.Helper()

	user := &entity.User{Email: email, HashedPassword: []byte("digest")}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotZero(t, user.ID)

	return user
}

func TestUserRepository_CreateAssignsIdentity(t *testing.T) {
	repo := NewUserRepository()

	first := newUser(t, repo, "a@b.com")
	second := newUser(t, repo, "c@d.com")

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestUserRepository_CreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	newUser(t, repo, "a@b.com")

	err := repo.Create(context.Background(), &entity.User{Email: "a@b.com"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrUserAlreadyExists.ErrorCode(), appErr.ErrorCode())
}

func TestUserRepository_FindOne(t *testing.T) {
	repo := NewUserRepository()
	created := newUser(t, repo, "a@b.com")

	found, err := repo.FindOne(context.Background(), repository.Fields{
		repository.AttrEmail: "a@b.com",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindOne(context.Background(), repository.Fields{
		repository.AttrEmail: "missing@b.com",
	})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_FindOne_UnknownAttribute(t *testing.T) {
	repo := NewUserRepository()

	_, err := repo.FindOne(context.Background(), repository.Fields{"favorite_color": "blue"})
	assert.ErrorIs(t, err, repository.ErrUnknownAttribute)

	_, err = repo.FindOne(context.Background(), repository.Fields{})
	assert.ErrorIs(t, err, repository.ErrUnknownAttribute)
}

func TestUserRepository_FindBySessionToken(t *testing.T) {
	repo := NewUserRepository()
	created := newUser(t, repo, "a@b.com")

	require.NoError(t, repo.UpdateFields(context.Background(), created.ID, repository.Fields{
		repository.AttrSessionToken: "tok-1",
	}))

	found, err := repo.FindBySessionToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindBySessionToken(context.Background(), "tok-2")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	repo := NewUserRepository()
	created := newUser(t, repo, "a@b.com")
	issuedAt := time.Now()

	err := repo.UpdateFields(context.Background(), created.ID, repository.Fields{
		repository.AttrSessionToken:     "tok-1",
		repository.AttrSessionCreatedAt: issuedAt,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, found.SessionToken)
	assert.Equal(t, "tok-1", *found.SessionToken)
	require.NotNil(t, found.SessionCreatedAt)
	assert.True(t, found.SessionCreatedAt.Equal(issuedAt))
}

func TestUserRepository_UpdateFields_ClearsWithNil(t *testing.T) {
	repo := NewUserRepository()
	created := newUser(t, repo, "a@b.com")

	require.NoError(t, repo.UpdateFields(context.Background(), created.ID, repository.Fields{
		repository.AttrSessionToken:     "tok-1",
		repository.AttrSessionCreatedAt: time.Now(),
	}))
	require.NoError(t, repo.UpdateFields(context.Background(), created.ID, repository.Fields{
		repository.AttrSessionToken:     nil,
		repository.AttrSessionCreatedAt: nil,
	}))

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, found.SessionToken)
	assert.Nil(t, found.SessionCreatedAt)
}

func TestUserRepository_UpdateFields_UnknownUser(t *testing.T) {
	repo := NewUserRepository()

	err := repo.UpdateFields(context.Background(), 42, repository.Fields{
		repository.AttrEmail: "a@b.com",
	})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_UpdateFields_UnknownAttribute(t *testing.T) {
	repo := NewUserRepository()
	created := newUser(t, repo, "a@b.com")

	err := repo.UpdateFields(context.Background(), created.ID, repository.Fields{
		"favorite_color": "blue",
	})
	assert.ErrorIs(t, err, repository.ErrUnknownAttribute)

	// The failed update must not leave partial state behind.
	found, findErr := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, findErr)
	assert.Equal(t, "a@b.com", found.Email)
}

func TestUserRepository_ReadsAreCopies(t *testing.T) {
	repo := NewUserRepository()
	created := newUser(t, repo, "a@b.com")

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	found.Email = "mutated@b.com"

	again, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", again.Email)
}
