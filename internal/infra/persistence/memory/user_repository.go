// Package memory contains an in-memory implementation of the persistence layer.
// It backs unit tests and storage-free development runs with the same contract
// as the PostgreSQL repository, including single-record atomicity under
// concurrent access.
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"

	"github.com/pkg/errors"
)

// userRepository implements repository.UserRepository over a mutex-guarded map.
// Entities are copied on every read and write so callers never share mutable
// state with the store.
type userRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*entity.User
}

// NewUserRepository is the constructor for the in-memory userRepository.
func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[int64]*entity.User)}
}

// FindOne retrieves the single user matching all attribute equalities in the predicate.
func (repo *userRepository) FindOne(_ context.Context, predicate repository.Fields) (*entity.User, error) {
	if err := predicate.Validate(); err != nil {
		return nil, err
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, user := range repo.users {
		if matches(user, predicate) {
			return clone(user), nil
		}
	}

	return nil, repository.ErrUserNotFound
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return repo.FindOne(ctx, repository.Fields{repository.AttrID: id})
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.FindOne(ctx, repository.Fields{repository.AttrEmail: email})
}

// FindBySessionToken retrieves the user owning the given session token.
func (repo *userRepository) FindBySessionToken(ctx context.Context, token string) (*entity.User, error) {
	return repo.FindOne(ctx, repository.Fields{repository.AttrSessionToken: token})
}

// FindByResetToken retrieves the user owning the given password-reset token.
func (repo *userRepository) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	return repo.FindOne(ctx, repository.Fields{repository.AttrResetToken: token})
}

// Create persists a new user. A duplicate email is rejected here even though
// the facade pre-checks, mirroring the unique index of the SQL schema.
func (repo *userRepository) Create(_ context.Context, user *entity.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.users {
		if existing.Email == user.Email {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
	}

	repo.nextID++
	now := time.Now()
	user.ID = repo.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	repo.users[user.ID] = clone(user)

	return nil
}

// UpdateFields applies a partial update to the user with the given ID.
// All changes are applied under one critical section, so a concurrent read
// observes either none or all of them.
func (repo *userRepository) UpdateFields(_ context.Context, id int64, changes repository.Fields) error {
	if err := changes.Validate(); err != nil {
		return err
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	updated := clone(user)
	for attr, value := range changes {
		if err := apply(updated, attr, value); err != nil {
			return err
		}
	}
	updated.UpdatedAt = time.Now()
	repo.users[id] = updated

	return nil
}

// matches reports whether the user satisfies every equality in the predicate.
func matches(user *entity.User, predicate repository.Fields) bool {
	for attr, value := range predicate {
		switch attr {
		case repository.AttrID:
			id, ok := asInt64(value)
			if !ok || id != user.ID {
				return false
			}
		case repository.AttrEmail:
			email, ok := value.(string)
			if !ok || email != user.Email {
				return false
			}
		case repository.AttrHashedPassword:
			digest, ok := value.([]byte)
			if !ok || !bytes.Equal(digest, user.HashedPassword) {
				return false
			}
		case repository.AttrSessionToken:
			if !matchesOptString(user.SessionToken, value) {
				return false
			}
		case repository.AttrResetToken:
			if !matchesOptString(user.ResetToken, value) {
				return false
			}
		case repository.AttrSessionCreatedAt:
			if !matchesOptTime(user.SessionCreatedAt, value) {
				return false
			}
		}
	}

	return true
}

// apply sets one attribute on the user copy. Attribute names were already
// validated, so an unhandled attribute here is a programming error.
func apply(user *entity.User, attr string, value any) error {
	switch attr {
	case repository.AttrEmail:
		email, ok := value.(string)
		if !ok {
			return errors.Errorf("email must be a string, got %T", value)
		}
		user.Email = email
	case repository.AttrHashedPassword:
		digest, ok := value.([]byte)
		if !ok {
			return errors.Errorf("hashed_password must be []byte, got %T", value)
		}
		user.HashedPassword = digest
	case repository.AttrSessionToken:
		token, err := asOptString(value)
		if err != nil {
			return errors.Wrap(err, "session_token")
		}
		user.SessionToken = token
	case repository.AttrResetToken:
		token, err := asOptString(value)
		if err != nil {
			return errors.Wrap(err, "reset_token")
		}
		user.ResetToken = token
	case repository.AttrSessionCreatedAt:
		instant, err := asOptTime(value)
		if err != nil {
			return errors.Wrap(err, "session_created_at")
		}
		user.SessionCreatedAt = instant
	case repository.AttrID:
		return errors.Wrap(repository.ErrUnknownAttribute, "id is immutable")
	}

	return nil
}

func clone(user *entity.User) *entity.User {
	copied := *user
	if user.SessionToken != nil {
		token := *user.SessionToken
		copied.SessionToken = &token
	}
	if user.SessionCreatedAt != nil {
		instant := *user.SessionCreatedAt
		copied.SessionCreatedAt = &instant
	}
	if user.ResetToken != nil {
		token := *user.ResetToken
		copied.ResetToken = &token
	}
	if user.HashedPassword != nil {
		copied.HashedPassword = append([]byte(nil), user.HashedPassword...)
	}

	return &copied
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func asOptString(value any) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case *string:
		return v, nil
	default:
		return nil, errors.Errorf("expected string or nil, got %T", value)
	}
}

func asOptTime(value any) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case *time.Time:
		return v, nil
	default:
		return nil, errors.Errorf("expected time.Time or nil, got %T", value)
	}
}

func matchesOptString(field *string, value any) bool {
	switch v := value.(type) {
	case nil:
		return field == nil
	case string:
		return field != nil && *field == v
	case *string:
		if v == nil {
			return field == nil
		}

		return field != nil && *field == *v
	default:
		return false
	}
}

func matchesOptTime(field *time.Time, value any) bool {
	switch v := value.(type) {
	case nil:
		return field == nil
	case time.Time:
		return field != nil && field.Equal(v)
	case *time.Time:
		if v == nil {
			return field == nil
		}

		return field != nil && field.Equal(*v)
	default:
		return false
	}
}
