// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindOne retrieves the single user matching all attribute equalities in the predicate.
// The predicate is validated against the attribute vocabulary before it reaches
// the database, so a misspelled attribute fails loudly instead of matching nothing.
func (repo *userRepository) FindOne(ctx context.Context, predicate repository.Fields) (*entity.User, error) {
	if err := predicate.Validate(); err != nil {
		return nil, err
	}

	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where(map[string]any(predicate)).
		First(&userM).Error

	if err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		// Otherwise, return the original database error.
		return nil, errors.Wrap(err, "failed to find user")
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
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

// Create persists a new user entity to the database. The unique index on email
// backs the registration pre-check, so a racing duplicate still fails here.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}
		// For other database errors, return a generic database error
		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// UpdateFields applies a partial update to the user with the given ID.
// All changes land in one UPDATE statement, so callers that pair changes
// (e.g. new password hash + cleared reset token) get them atomically.
func (repo *userRepository) UpdateFields(ctx context.Context, id int64, changes repository.Fields) error {
	if err := changes.Validate(); err != nil {
		return err
	}

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any(changes))

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.NewDatabaseExecuteError(result.Error, "unique constraint violated during user update")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}

	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:               data.ID,
		Email:            data.Email,
		HashedPassword:   data.HashedPassword,
		SessionToken:     data.SessionToken,
		SessionCreatedAt: data.SessionCreatedAt,
		ResetToken:       data.ResetToken,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:               data.ID,
		Email:            data.Email,
		HashedPassword:   data.HashedPassword,
		SessionToken:     data.SessionToken,
		SessionCreatedAt: data.SessionCreatedAt,
		ResetToken:       data.ResetToken,
	}
}
