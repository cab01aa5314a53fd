// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"gatekeeper/internal/domain/entity"
)

// Domain-specific errors for user persistence.
// This allows the application layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownAttribute is returned when a predicate or update targets a field
	// the user record does not have. This is a programmer error, never a silent miss.
	ErrUnknownAttribute = errors.New("unknown user attribute")
)

// Attribute names accepted in Fields predicates and updates.
// They mirror the columns of the users table.
const (
	AttrID               = "id"
	AttrEmail            = "email"
	AttrHashedPassword   = "hashed_password"
	AttrSessionToken     = "session_token"
	AttrSessionCreatedAt = "session_created_at"
	AttrResetToken       = "reset_token"
)

var knownAttributes = map[string]struct{}{
	AttrID:               {},
	AttrEmail:            {},
	AttrHashedPassword:   {},
	AttrSessionToken:     {},
	AttrSessionCreatedAt: {},
	AttrResetToken:       {},
}

// Fields is an attribute-keyed map used both as an equality predicate for
// FindOne and as a partial change set for UpdateFields.
type Fields map[string]any

// Validate checks every key against the known attribute vocabulary.
// An empty Fields is also rejected: a lookup or update that constrains
// nothing would match or touch the wrong records.
func (f Fields) Validate() error {
	if len(f) == 0 {
		return ErrUnknownAttribute
	}
	for key := range f {
		if _, ok := knownAttributes[key]; !ok {
			return ErrUnknownAttribute
		}
	}

	return nil
}

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
// All operations are atomic with respect to a single record.
type UserRepository interface {
	// FindOne retrieves the single user matching all attribute equalities in the
	// predicate. It returns ErrUserNotFound when no user matches and
	// ErrUnknownAttribute when the predicate is structurally invalid.
	FindOne(ctx context.Context, predicate Fields) (*entity.User, error)

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindBySessionToken retrieves the user owning the given session token.
	FindBySessionToken(ctx context.Context, token string) (*entity.User, error)

	// FindByResetToken retrieves the user owning the given password-reset token.
	FindByResetToken(ctx context.Context, token string) (*entity.User, error)

	// Create persists a new user entity to the storage. A duplicate email is
	// rejected at the storage layer even though callers pre-check.
	Create(ctx context.Context, user *entity.User) error

	// UpdateFields applies a partial update to the user with the given ID,
	// all changes landing together. It returns ErrUnknownAttribute for a change
	// outside the attribute vocabulary and ErrUserNotFound for a missing user.
	UpdateFields(ctx context.Context, id int64, changes Fields) error
}
