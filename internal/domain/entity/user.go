// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// User is the single durable record of the system: one account, its credential
// digest, and the tokens of its current session and pending password reset.
type User struct {
	ID               int64      // Unique numeric identifier, generated by the storage layer.
	Email            string     // Login identifier; unique across all live users (case-sensitive).
	HashedPassword   []byte     // Salted bcrypt digest. The plaintext is never stored or logged.
	SessionToken     *string    // Opaque token of the active session, nil when logged out. At most one per user.
	SessionCreatedAt *time.Time // Instant the active session was issued; nil when no session exists.
	ResetToken       *string    // Opaque single-use password-reset token, nil when none is pending.
	CreatedAt        time.Time  // Timestamp of when this account was created.
	UpdatedAt        time.Time  // Timestamp of the last modification to this record.
}

// HasSession reports whether the user currently carries a session token.
func (u *User) HasSession() bool {
	return u != nil && u.SessionToken != nil && *u.SessionToken != ""
}
