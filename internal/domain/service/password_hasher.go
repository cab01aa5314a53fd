// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted digest from a plaintext password.
	// The same password hashes to a different digest on every call.
	Hash(password string) ([]byte, error)

	// Check compares a plaintext password with a stored digest in constant time.
	// Any mismatch, including a malformed digest, is reported as false rather
	// than an error so bad credentials never leak through error paths.
	Check(password string, digest []byte) bool
}
