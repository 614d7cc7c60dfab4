package services

import (
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/password"
)

// CredentialStore hashes and verifies principal passwords and holds the
// phone-verification state of administrators. It performs no I/O.
type CredentialStore struct{}

// NewCredentialStore creates a new credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// HashPassword returns a salted bcrypt hash; two calls never return the same hash.
// Plaintext bcrypt cannot take (over 72 bytes) is a CredentialError.
func (s *CredentialStore) HashPassword(plaintext string) (string, error) {
	hash, err := password.Hash(plaintext)
	if err != nil {
		return "", &domain.CredentialError{Err: err}
	}
	return hash, nil
}

// VerifyPassword reports whether plaintext matches hash.
// Only a malformed hash is an error; a mismatch is (false, nil).
func (s *CredentialStore) VerifyPassword(plaintext, hash string) (bool, error) {
	ok, err := password.Compare(plaintext, hash)
	if err != nil {
		return false, &domain.CredentialError{Err: err}
	}
	return ok, nil
}

// SetPassword replaces the principal's password hash.
// Passing the current hash back in is treated as "unchanged" and never re-hashed.
func (s *CredentialStore) SetPassword(p models.Principal, plaintext string) error {
	if plaintext != "" && plaintext == p.GetPasswordHash() {
		return nil
	}

	hash, err := s.HashPassword(plaintext)
	if err != nil {
		return err
	}
	p.SetPasswordHash(hash)
	return nil
}

// Authenticate verifies plaintext against the principal's stored hash
func (s *CredentialStore) Authenticate(p models.Principal, plaintext string) (bool, error) {
	return s.VerifyPassword(plaintext, p.GetPasswordHash())
}

// SetPhoneVerificationCode stores a pending code and resets the attempt counter
func (s *CredentialStore) SetPhoneVerificationCode(admin *models.Admin, code string, expiresAt time.Time) {
	admin.PhoneVerificationCode = &code
	admin.PhoneCodeExpiresAt = &expiresAt
	admin.PhoneCodeAttempts = 0
}

// MarkPhoneVerified flags the phone as verified and clears any pending code
func (s *CredentialStore) MarkPhoneVerified(admin *models.Admin) {
	admin.IsPhoneVerified = true
	admin.PhoneVerificationCode = nil
	admin.PhoneCodeExpiresAt = nil
	admin.PhoneCodeAttempts = 0
}
