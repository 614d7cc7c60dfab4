package password

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// Cost is the fixed bcrypt cost used for every principal
	Cost = 10

	// MinLength is the minimum accepted plaintext length at the HTTP boundary
	MinLength = 8

	// MaxLength is the bcrypt input limit in bytes
	MaxLength = 72
)

// Hash hashes a password using bcrypt with a fresh random salt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Compare compares a password with a hash.
// A mismatch returns false with a nil error; a malformed hash returns the
// underlying bcrypt error.
func Compare(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// IsHash reports whether s parses as a bcrypt hash
func IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// HashToken hashes a token using SHA256 (for refresh tokens)
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidatePassword checks if password meets requirements
func ValidatePassword(password string) bool {
	return len(password) >= MinLength && len(password) <= MaxLength
}
