package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Donation errors
var (
	ErrInvalidDonationStatus = errors.New("invalid donation status")
	ErrInvalidAmount         = errors.New("donation amount must be positive")
	ErrReceiptAlreadySent    = errors.New("receipt already sent")
	ErrLockHeld              = errors.New("resource is locked by another request")
)

// CredentialError reports malformed credential material such as an
// unparsable password hash. A password mismatch is never a CredentialError.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential error: %v", e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failure from the storage layer
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotificationError wraps a failed notification dispatch
type NotificationError struct {
	Address string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification to %s failed: %v", e.Address, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
