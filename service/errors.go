package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	ErrEventNotFound       = errors.New("event not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrApplicationNotFound = errors.New("application not found")

	ErrEmailTaken     = errors.New("email already registered")
	ErrAlreadyApplied = errors.New("application already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidToken          = errors.New("invalid token")
	ErrExpiredToken          = errors.New("expired token")
	ErrRevokedToken          = errors.New("revoked token")
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	ErrUnknownSubject        = errors.New("unknown subject")

	// ErrPersistence wraps store I/O failures. Every mutating step is
	// idempotent, so callers may retry the whole operation.
	ErrPersistence = errors.New("persistence failure")
)

// PartialFailureError reports that a compensating action itself failed,
// leaving the user and event documents inconsistent. It is never collapsed
// into ErrPersistence: the caller must know reconciliation is needed.
type PartialFailureError struct {
	Op           string
	Cause        error
	Compensation error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: compensation failed: %v (after: %v)", e.Op, e.Compensation, e.Cause)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Cause
}
