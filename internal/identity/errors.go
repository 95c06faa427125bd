package identity

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no account matches the lookup.
var ErrNotFound = errors.New("identity account not found")

// ErrAlreadyExists indicates an account with the email is already registered.
var ErrAlreadyExists = errors.New("identity account already exists")

// ErrInvalidToken indicates the bearer token failed verification.
var ErrInvalidToken = errors.New("invalid identity token")

// ErrExpiredToken indicates the bearer token has expired.
var ErrExpiredToken = errors.New("expired identity token")

// ErrRevokedToken indicates the bearer token has been revoked.
var ErrRevokedToken = errors.New("revoked identity token")

// UpstreamError represents a provider failure outside the known taxonomy.
type UpstreamError struct {
	StatusCode int
	Code       string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider error: HTTP %d (%s)", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("identity provider error: HTTP %d", e.StatusCode)
}
