// Package auth implements the local credential store: password hashing and
// the email/password check performed against the gateway's own user mirror.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clarityhq/authgate/internal/config"
	"github.com/clarityhq/authgate/internal/database/users"
	"github.com/clarityhq/authgate/internal/entities"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository defines the persistence operations the service needs.
type UserRepository interface {
	Create(user *entities.User) error
	GetByEmail(email string) (*entities.User, error)
}

// Service handles local user creation and credential checks.
type Service struct {
	repo   UserRepository
	config config.Auth
}

// NewService creates a new credential service.
func NewService(repo UserRepository, cfg config.Auth) *Service {
	return &Service{
		repo:   repo,
		config: cfg,
	}
}

// NormalizeEmail lower-cases and trims an email address. All lookups and
// stored records use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates the local mirror record for an account. The password
// is hashed independently of the identity provider's copy. New users are
// active; staff and superuser flags are only set by administrative flows.
func (s *Service) CreateUser(email, password, name, externalUID string) (*entities.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.repo.GetByEmail(email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Email:        email,
		ExternalUID:  externalUID,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CheckCredentials verifies an email/password pair against the local store.
// A lookup miss and a hash mismatch are the same failure: the caller learns
// nothing about which half was wrong.
func (s *Service) CheckCredentials(email, password string) (*entities.User, error) {
	user, err := s.repo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}
