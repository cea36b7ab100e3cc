package auth

import (
	"errors"
	"fmt"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthRequired       = errors.New("authentication required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrActorMismatch      = errors.New("request acts for a different user than the session")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetUserByUsername(username string) (*entities.User, error)
}

// Service checks credentials against stored password hashes.
type Service struct {
	users  UserRepository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(users UserRepository, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		config: cfg,
	}
}

// HashPassword hashes a new account password with the configured cost.
// In local mode a password is mandatory.
func (s *Service) HashPassword(password string) (string, error) {
	if password == "" {
		if s.IsAuthEnabled() {
			return "", ErrPasswordRequired
		}
		return "", nil
	}
	return HashPassword(password, s.config.BcryptCost)
}

// Authenticate validates credentials and returns the user. Unknown users,
// accounts without a password and wrong passwords all fail the same way.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}

// UserExists reports whether the account behind a session still exists.
func (s *Service) UserExists(username string) (bool, error) {
	_, err := s.users.GetUserByUsername(username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, users.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// GetAuthMode returns the current authentication mode.
func (s *Service) GetAuthMode() config.AuthMode {
	return s.config.Mode
}
