// Package service provides the business logic for user registration,
// credential login and per-user to-do management, delegating persistence to
// repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/atinyakov/todokeeper/internal/repository"
	"github.com/google/uuid"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// UserExists returns true if a user with the given username exists.
	UserExists(ctx context.Context, username string) (bool, error)
	// CreateUser persists a new user record.
	CreateUser(ctx context.Context, user models.User) error
	// GetUserByUsername returns repository.ErrNotFound for unknown usernames.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// TokenIssuer turns an authenticated user ID into a session token.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService implements signup and signin.
type AuthService struct {
	repo   AuthRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthService constructs a new AuthService from its collaborators.
func NewAuthService(repo AuthRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

// Signup registers a new user. It fails with ErrUsernameTaken if the username
// is already in use, leaving the existing record untouched.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidArguments
	}

	exists, err := s.repo.UserExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// Signin checks the credentials and issues a session token. Unknown
// usernames and wrong passwords both yield ErrLoginFailed.
func (s *AuthService) Signin(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrLoginFailed
	}
	if err != nil {
		return nil, "", err
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, "", ErrLoginFailed
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}
