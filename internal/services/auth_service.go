// Package services implements the application contracts on top of the
// storage layer: credential handling, the ledger, filtered queries, and
// aggregate statistics. Expected failures come back as sentinel values
// or booleans, never as panics, and faults are logged on the way out.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"finman/internal/core"
	"finman/internal/storage"
)

// ErrUsernameTaken reports a registration against an existing username.
var ErrUsernameTaken = errors.New("username already taken")

// AuthService is the credential store: it hashes and verifies passwords
// and manages the user record.
type AuthService struct {
	store      *storage.Store
	bcryptCost int
}

func NewAuthService(store *storage.Store, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, bcryptCost: bcryptCost}
}

// Register creates a user with a bcrypt-hashed password and returns the
// stored record. A duplicate username yields ErrUsernameTaken with no
// partial write.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*core.User, error) {
	if username == "" {
		return nil, core.ErrEmptyUsername
	}
	if password == "" {
		return nil, errors.New("empty password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, string(hash), email)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate verifies a username/password pair. A missing user or a
// wrong password both return (nil, nil); errors are reserved for storage
// faults.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*core.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

// Exists reports username presence independent of the password.
func (s *AuthService) Exists(ctx context.Context, username string) (bool, error) {
	return s.store.UserExists(ctx, username)
}
