package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finman/internal/core"
)

// CreateUser inserts a user row and returns the populated record.
// A duplicate username yields ErrDuplicate with no partial write.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, email string) (*core.User, error) {
	createdAt := time.Now().UTC().Truncate(time.Second)

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, email, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		username, passwordHash, email, createdAt.Format(core.TimeLayout),
	).Scan(&id)
	if err != nil {
		if isConstraintErr(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &core.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		CreatedAt:    createdAt,
	}, nil
}

// GetUserByUsername loads a user by exact (case-sensitive) username.
// Returns (nil, nil) when no such user exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	var (
		u         core.User
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	u.CreatedAt, err = time.ParseInLocation(core.TimeLayout, createdAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse user created_at %q: %w", createdAt, err)
	}
	return &u, nil
}

// UserExists reports username presence independent of the password.
func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, username,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return true, nil
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// DeleteUser removes a user; owned transactions cascade. This is an
// administrative operation with no UI surface.
func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user rows affected: %w", err)
	}
	return n > 0, nil
}
