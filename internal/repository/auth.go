// Package repository provides persistence implementations for users and
// to-do items on top of database/sql.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresAuthRepository implements user persistence using a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists checks whether a user with the specified username exists in the database.
func (r *PostgresAuthRepository) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a new user. A duplicate username yields ErrUserExists.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, user models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Username, user.PasswordHash,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrUserExists
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUserByUsername fetches a user by username. It returns ErrNotFound if
// there is no such user.
func (r *PostgresAuthRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return &user, nil
}
