package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/todokeeper/internal/models"
)

// PostgresTodoRepository implements to-do persistence. Every statement is
// filtered by the owning user's ID.
type PostgresTodoRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTodoRepository creates a new PostgresTodoRepository using the provided *sql.DB.
func NewPostgresTodoRepository(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{DB: db}
}

// ListByUser returns all items owned by userID in creation order.
// The result is never nil.
func (r *PostgresTodoRepository) ListByUser(ctx context.Context, userID string) ([]models.Todo, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, done, user_id FROM todos WHERE user_id = $1 ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Done, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return todos, nil
}

// Create inserts a new item.
func (r *PostgresTodoRepository) Create(ctx context.Context, todo models.Todo) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO todos (id, user_id, title, done, created_at) VALUES ($1, $2, $3, $4, $5)
	`, todo.ID, todo.UserID, todo.Title, todo.Done, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetByID fetches a single item owned by userID. It returns ErrNotFound when
// the item does not exist or belongs to someone else.
func (r *PostgresTodoRepository) GetByID(ctx context.Context, userID, id string) (*models.Todo, error) {
	var t models.Todo
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, title, done, user_id FROM todos WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&t.ID, &t.Title, &t.Done, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &t, nil
}

// Update saves title and done of an existing item owned by todo.UserID.
func (r *PostgresTodoRepository) Update(ctx context.Context, todo models.Todo) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE todos SET title = $1, done = $2 WHERE id = $3 AND user_id = $4
	`, todo.Title, todo.Done, todo.ID, todo.UserID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

// Delete removes the item with the given ID if it is owned by userID.
// Deleting a missing item is not an error.
func (r *PostgresTodoRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}
