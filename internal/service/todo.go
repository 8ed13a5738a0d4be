package service

import (
	"context"
	"errors"

	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/atinyakov/todokeeper/internal/repository"
	"github.com/google/uuid"
)

// TodoRepository defines the persistence operations needed by the TodoService.
// Every method is scoped to a single owner.
type TodoRepository interface {
	// ListByUser returns all items owned by userID.
	ListByUser(ctx context.Context, userID string) ([]models.Todo, error)
	// Create inserts a new item.
	Create(ctx context.Context, todo models.Todo) error
	// GetByID fetches an item owned by userID or returns repository.ErrNotFound.
	GetByID(ctx context.Context, userID, id string) (*models.Todo, error)
	// Update saves an existing item owned by todo.UserID.
	Update(ctx context.Context, todo models.Todo) error
	// Delete removes an item owned by userID.
	Delete(ctx context.Context, userID, id string) error
}

// TodoService implements to-do operations for the authenticated user.
// Each operation returns the caller's full list afterwards.
type TodoService struct {
	repo TodoRepository
}

// NewTodoService constructs a TodoService with the provided TodoRepository.
func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

// Create adds an item owned by userID. The ID is generated here; any
// client-supplied ID or owner is ignored.
func (s *TodoService) Create(ctx context.Context, userID, title string, done bool) ([]models.Todo, error) {
	if userID == "" {
		return nil, ErrUnknownUser
	}
	if title == "" {
		return nil, ErrTitleRequired
	}

	todo := models.Todo{
		ID:     uuid.NewString(),
		Title:  title,
		Done:   done,
		UserID: userID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

// Retrieve returns all items owned by userID.
func (s *TodoService) Retrieve(ctx context.Context, userID string) ([]models.Todo, error) {
	if userID == "" {
		return nil, ErrUnknownUser
	}
	return s.repo.ListByUser(ctx, userID)
}

// Update overwrites title and done of the item with in.ID owned by userID.
// A missing item is silently ignored.
func (s *TodoService) Update(ctx context.Context, userID string, in models.TodoDTO) ([]models.Todo, error) {
	if userID == "" {
		return nil, ErrUnknownUser
	}
	if in.ID == "" {
		return nil, ErrIDRequired
	}

	original, err := s.repo.GetByID(ctx, userID, in.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.repo.ListByUser(ctx, userID)
	case err != nil:
		return nil, err
	}

	updated := *original
	updated.Title = in.Title
	updated.Done = in.Done
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes the item with id owned by userID. A missing item is
// silently ignored.
func (s *TodoService) Delete(ctx context.Context, userID, id string) ([]models.Todo, error) {
	if userID == "" {
		return nil, ErrUnknownUser
	}
	if id == "" {
		return nil, ErrIDRequired
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}
