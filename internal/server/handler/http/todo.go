package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/todokeeper/internal/middleware"
	"github.com/atinyakov/todokeeper/internal/models"
	"go.uber.org/zap"
)

// TodoService defines the to-do operations required by the TodoHandler.
// Every method returns the caller's full list after the operation.
type TodoService interface {
	Create(ctx context.Context, userID, title string, done bool) ([]models.Todo, error)
	Retrieve(ctx context.Context, userID string) ([]models.Todo, error)
	Update(ctx context.Context, userID string, todo models.TodoDTO) ([]models.Todo, error)
	Delete(ctx context.Context, userID, id string) ([]models.Todo, error)
}

// TodoHandler handles the /todo endpoints. The owner is always the
// authenticated user stored in the request context by TokenAuth.
type TodoHandler struct {
	TodoService TodoService
	Logger      *zap.Logger
}

// Create handles POST /todo with body {"title","done"}.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TodoDTO
	if !decodeTodo(w, r, &req) {
		return
	}

	todos, err := h.TodoService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Title, req.Done)
	h.respond(w, r, todos, err)
}

// List handles GET /todo.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.TodoService.Retrieve(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	h.respond(w, r, todos, err)
}

// Update handles PUT /todo with body {"id","title","done"}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.TodoDTO
	if !decodeTodo(w, r, &req) {
		return
	}

	todos, err := h.TodoService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), req)
	h.respond(w, r, todos, err)
}

// Delete handles DELETE /todo with body {"id"}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req models.TodoDTO
	if !decodeTodo(w, r, &req) {
		return
	}

	todos, err := h.TodoService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.ID)
	h.respond(w, r, todos, err)
}

func (h *TodoHandler) respond(w http.ResponseWriter, r *http.Request, todos []models.Todo, err error) {
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeTodos(w, todos)
}

func decodeTodo(w http.ResponseWriter, r *http.Request, dst *models.TodoDTO) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}
