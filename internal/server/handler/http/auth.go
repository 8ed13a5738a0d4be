// Package http provides HTTP handlers for user registration, credential
// login and per-user to-do management.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/todokeeper/internal/models"
	"go.uber.org/zap"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Signup registers a new user and returns the stored record.
	Signup(ctx context.Context, username, password string) (*models.User, error)
	// Signin verifies credentials and returns the user with a session token.
	Signin(ctx context.Context, username, password string) (*models.User, string, error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Logger receives details of internal failures.
	Logger *zap.Logger
}

// Signup handles POST /auth/signup.
// It expects a JSON body with "username" and "password" and responds with
// the new user's id and username.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.UserDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, err := h.AuthService.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	h.Logger.Info("user registered", zap.String("user_id", user.ID))
	writeJSON(w, http.StatusOK, models.UserDTO{ID: user.ID, Username: user.Username})
}

// Signin handles POST /auth/signin.
// On success it responds with the user's id, username and a session token
// to be sent back as "Authorization: Bearer <token>". Unknown usernames and
// wrong passwords produce the same response.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.UserDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, token, err := h.AuthService.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, models.UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	})
}
