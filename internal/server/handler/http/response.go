package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/atinyakov/todokeeper/internal/service"
	"go.uber.org/zap"
)

const (
	msgInvalidBody   = "invalid request body"
	msgInternalError = "internal error"
)

// clientErrors are the service failures reported to the caller verbatim.
var clientErrors = []error{
	service.ErrInvalidArguments,
	service.ErrUsernameTaken,
	service.ErrLoginFailed,
	service.ErrUnknownUser,
	service.ErrTitleRequired,
	service.ErrIDRequired,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorDTO{Error: msg})
}

func writeTodos(w http.ResponseWriter, todos []models.Todo) {
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, models.ResponseDTO[models.Todo]{Data: todos})
}

// writeServiceError converts a service failure into the error envelope.
// Known business errors become 400 with the sentinel's message; anything
// else is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			writeError(w, http.StatusBadRequest, known.Error())
			return
		}
	}
	logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msgInternalError)
}
