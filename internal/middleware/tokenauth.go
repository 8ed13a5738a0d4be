// Package middleware provides HTTP middlewares for authentication, logging
// and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type ctxKey string

const userKey ctxKey = "user"

const bearerPrefix = "Bearer "

// TokenValidator resolves a session token to the user ID it was issued for.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// unauthorizedBody is the same for every rejection so callers cannot tell a
// missing token from a forged or expired one.
const unauthorizedBody = `{"error":"unauthorized"}` + "\n"

// TokenAuth is a middleware that enforces bearer-token authentication.
//
// It reads the token from the Authorization header, validates it and stores
// the resulting user ID in the request context for GetUserIDFromContext.
// Requests without a valid token are rejected with 401 before reaching next.
func TokenAuth(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			userID, err := validator.Validate(raw)
			if err != nil {
				logger.Debug("rejected session token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(unauthorizedBody))
}
