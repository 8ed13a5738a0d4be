package http

import (
	"net/http"

	"github.com/atinyakov/todokeeper/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the to-do
// API.
//
// Routes:
//
//	POST   /auth/signup → authHandler.Signup
//	POST   /auth/signin → authHandler.Signin
//	POST   /todo        → todoHandler.Create  (TokenAuth)
//	GET    /todo        → todoHandler.List    (TokenAuth)
//	PUT    /todo        → todoHandler.Update  (TokenAuth)
//	DELETE /todo        → todoHandler.Delete  (TokenAuth)
//	GET    /metrics     → Prometheus exposition of reg
//
// Middleware chain (applied in order):
//  1. Recoverer                   turns panics into 500s
//  2. WithRequestLogging(logger)  logs incoming requests
//  3. Metrics.Handler             counts requests per route
//
// AllowContentType("application/json") is applied per group, after
// TokenAuth on /todo, so unauthenticated callers always get the same 401.
func NewRouter(
	authHandler *AuthHandler,
	todoHandler *TodoHandler,
	validator middleware.TokenValidator,
	reg *prometheus.Registry,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.NewMetrics(reg).Handler)

	r.Route("/auth", func(r chi.Router) {
		r.Use(allowJSON)

		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
	})

	// Protected group: requires a valid session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(validator, logger))
		r.Use(allowJSON)

		r.Post("/todo", todoHandler.Create)
		r.Get("/todo", todoHandler.List)
		r.Put("/todo", todoHandler.Update)
		r.Delete("/todo", todoHandler.Delete)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

// allowJSON only allows request bodies with Content-Type: application/json.
var allowJSON = chiMiddleware.AllowContentType("application/json")
