// Package main initializes and starts the to-do API server, setting up
// configuration, logging, the database, repositories, services, handlers
// and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/rand"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/todokeeper/internal/config"
	"github.com/atinyakov/todokeeper/internal/db"
	"github.com/atinyakov/todokeeper/internal/logger"
	"github.com/atinyakov/todokeeper/internal/password"
	"github.com/atinyakov/todokeeper/internal/repository"
	"github.com/atinyakov/todokeeper/internal/server/handler/http"
	"github.com/atinyakov/todokeeper/internal/service"
	"github.com/atinyakov/todokeeper/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	generatedKeySize = 64
	shutdownTimeout  = 10 * time.Second
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = postgresDB.Close() }()

	db.StartOrphanCleaner(ctx, postgresDB, options.CleanupInterval, zapLogger)

	tokens, err := token.NewService(signingKey(options.TokenSecret, zapLogger))
	if err != nil {
		zapLogger.Fatal("cannot init token service", zap.Error(err))
	}

	// Initialize repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	todoRepo := repository.NewPostgresTodoRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, password.NewBcryptHasher(), tokens)
	todoService := service.NewTodoService(todoRepo)

	// Create HTTP handlers for auth and todo endpoints.
	authHandler := &http.AuthHandler{AuthService: authService, Logger: zapLogger}
	todoHandler := &http.TodoHandler{TodoService: todoService, Logger: zapLogger}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(postgresDB, "todo"),
	)

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, todoHandler, tokens, reg, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSEnabled() {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// signingKey returns the configured secret, or a random key when none is
// set. Tokens signed with a random key do not survive a restart.
func signingKey(secret string, log *zap.Logger) []byte {
	if secret != "" {
		return []byte(secret)
	}
	key := make([]byte, generatedKeySize)
	if _, err := rand.Read(key); err != nil {
		log.Fatal("cannot generate token signing key", zap.Error(err))
	}
	log.Warn("no token secret configured, using a random key; sessions end on restart")
	return key
}
