// Package db opens the database, applies schema migrations and runs
// background maintenance.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// InitPostgres opens a PostgreSQL connection, verifies it and brings the
// schema up to date.
func InitPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(ctx, db, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies all pending embedded migrations using the given goose
// dialect ("postgres", "sqlite3").
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
