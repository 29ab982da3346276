// Package store provides storage backends for Salamatbot.
//
// This file implements the Postgres-backed profile store, selected by a
// postgres:// DSN.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/salamatyar/salamatbot/internal/models"
)

// Connection pool configuration.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is the Postgres-backed profile store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied")

	return &PostgresStore{db: db}, nil
}

// GetOrCreate reads or lazily creates the profile for userID.
func (s *PostgresStore) GetOrCreate(ctx context.Context, userID int64, username string) (*models.UserProfile, error) {
	return sqlGetOrCreate(ctx, s.db, dialectPostgres, userID, username)
}

// Get reads the profile for userID, returning (nil, nil) when absent.
func (s *PostgresStore) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	return sqlGet(ctx, s.db, dialectPostgres, userID)
}

// Update merges the given partial fields into the stored profile row.
func (s *PostgresStore) Update(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	return sqlUpdate(ctx, s.db, dialectPostgres, userID, upd)
}

// Close closes the Postgres connection pool.
func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
