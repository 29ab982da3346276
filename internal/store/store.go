// Package store provides profile storage backends for Salamatbot.
//
// The primary backend is MongoDB; SQLite and Postgres backends cover
// deployments without a document database, and an in-memory store backs
// tests and the degraded fallback mode.
package store

import (
	"context"

	"github.com/salamatyar/salamatbot/internal/models"
)

// Store defines the persistent per-user profile repository.
type Store interface {
	// GetOrCreate reads the profile for userID, creating it with default
	// gamification fields and unset identity fields if absent. Safe to
	// call repeatedly.
	GetOrCreate(ctx context.Context, userID int64, username string) (*models.UserProfile, error)

	// Get reads the profile for userID without creating it. Returns
	// (nil, nil) when absent. Missing optional fields are back-filled
	// with defaults so callers never branch on field absence.
	Get(ctx context.Context, userID int64) (*models.UserProfile, error)

	// Update merges the given partial fields into the stored document.
	// Point increments are applied as store-side deltas, not
	// read-modify-write.
	Update(ctx context.Context, userID int64, upd models.ProfileUpdate) error

	// Close releases the underlying connection.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the backend connection string: a Mongo URI, a Postgres DSN,
	// or an SQLite file path.
	DSN string
	// Database is the database name for backends that need one (Mongo).
	Database string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the backend connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithDatabase sets the database name.
func WithDatabase(name string) Option {
	return func(o *Opts) { o.Database = name }
}
