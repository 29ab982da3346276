package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/salamatyar/salamatbot/internal/models"
)

// Fallback wraps a primary store and degrades to an in-memory store once
// the primary errors, so the state machine can still complete a session
// when persistence is unreachable. This is best-effort, not a durability
// guarantee: profiles created while degraded are lost on restart, and the
// wrapper never fails back to the primary within a process lifetime.
type Fallback struct {
	primary  Store
	memory   *MemoryStore
	degraded atomic.Bool
	once     sync.Once
}

// NewFallback wraps primary with in-memory degradation.
func NewFallback(primary Store) *Fallback {
	return &Fallback{primary: primary, memory: NewMemoryStore()}
}

// NewDegradedFallback returns a wrapper that starts out degraded, for
// when the primary store cannot even be constructed. The process keeps
// serving sessions from memory instead of refusing to boot.
func NewDegradedFallback(cause error) *Fallback {
	f := &Fallback{memory: NewMemoryStore()}
	f.degrade("init", cause)
	return f
}

// Degraded reports whether the wrapper has switched to the in-memory store.
func (f *Fallback) Degraded() bool {
	return f.degraded.Load()
}

func (f *Fallback) degrade(op string, err error) {
	f.degraded.Store(true)
	f.once.Do(func() {
		slog.Error("store degraded to in-memory fallback; persistence is unavailable", "op", op, "error", err)
	})
}

// GetOrCreate reads or creates the profile, degrading on primary failure.
func (f *Fallback) GetOrCreate(ctx context.Context, userID int64, username string) (*models.UserProfile, error) {
	if !f.degraded.Load() {
		p, err := f.primary.GetOrCreate(ctx, userID, username)
		if err == nil {
			return p, nil
		}
		f.degrade("GetOrCreate", err)
	}
	return f.memory.GetOrCreate(ctx, userID, username)
}

// Get reads the profile, degrading on primary failure.
func (f *Fallback) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	if !f.degraded.Load() {
		p, err := f.primary.Get(ctx, userID)
		if err == nil {
			return p, nil
		}
		f.degrade("Get", err)
	}
	return f.memory.Get(ctx, userID)
}

// Update merges fields into the profile, degrading on primary failure.
func (f *Fallback) Update(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	if !f.degraded.Load() {
		err := f.primary.Update(ctx, userID, upd)
		if err == nil {
			return nil
		}
		f.degrade("Update", err)
	}
	return f.memory.Update(ctx, userID, upd)
}

// Close closes the primary store, if one was ever constructed.
func (f *Fallback) Close() error {
	if f.primary == nil {
		return nil
	}
	return f.primary.Close()
}
