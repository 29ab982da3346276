package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/salamatyar/salamatbot/internal/models"
)

// MemoryStore is an in-memory, non-persistent profile store. It backs
// tests and the degraded mode entered when the primary store is
// unreachable.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[int64]*models.UserProfile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[int64]*models.UserProfile)}
}

// GetOrCreate reads or lazily creates the profile for userID.
func (s *MemoryStore) GetOrCreate(ctx context.Context, userID int64, username string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		if username != "" && p.Username != username {
			p.Username = username
		}
		return copyProfile(p), nil
	}
	p := newProfile(userID, username)
	s.profiles[userID] = p
	slog.Debug("MemoryStore.GetOrCreate: created profile", "userID", userID)
	return copyProfile(p), nil
}

// Get reads the profile for userID, returning (nil, nil) when absent.
func (s *MemoryStore) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return ensureDefaults(copyProfile(p)), nil
}

// Update merges the given partial fields into the stored profile. A
// missing profile is created first so updates never silently vanish.
func (s *MemoryStore) Update(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = newProfile(userID, "")
		s.profiles[userID] = p
	}
	applyUpdate(p, upd)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// copyProfile returns a defensive copy so callers cannot mutate the
// stored document outside Update.
func copyProfile(p *models.UserProfile) *models.UserProfile {
	cp := *p
	cp.Badges = append([]models.Badge(nil), p.Badges...)
	if cp.Badges == nil {
		cp.Badges = []models.Badge{}
	}
	return &cp
}
