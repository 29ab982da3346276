package store

import (
	"context"
	"errors"
	"testing"

	"github.com/salamatyar/salamatbot/internal/models"
)

func TestMemoryStoreGetOrCreateIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p1, err := s.GetOrCreate(ctx, 42, "ali")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if p1.UserID != 42 || p1.Username != "ali" {
		t.Errorf("unexpected profile: %+v", p1)
	}
	if p1.Points != 0 || p1.IsClubMember || len(p1.Badges) != 0 {
		t.Errorf("gamification fields not at defaults: %+v", p1)
	}

	if err := s.Update(ctx, 42, models.ProfileUpdate{PointsDelta: 10}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	p2, err := s.GetOrCreate(ctx, 42, "ali")
	if err != nil {
		t.Fatalf("second GetOrCreate error: %v", err)
	}
	if p2.Points != 10 {
		t.Errorf("repeated GetOrCreate must not recreate the profile, points = %d", p2.Points)
	}
}

func TestMemoryStoreGetAbsent(t *testing.T) {
	s := NewMemoryStore()
	p, err := s.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for absent profile, got %+v", p)
	}
}

func TestMemoryStoreUpdateMergesPartialFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.GetOrCreate(ctx, 1, "u"); err != nil {
		t.Fatal(err)
	}

	first := "Ali"
	age := 34
	gender := models.GenderMale
	err := s.Update(ctx, 1, models.ProfileUpdate{FirstName: &first, Age: &age, Gender: &gender})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	last := "Rezaei"
	if err := s.Update(ctx, 1, models.ProfileUpdate{LastName: &last}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	p, _ := s.Get(ctx, 1)
	if p.FirstName != "Ali" || p.LastName != "Rezaei" || p.Age != 34 || p.Gender != models.GenderMale {
		t.Errorf("partial updates did not merge: %+v", p)
	}
}

func TestMemoryStorePointsDeltaAndSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.GetOrCreate(ctx, 1, "")

	s.Update(ctx, 1, models.ProfileUpdate{PointsDelta: 50})
	s.Update(ctx, 1, models.ProfileUpdate{PointsDelta: 30})
	p, _ := s.Get(ctx, 1)
	if p.Points != 80 {
		t.Errorf("points = %d, want 80", p.Points)
	}

	zero := 0
	s.Update(ctx, 1, models.ProfileUpdate{PointsSet: &zero})
	p, _ = s.Get(ctx, 1)
	if p.Points != 0 {
		t.Errorf("PointsSet did not reset, points = %d", p.Points)
	}
}

func TestMemoryStoreBadgeAdditionIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.GetOrCreate(ctx, 1, "")

	s.Update(ctx, 1, models.ProfileUpdate{AddBadges: []models.Badge{models.BadgeBasicProfile}})
	s.Update(ctx, 1, models.ProfileUpdate{AddBadges: []models.Badge{models.BadgeBasicProfile}})
	p, _ := s.Get(ctx, 1)
	if len(p.Badges) != 1 {
		t.Errorf("duplicate badge inserted: %v", p.Badges)
	}
}

func TestMemoryStoreMembershipReset(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.GetOrCreate(ctx, 1, "")

	first, last, age, gender := "Ali", "Rezaei", 34, models.GenderMale
	member := true
	s.Update(ctx, 1, models.ProfileUpdate{
		FirstName: &first, LastName: &last, Age: &age, Gender: &gender,
		IsClubMember: &member, PointsDelta: 180,
		AddBadges:     []models.Badge{models.BadgeBasicProfile, models.BadgeFullProfile},
		SetAwardFlags: []models.AwardFlag{models.AwardBasicProfile, models.AwardClubJoin},
		TipCountDelta: 2,
	})

	notMember := false
	zero := 0
	s.Update(ctx, 1, models.ProfileUpdate{
		IsClubMember: &notMember, PointsSet: &zero, TipCountSet: &zero,
		ClearBadges: true, ClearAwardFlags: true, ResetIdentity: true,
	})

	p, _ := s.Get(ctx, 1)
	if p.Points != 0 || len(p.Badges) != 0 || p.ClubTipUsageCount != 0 {
		t.Errorf("gamification fields not reset: %+v", p)
	}
	if p.FirstName != "" || p.LastName != "" || p.Age != 0 || p.Gender != "" {
		t.Errorf("identity fields not reset: %+v", p)
	}
	if p.IsClubMember || p.AwardFlags != (models.AwardFlags{}) {
		t.Errorf("membership or award flags not reset: %+v", p)
	}
}

// failingStore always errors, to drive the fallback wrapper.
type failingStore struct{}

var errStoreDown = errors.New("store unreachable")

func (failingStore) GetOrCreate(ctx context.Context, userID int64, username string) (*models.UserProfile, error) {
	return nil, errStoreDown
}
func (failingStore) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	return nil, errStoreDown
}
func (failingStore) Update(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	return errStoreDown
}
func (failingStore) Close() error { return nil }

func TestFallbackDegradesToMemory(t *testing.T) {
	f := NewFallback(failingStore{})
	ctx := context.Background()

	if f.Degraded() {
		t.Fatal("fallback should start in primary mode")
	}

	p, err := f.GetOrCreate(ctx, 9, "user")
	if err != nil {
		t.Fatalf("degraded GetOrCreate should succeed, got %v", err)
	}
	if p.UserID != 9 {
		t.Errorf("unexpected profile: %+v", p)
	}
	if !f.Degraded() {
		t.Error("fallback should be degraded after a primary failure")
	}

	// The degraded store must keep the session working end to end.
	if err := f.Update(ctx, 9, models.ProfileUpdate{PointsDelta: 5}); err != nil {
		t.Fatalf("degraded Update error: %v", err)
	}
	p, err = f.Get(ctx, 9)
	if err != nil || p == nil || p.Points != 5 {
		t.Errorf("degraded Get = %+v, %v; want points 5", p, err)
	}
}

func TestDegradedFallbackServesFromMemory(t *testing.T) {
	f := NewDegradedFallback(errors.New("connection refused"))
	ctx := context.Background()

	if !f.Degraded() {
		t.Fatal("fallback should start degraded when the primary never came up")
	}

	if _, err := f.GetOrCreate(ctx, 7, "user"); err != nil {
		t.Fatalf("GetOrCreate error while degraded: %v", err)
	}
	if err := f.Update(ctx, 7, models.ProfileUpdate{PointsDelta: 5}); err != nil {
		t.Fatalf("Update error while degraded: %v", err)
	}
	p, err := f.Get(ctx, 7)
	if err != nil || p == nil || p.Points != 5 {
		t.Errorf("Get = %+v, %v; want points 5", p, err)
	}

	if err := f.Close(); err != nil {
		t.Errorf("Close without a primary should be a no-op: %v", err)
	}
}

func TestFallbackPassesThroughHealthyPrimary(t *testing.T) {
	f := NewFallback(NewMemoryStore())
	ctx := context.Background()

	if _, err := f.GetOrCreate(ctx, 1, "u"); err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if f.Degraded() {
		t.Error("fallback should not degrade when the primary is healthy")
	}
}
