package gamify

import (
	"context"
	"testing"

	"github.com/salamatyar/salamatbot/internal/models"
	"github.com/salamatyar/salamatbot/internal/store"
)

func setup(t *testing.T) (*Engine, store.Store, *models.UserProfile) {
	t.Helper()
	st := store.NewMemoryStore()
	p, err := st.GetOrCreate(context.Background(), 1, "user")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	return NewEngine(st), st, p
}

func TestBasicProfileAwardIsOneTime(t *testing.T) {
	e, st, p := setup(t)
	ctx := context.Background()

	award, err := e.BasicProfileCompleted(ctx, p)
	if err != nil {
		t.Fatalf("BasicProfileCompleted error: %v", err)
	}
	if award == nil || award.Points != BasicProfileBonusPoints || award.Badge != models.BadgeBasicProfile {
		t.Fatalf("unexpected award: %+v", award)
	}
	if award.Total != BasicProfileBonusPoints {
		t.Errorf("running total = %d, want %d", award.Total, BasicProfileBonusPoints)
	}

	// Completing the same milestone again must not re-award.
	p2, _ := st.Get(ctx, 1)
	again, err := e.BasicProfileCompleted(ctx, p2)
	if err != nil {
		t.Fatalf("second BasicProfileCompleted error: %v", err)
	}
	if again != nil {
		t.Errorf("milestone re-awarded: %+v", again)
	}

	final, _ := st.Get(ctx, 1)
	if final.Points != BasicProfileBonusPoints {
		t.Errorf("points = %d, want exactly one award", final.Points)
	}
	if len(final.Badges) != 1 {
		t.Errorf("badges = %v, want exactly one", final.Badges)
	}
}

func TestFullProfileAwardRequiresBasicProfile(t *testing.T) {
	e, st, p := setup(t)
	ctx := context.Background()

	// Name completed but age/gender missing: not due.
	if award, err := e.FullProfileCompleted(ctx, p); err != nil || award != nil {
		t.Errorf("award without basic profile: %+v, %v", award, err)
	}

	age, gender := 34, models.GenderMale
	st.Update(ctx, 1, models.ProfileUpdate{Age: &age, Gender: &gender})
	p, _ = st.Get(ctx, 1)

	award, err := e.FullProfileCompleted(ctx, p)
	if err != nil {
		t.Fatalf("FullProfileCompleted error: %v", err)
	}
	if award == nil || award.Points != FullProfileBonusPoints || award.Badge != models.BadgeFullProfile {
		t.Fatalf("unexpected award: %+v", award)
	}

	// Editing the name again never re-awards.
	p, _ = st.Get(ctx, 1)
	if again, _ := e.FullProfileCompleted(ctx, p); again != nil {
		t.Errorf("full profile re-awarded: %+v", again)
	}
}

func TestClubJoinedAwardsOnceAndSetsMembership(t *testing.T) {
	e, st, p := setup(t)
	ctx := context.Background()

	award, err := e.ClubJoined(ctx, p)
	if err != nil {
		t.Fatalf("ClubJoined error: %v", err)
	}
	if award == nil || award.Points != JoinBonusPoints {
		t.Fatalf("unexpected award: %+v", award)
	}

	stored, _ := st.Get(ctx, 1)
	if !stored.IsClubMember {
		t.Error("membership not persisted")
	}
	if stored.Points != JoinBonusPoints {
		t.Errorf("points = %d, want %d", stored.Points, JoinBonusPoints)
	}

	// Joining again keeps membership but never re-awards.
	if again, err := e.ClubJoined(ctx, stored); err != nil || again != nil {
		t.Errorf("join re-awarded: %+v, %v", again, err)
	}
	stored, _ = st.Get(ctx, 1)
	if stored.Points != JoinBonusPoints || !stored.IsClubMember {
		t.Errorf("state after repeat join: %+v", stored)
	}
}

func TestTipViewedGrantsThresholdBadgeOnce(t *testing.T) {
	e, st, _ := setup(t)
	ctx := context.Background()

	for i := 1; i <= TipBadgeThreshold+2; i++ {
		p, _ := st.Get(ctx, 1)
		award, err := e.TipViewed(ctx, p)
		if err != nil {
			t.Fatalf("TipViewed #%d error: %v", i, err)
		}
		if i == TipBadgeThreshold {
			if award == nil || award.Badge != models.BadgeHealthExplorer {
				t.Errorf("tip #%d: expected health explorer badge, got %+v", i, award)
			}
		} else if award != nil {
			t.Errorf("tip #%d: unexpected award %+v", i, award)
		}
	}

	final, _ := st.Get(ctx, 1)
	if final.ClubTipUsageCount != TipBadgeThreshold+2 {
		t.Errorf("tip count = %d, want %d", final.ClubTipUsageCount, TipBadgeThreshold+2)
	}
	badgeCount := 0
	for _, b := range final.Badges {
		if b == models.BadgeHealthExplorer {
			badgeCount++
		}
	}
	if badgeCount != 1 {
		t.Errorf("health explorer badge count = %d, want 1", badgeCount)
	}
}

func TestCancelMembershipResetsEverything(t *testing.T) {
	e, st, p := setup(t)
	ctx := context.Background()

	first, last, age, gender := "Ali", "Rezaei", 34, models.GenderMale
	st.Update(ctx, 1, models.ProfileUpdate{FirstName: &first, LastName: &last, Age: &age, Gender: &gender})
	p, _ = st.Get(ctx, 1)
	e.BasicProfileCompleted(ctx, p)
	p, _ = st.Get(ctx, 1)
	e.FullProfileCompleted(ctx, p)
	p, _ = st.Get(ctx, 1)
	e.ClubJoined(ctx, p)

	if err := e.CancelMembership(ctx, 1); err != nil {
		t.Fatalf("CancelMembership error: %v", err)
	}

	final, _ := st.Get(ctx, 1)
	if final.Points != 0 || len(final.Badges) != 0 || final.ClubTipUsageCount != 0 {
		t.Errorf("gamification fields not reset: %+v", final)
	}
	if final.IsClubMember || final.AwardFlags != (models.AwardFlags{}) {
		t.Errorf("membership or flags not reset: %+v", final)
	}
	if final.FirstName != "" || final.LastName != "" || final.Age != 0 || final.Gender != "" {
		t.Errorf("identity fields not reset: %+v", final)
	}

	// A rejoining user starts completely fresh: all awards fire again.
	award, err := e.ClubJoined(ctx, final)
	if err != nil {
		t.Fatalf("rejoin error: %v", err)
	}
	if award == nil || award.Points != JoinBonusPoints {
		t.Errorf("rejoin after cancel should re-award: %+v", award)
	}
}
