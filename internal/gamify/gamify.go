// Package gamify implements the loyalty scheme: point awards, one-time
// badges, and club membership lifecycle.
//
// Award decisions are made against a profile snapshot and guarded by
// persisted one-time flags, so repeating the same milestone never
// re-awards. Flags are read from the snapshot and written together with
// the award in a single store update; there is no transaction around the
// read, matching the platform's per-user event serialization.
package gamify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/salamatyar/salamatbot/internal/models"
	"github.com/salamatyar/salamatbot/internal/store"
)

// Award point values and thresholds.
const (
	// JoinBonusPoints is the one-time bonus for joining the club.
	JoinBonusPoints = 100
	// BasicProfileBonusPoints is the one-time bonus for first completing
	// age and gender.
	BasicProfileBonusPoints = 50
	// FullProfileBonusPoints is the one-time bonus for completing first
	// and last name while age and gender are already present.
	FullProfileBonusPoints = 30
	// TipBadgeThreshold is the wellness-tip view count that grants the
	// health explorer badge.
	TipBadgeThreshold = 3
)

// Award is the outcome of a granted milestone: the points delta, the new
// running total, and an optional badge. The state machine renders each
// award as exactly one notification message, plus a congratulation when a
// badge was granted.
type Award struct {
	Points int
	Total  int
	Badge  models.Badge
}

// Engine decides and persists awards against the profile store.
type Engine struct {
	store store.Store
}

// NewEngine creates a gamification engine.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st}
}

// BasicProfileCompleted evaluates the one-time age+gender completion
// award. Returns (nil, nil) when the milestone was already granted.
func (e *Engine) BasicProfileCompleted(ctx context.Context, p *models.UserProfile) (*Award, error) {
	if p.AwardFlags.IsSet(models.AwardBasicProfile) {
		slog.Debug("gamify.BasicProfileCompleted: already awarded", "userID", p.UserID)
		return nil, nil
	}
	award := &Award{
		Points: BasicProfileBonusPoints,
		Total:  p.Points + BasicProfileBonusPoints,
		Badge:  models.BadgeBasicProfile,
	}
	err := e.store.Update(ctx, p.UserID, models.ProfileUpdate{
		PointsDelta:   BasicProfileBonusPoints,
		AddBadges:     []models.Badge{models.BadgeBasicProfile},
		SetAwardFlags: []models.AwardFlag{models.AwardBasicProfile},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist basic profile award: %w", err)
	}
	slog.Info("gamify.BasicProfileCompleted: awarded", "userID", p.UserID, "points", award.Points, "total", award.Total)
	return award, nil
}

// FullProfileCompleted evaluates the one-time full-name completion award.
// Only due when age and gender are already present; returns (nil, nil)
// when already granted or the basic profile is still incomplete.
func (e *Engine) FullProfileCompleted(ctx context.Context, p *models.UserProfile) (*Award, error) {
	if !p.HasBasicProfile() || p.AwardFlags.IsSet(models.AwardFullProfile) {
		slog.Debug("gamify.FullProfileCompleted: not due", "userID", p.UserID,
			"basicProfile", p.HasBasicProfile(), "alreadyAwarded", p.AwardFlags.IsSet(models.AwardFullProfile))
		return nil, nil
	}
	award := &Award{
		Points: FullProfileBonusPoints,
		Total:  p.Points + FullProfileBonusPoints,
		Badge:  models.BadgeFullProfile,
	}
	err := e.store.Update(ctx, p.UserID, models.ProfileUpdate{
		PointsDelta:   FullProfileBonusPoints,
		AddBadges:     []models.Badge{models.BadgeFullProfile},
		SetAwardFlags: []models.AwardFlag{models.AwardFullProfile},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist full profile award: %w", err)
	}
	slog.Info("gamify.FullProfileCompleted: awarded", "userID", p.UserID, "points", award.Points, "total", award.Total)
	return award, nil
}

// ClubJoined sets club membership and evaluates the one-time joining
// bonus, in a single persisted update.
func (e *Engine) ClubJoined(ctx context.Context, p *models.UserProfile) (*Award, error) {
	member := true
	if p.AwardFlags.IsSet(models.AwardClubJoin) {
		// Membership can be toggled back on without re-awarding.
		if err := e.store.Update(ctx, p.UserID, models.ProfileUpdate{IsClubMember: &member}); err != nil {
			return nil, fmt.Errorf("failed to persist club membership: %w", err)
		}
		slog.Debug("gamify.ClubJoined: join bonus already awarded", "userID", p.UserID)
		return nil, nil
	}
	award := &Award{
		Points: JoinBonusPoints,
		Total:  p.Points + JoinBonusPoints,
	}
	err := e.store.Update(ctx, p.UserID, models.ProfileUpdate{
		IsClubMember:  &member,
		PointsDelta:   JoinBonusPoints,
		SetAwardFlags: []models.AwardFlag{models.AwardClubJoin},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist club join award: %w", err)
	}
	slog.Info("gamify.ClubJoined: awarded", "userID", p.UserID, "points", award.Points, "total", award.Total)
	return award, nil
}

// TipViewed increments the wellness-tip usage counter and grants the
// health explorer badge once the threshold is reached. The badge grant is
// idempotent via set membership. Returns (nil, nil) when no badge is due.
func (e *Engine) TipViewed(ctx context.Context, p *models.UserProfile) (*Award, error) {
	upd := models.ProfileUpdate{TipCountDelta: 1}

	newCount := p.ClubTipUsageCount + 1
	var award *Award
	if newCount >= TipBadgeThreshold && !p.HasBadge(models.BadgeHealthExplorer) {
		upd.AddBadges = []models.Badge{models.BadgeHealthExplorer}
		award = &Award{Total: p.Points, Badge: models.BadgeHealthExplorer}
	}

	if err := e.store.Update(ctx, p.UserID, upd); err != nil {
		return nil, fmt.Errorf("failed to persist tip usage: %w", err)
	}
	if award != nil {
		slog.Info("gamify.TipViewed: badge granted", "userID", p.UserID, "badge", award.Badge, "tipCount", newCount)
	}
	return award, nil
}

// CancelMembership resets membership, points, badges, tip usage, award
// flags, and all identity fields in one persisted update. A user who
// rejoins starts completely fresh.
func (e *Engine) CancelMembership(ctx context.Context, userID int64) error {
	notMember := false
	zero := 0
	err := e.store.Update(ctx, userID, models.ProfileUpdate{
		IsClubMember:    &notMember,
		PointsSet:       &zero,
		TipCountSet:     &zero,
		ClearBadges:     true,
		ClearAwardFlags: true,
		ResetIdentity:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to reset membership: %w", err)
	}
	slog.Info("gamify.CancelMembership: membership and profile reset", "userID", userID)
	return nil
}
