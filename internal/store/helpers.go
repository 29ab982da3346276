package store

import (
	"encoding/json"
	"time"

	"github.com/salamatyar/salamatbot/internal/models"
)

// newProfile returns a profile document with all gamification fields at
// their defaults and all identity fields unset.
func newProfile(userID int64, username string) *models.UserProfile {
	now := time.Now().UTC()
	return &models.UserProfile{
		UserID:       userID,
		Username:     username,
		Badges:       []models.Badge{},
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

// ensureDefaults back-fills nil collections so callers never branch on
// field absence.
func ensureDefaults(p *models.UserProfile) *models.UserProfile {
	if p == nil {
		return nil
	}
	if p.Badges == nil {
		p.Badges = []models.Badge{}
	}
	return p
}

// applyUpdate merges a ProfileUpdate into an in-memory profile. Used by
// the memory backend and by tests; the SQL and Mongo backends express the
// same semantics in their query languages.
func applyUpdate(p *models.UserProfile, upd models.ProfileUpdate) {
	if upd.Username != nil {
		p.Username = *upd.Username
	}
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.Age != nil {
		p.Age = *upd.Age
	}
	if upd.Gender != nil {
		p.Gender = *upd.Gender
	}
	if upd.IsClubMember != nil {
		p.IsClubMember = *upd.IsClubMember
	}
	if upd.ResetIdentity {
		p.FirstName = ""
		p.LastName = ""
		p.Age = 0
		p.Gender = ""
	}
	if upd.PointsSet != nil {
		p.Points = *upd.PointsSet
	} else if upd.PointsDelta != 0 {
		p.Points += upd.PointsDelta
	}
	if upd.ClearBadges {
		p.Badges = []models.Badge{}
	} else {
		p.Badges = mergeBadges(p.Badges, upd.AddBadges)
	}
	if upd.ClearAwardFlags {
		p.AwardFlags = models.AwardFlags{}
	} else {
		for _, flag := range upd.SetAwardFlags {
			p.AwardFlags.Set(flag)
		}
	}
	if upd.TipCountSet != nil {
		p.ClubTipUsageCount = *upd.TipCountSet
	} else if upd.TipCountDelta != 0 {
		p.ClubTipUsageCount += upd.TipCountDelta
	}
	p.UpdatedAt = time.Now().UTC()
}

// mergeBadges appends badges that are not already present, preserving
// insertion order.
func mergeBadges(existing []models.Badge, add []models.Badge) []models.Badge {
	merged := existing
	for _, b := range add {
		found := false
		for _, have := range merged {
			if have == b {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, b)
		}
	}
	return merged
}

// marshalBadges encodes badges as a JSON array for the SQL backends.
func marshalBadges(badges []models.Badge) (string, error) {
	if badges == nil {
		badges = []models.Badge{}
	}
	raw, err := json.Marshal(badges)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// unmarshalBadges decodes a badges JSON column; malformed data yields an
// empty set rather than a failure.
func unmarshalBadges(raw string) []models.Badge {
	badges := []models.Badge{}
	if raw == "" {
		return badges
	}
	if err := json.Unmarshal([]byte(raw), &badges); err != nil {
		return []models.Badge{}
	}
	return badges
}
