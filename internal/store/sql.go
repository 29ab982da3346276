package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/salamatyar/salamatbot/internal/models"
)

// dialect abstracts the placeholder syntax difference between the SQLite
// and Postgres backends; the profile schema and semantics are identical.
type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) placeholder(n int) string {
	if d == dialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const profileColumns = `user_id, username, first_name, last_name, age, gender,
	is_club_member, points, badges, club_tip_usage_count,
	award_basic_profile, award_full_profile, award_club_join,
	registered_at, updated_at`

// scanProfile scans one profiles row.
func scanProfile(row *sql.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	var badgesJSON string
	var gender string
	err := row.Scan(
		&p.UserID, &p.Username, &p.FirstName, &p.LastName, &p.Age, &gender,
		&p.IsClubMember, &p.Points, &badgesJSON, &p.ClubTipUsageCount,
		&p.AwardFlags.BasicProfile, &p.AwardFlags.FullProfile, &p.AwardFlags.ClubJoin,
		&p.RegisteredAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Gender = models.Gender(gender)
	p.Badges = unmarshalBadges(badgesJSON)
	return &p, nil
}

// sqlGet reads a profile row, returning (nil, nil) when absent.
func sqlGet(ctx context.Context, db *sql.DB, d dialect, userID int64) (*models.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = %s`, profileColumns, d.placeholder(1))
	p, err := scanProfile(db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile for %d: %w", userID, err)
	}
	return ensureDefaults(p), nil
}

// sqlGetOrCreate upserts a default profile row and reads it back. The
// upsert only refreshes the username on conflict so repeated calls are
// harmless.
func sqlGetOrCreate(ctx context.Context, db *sql.DB, d dialect, userID int64, username string) (*models.UserProfile, error) {
	now := time.Now().UTC()
	placeholders := make([]string, 15)
	for i := range placeholders {
		placeholders[i] = d.placeholder(i + 1)
	}
	query := fmt.Sprintf(`
		INSERT INTO profiles (%s)
		VALUES (%s)
		ON CONFLICT (user_id) DO UPDATE SET username = excluded.username, updated_at = excluded.updated_at`,
		profileColumns, strings.Join(placeholders, ", "))

	_, err := db.ExecContext(ctx, query,
		userID, username, "", "", 0, "",
		false, 0, "[]", 0,
		false, false, false,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile for %d: %w", userID, err)
	}
	return sqlGet(ctx, db, d, userID)
}

// sqlUpdate merges a ProfileUpdate into the profile row. Point and tip
// counter deltas are applied SQL-side (points = points + n) so concurrent
// increments for the same user compose. Badge additions are the one
// read-modify-write: badges live in a JSON column, so the current set is
// read and merged before writing.
func sqlUpdate(ctx context.Context, db *sql.DB, d dialect, userID int64, upd models.ProfileUpdate) error {
	var sets []string
	var args []interface{}
	n := 0
	set := func(expr string, val ...interface{}) {
		for range val {
			n++
			expr = strings.Replace(expr, "%p", d.placeholder(n), 1)
		}
		sets = append(sets, expr)
		args = append(args, val...)
	}

	set("updated_at = %p", time.Now().UTC())
	if upd.Username != nil {
		set("username = %p", *upd.Username)
	}
	if upd.FirstName != nil {
		set("first_name = %p", *upd.FirstName)
	}
	if upd.LastName != nil {
		set("last_name = %p", *upd.LastName)
	}
	if upd.Age != nil {
		set("age = %p", *upd.Age)
	}
	if upd.Gender != nil {
		set("gender = %p", string(*upd.Gender))
	}
	if upd.IsClubMember != nil {
		set("is_club_member = %p", *upd.IsClubMember)
	}
	if upd.ResetIdentity {
		set("first_name = %p", "")
		set("last_name = %p", "")
		set("age = %p", 0)
		set("gender = %p", "")
	}
	if upd.PointsSet != nil {
		set("points = %p", *upd.PointsSet)
	} else if upd.PointsDelta != 0 {
		set("points = points + %p", upd.PointsDelta)
	}
	if upd.ClearBadges {
		set("badges = %p", "[]")
	} else if len(upd.AddBadges) > 0 {
		current, err := sqlGet(ctx, db, d, userID)
		if err != nil {
			return err
		}
		existing := []models.Badge{}
		if current != nil {
			existing = current.Badges
		}
		badgesJSON, err := marshalBadges(mergeBadges(existing, upd.AddBadges))
		if err != nil {
			return fmt.Errorf("failed to encode badges for %d: %w", userID, err)
		}
		set("badges = %p", badgesJSON)
	}
	if upd.ClearAwardFlags {
		set("award_basic_profile = %p", false)
		set("award_full_profile = %p", false)
		set("award_club_join = %p", false)
	} else {
		for _, flag := range upd.SetAwardFlags {
			switch flag {
			case models.AwardBasicProfile:
				set("award_basic_profile = %p", true)
			case models.AwardFullProfile:
				set("award_full_profile = %p", true)
			case models.AwardClubJoin:
				set("award_club_join = %p", true)
			}
		}
	}
	if upd.TipCountSet != nil {
		set("club_tip_usage_count = %p", *upd.TipCountSet)
	} else if upd.TipCountDelta != 0 {
		set("club_tip_usage_count = club_tip_usage_count + %p", upd.TipCountDelta)
	}

	n++
	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE user_id = %s`, strings.Join(sets, ", "), d.placeholder(n))
	args = append(args, userID)

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		slog.Error("store sqlUpdate failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to update profile for %d: %w", userID, err)
	}
	return nil
}
