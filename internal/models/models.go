// Package models defines the core data structures for Salamatbot.
//
// It includes the persistent user profile document, session states, and
// inbound event types shared across modules.
package models

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Gender is the profile gender enum.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// IsValidGender checks if the given gender value is supported.
func IsValidGender(g Gender) bool {
	switch g {
	case GenderFemale, GenderMale:
		return true
	default:
		return false
	}
}

// Badge identifies a one-time gamification badge.
type Badge string

const (
	// BadgeBasicProfile is granted when age and gender are first completed.
	BadgeBasicProfile Badge = "basic_profile"
	// BadgeFullProfile is granted when the full name is completed while
	// age and gender are already present.
	BadgeFullProfile Badge = "full_profile"
	// BadgeHealthExplorer is granted after viewing enough wellness tips.
	BadgeHealthExplorer Badge = "health_explorer"
)

// AwardFlag identifies a one-time award milestone.
type AwardFlag string

const (
	AwardBasicProfile AwardFlag = "basic_profile"
	AwardFullProfile  AwardFlag = "full_profile"
	AwardClubJoin     AwardFlag = "club_join"
)

// AwardFlags records which one-time awards have already been granted.
// Each flag is set at most once per membership lifetime.
type AwardFlags struct {
	BasicProfile bool `bson:"basic_profile" json:"basic_profile"`
	FullProfile  bool `bson:"full_profile" json:"full_profile"`
	ClubJoin     bool `bson:"club_join" json:"club_join"`
}

// IsSet reports whether the given award flag has been granted.
func (f AwardFlags) IsSet(flag AwardFlag) bool {
	switch flag {
	case AwardBasicProfile:
		return f.BasicProfile
	case AwardFullProfile:
		return f.FullProfile
	case AwardClubJoin:
		return f.ClubJoin
	default:
		return false
	}
}

// Set marks the given award flag as granted.
func (f *AwardFlags) Set(flag AwardFlag) {
	switch flag {
	case AwardBasicProfile:
		f.BasicProfile = true
	case AwardFullProfile:
		f.FullProfile = true
	case AwardClubJoin:
		f.ClubJoin = true
	}
}

// UserProfile is the durable per-user document, keyed by Telegram user ID.
// Identity fields use zero values for "unset" (empty string, age 0) so the
// store can always back-fill defaults on read.
type UserProfile struct {
	UserID            int64      `bson:"user_id" json:"user_id"`
	Username          string     `bson:"username,omitempty" json:"username,omitempty"`
	FirstName         string     `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName          string     `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Age               int        `bson:"age,omitempty" json:"age,omitempty"`
	Gender            Gender     `bson:"gender,omitempty" json:"gender,omitempty"`
	IsClubMember      bool       `bson:"is_club_member" json:"is_club_member"`
	Points            int        `bson:"points" json:"points"`
	Badges            []Badge    `bson:"badges" json:"badges"`
	ClubTipUsageCount int        `bson:"club_tip_usage_count" json:"club_tip_usage_count"`
	AwardFlags        AwardFlags `bson:"award_flags" json:"award_flags"`
	RegisteredAt      time.Time  `bson:"registered_at" json:"registered_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}

// HasBadge reports whether the profile already holds the given badge.
func (p *UserProfile) HasBadge(b Badge) bool {
	for _, existing := range p.Badges {
		if existing == b {
			return true
		}
	}
	return false
}

// HasBasicProfile reports whether age and gender are both set.
func (p *UserProfile) HasBasicProfile() bool {
	return p.Age > 0 && IsValidGender(p.Gender)
}

// HasFullName reports whether first and last name are both set.
func (p *UserProfile) HasFullName() bool {
	return p.FirstName != "" && p.LastName != ""
}

// IsComplete reports whether all four identity fields required to enter a
// consultation or join the club are set.
func (p *UserProfile) IsComplete() bool {
	return p.HasFullName() && p.HasBasicProfile()
}

// ProfileUpdate describes a partial merge into a stored profile document.
// Nil pointer fields are left untouched. PointsDelta is applied as a
// store-side increment rather than a read-modify-write so rapid successive
// awards for the same user do not clobber each other. PointsSet, when
// non-nil, wins over PointsDelta (used by membership cancellation).
type ProfileUpdate struct {
	Username     *string
	FirstName    *string
	LastName     *string
	Age          *int
	Gender       *Gender
	IsClubMember *bool

	PointsDelta int
	PointsSet   *int

	AddBadges   []Badge
	ClearBadges bool

	SetAwardFlags   []AwardFlag
	ClearAwardFlags bool

	TipCountDelta int
	TipCountSet   *int

	// ResetIdentity clears first name, last name, age, and gender.
	ResetIdentity bool
}

// Validation constants for profile input.
const (
	// MinNameLength is the minimum rune length of a first or last name.
	MinNameLength = 2
	// MaxNameLength is the maximum rune length of a first or last name.
	MaxNameLength = 50
	// MinAge is the minimum accepted age.
	MinAge = 1
	// MaxAge is the maximum accepted age.
	MaxAge = 120
)

// Error variables for input validation.
var (
	ErrNameTooShort  = errors.New("name is too short")
	ErrNameTooLong   = errors.New("name is too long")
	ErrInvalidAge    = errors.New("age must be a whole number between 1 and 120")
	ErrInvalidGender = errors.New("gender must be female or male")
)

// ValidateName trims and validates a first or last name input.
func ValidateName(input string) (string, error) {
	name := strings.TrimSpace(input)
	length := utf8.RuneCountInString(name)
	if length < MinNameLength {
		return "", ErrNameTooShort
	}
	if length > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ValidateAge parses and validates an age input.
func ValidateAge(input string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrInvalidAge
	}
	if age < MinAge || age > MaxAge {
		return 0, ErrInvalidAge
	}
	return age, nil
}

// ParseGender validates a gender input value.
func ParseGender(input string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(input)))
	if !IsValidGender(g) {
		return "", ErrInvalidGender
	}
	return g, nil
}
