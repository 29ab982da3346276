package messaging

import (
	"testing"

	"github.com/salamatyar/salamatbot/internal/models"
)

// payloadsOf flattens the callback data of a keyboard layout.
func payloadsOf(spec KeyboardSpec) []string {
	markup := markupFor(spec)
	if markup == nil {
		return nil
	}
	var payloads []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				payloads = append(payloads, *btn.CallbackData)
			}
		}
	}
	return payloads
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestMarkupForNoneIsNil(t *testing.T) {
	if markupFor(KeyboardNone) != nil {
		t.Error("KeyboardNone should produce no markup")
	}
}

func TestMainMenuKeyboards(t *testing.T) {
	nonMember := payloadsOf(KeyboardMainMenu)
	if !contains(nonMember, models.PayloadConsult) || !contains(nonMember, models.PayloadJoinClub) {
		t.Errorf("non-member menu missing core entries: %v", nonMember)
	}
	if contains(nonMember, models.PayloadViewProfile) || contains(nonMember, models.PayloadWellnessTip) {
		t.Errorf("non-member menu must not show member-only entries: %v", nonMember)
	}

	member := payloadsOf(KeyboardMainMenuMember)
	for _, want := range []string{models.PayloadConsult, models.PayloadViewProfile, models.PayloadWellnessTip} {
		if !contains(member, want) {
			t.Errorf("member menu missing %s: %v", want, member)
		}
	}
	if contains(member, models.PayloadJoinClub) {
		t.Errorf("member menu should not offer joining again: %v", member)
	}
}

func TestConfirmationAndNavigationKeyboards(t *testing.T) {
	yesNo := payloadsOf(KeyboardYesNo)
	if !contains(yesNo, models.PayloadYes) || !contains(yesNo, models.PayloadNo) {
		t.Errorf("yes/no keyboard incomplete: %v", yesNo)
	}

	gender := payloadsOf(KeyboardGender)
	if !contains(gender, models.PayloadGenderFemale) || !contains(gender, models.PayloadGenderMale) {
		t.Errorf("gender keyboard incomplete: %v", gender)
	}
	if !contains(gender, models.PayloadBackToMenu) {
		t.Errorf("gender keyboard must allow returning to the menu: %v", gender)
	}

	profile := payloadsOf(KeyboardProfileView)
	for _, want := range []string{models.PayloadEditName, models.PayloadCancelMembership, models.PayloadBackToMenu} {
		if !contains(profile, want) {
			t.Errorf("profile keyboard missing %s: %v", want, profile)
		}
	}

	doctor := payloadsOf(KeyboardDoctor)
	if !contains(doctor, models.PayloadNewQuestion) || !contains(doctor, models.PayloadBackToMenu) {
		t.Errorf("doctor keyboard incomplete: %v", doctor)
	}

	back := payloadsOf(KeyboardBackToMenu)
	if len(back) != 1 || back[0] != models.PayloadBackToMenu {
		t.Errorf("back keyboard = %v, want only the main menu button", back)
	}
}
