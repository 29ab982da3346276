package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/salamatyar/salamatbot/internal/gamify"
	"github.com/salamatyar/salamatbot/internal/models"
)

// User-facing message texts.
const (
	msgWelcome      = "Welcome to Salamat, your personal health assistant! 🌿\nChoose an option from the menu below."
	msgWelcomeNamed = "Welcome to Salamat, %s! 🌿\nI'm your personal health assistant — choose an option from the menu below."

	msgMainMenu = "Main menu — what would you like to do?"

	msgUseButtons = "Please use the menu buttons below."

	msgAskFirstName = "To continue I need a few details about you.\nWhat is your first name?"
	msgAskLastName  = "Thanks! And your last name?"
	msgAskAge       = "How old are you? Please send a number between 1 and 120."
	msgAskGender    = "What is your gender?"

	msgDoctorIntro = "You are now in a consultation. 🩺\nDescribe your question or symptoms in your own words. Remember: this is general guidance, not a diagnosis."
	msgNewQuestion = "Okay, new question — what would you like to ask?"

	msgClubJoinPrompt   = "Would you like to join the health club? You'll earn points and badges for taking care of yourself."
	msgClubJoined       = "Welcome to the health club! 🎉"
	msgClubDeclined     = "No problem. You can join the club anytime from the main menu."
	msgMembersOnly      = "This feature is for club members. Join the club from the main menu first!"
	msgConfirmYesOrNo   = "Please answer with the Yes or No buttons."
	msgCancelConfirm    = "Are you sure you want to cancel your membership?\nYour points, badges, and profile details will all be erased."
	msgCancelled        = "Your membership has been cancelled and your profile reset. You are welcome back anytime."
	msgAskEditFirstName = "What should your new first name be?"
	msgAskEditLastName  = "And your new last name?"
	msgNameUpdated      = "Your name has been updated. ✅"

	msgSomethingWrong = "Something went wrong on our side. You are back at the main menu."
)

// wellnessTips is the fixed rotation served by the wellness tip button.
var wellnessTips = []string{
	"💧 Drink a glass of water first thing in the morning — most people wake up mildly dehydrated.",
	"🚶 A brisk 20-minute walk a day measurably lowers cardiovascular risk.",
	"😴 Keep a consistent sleep schedule, even on weekends; your body clock will thank you.",
	"🥗 Fill half of your plate with vegetables before adding anything else.",
	"🧘 Two minutes of slow breathing can bring down acute stress noticeably.",
}

// badgeLabels maps badge identifiers to their display names.
var badgeLabels = map[models.Badge]string{
	models.BadgeBasicProfile:   "Basic Profile",
	models.BadgeFullProfile:    "Full Profile",
	models.BadgeHealthExplorer: "Health Explorer",
}

// formatWelcome greets the user by their messenger first name when the
// platform provides one.
func formatWelcome(firstName string) string {
	if firstName == "" {
		return msgWelcome
	}
	return fmt.Sprintf(msgWelcomeNamed, firstName)
}

// formatAward renders the single points notification for an award.
func formatAward(a *gamify.Award) string {
	return fmt.Sprintf("🎉 You earned %d points! Your new total is %d.", a.Points, a.Total)
}

// formatBadge renders the congratulatory message for a badge grant.
func formatBadge(b models.Badge) string {
	label := badgeLabels[b]
	if label == "" {
		label = string(b)
	}
	return fmt.Sprintf("🏅 Congratulations! You earned the \"%s\" badge!", label)
}

// formatProfile renders the profile view.
func formatProfile(p *models.UserProfile) string {
	var sb strings.Builder
	sb.WriteString("👤 Your profile\n")
	fmt.Fprintf(&sb, "Name: %s %s\n", orUnset(p.FirstName), orUnset(p.LastName))
	if p.Age > 0 {
		fmt.Fprintf(&sb, "Age: %d\n", p.Age)
	} else {
		sb.WriteString("Age: —\n")
	}
	fmt.Fprintf(&sb, "Gender: %s\n", orUnset(string(p.Gender)))
	fmt.Fprintf(&sb, "Points: %d\n", p.Points)
	if len(p.Badges) == 0 {
		sb.WriteString("Badges: none yet")
	} else {
		labels := make([]string, 0, len(p.Badges))
		for _, b := range p.Badges {
			if label := badgeLabels[b]; label != "" {
				labels = append(labels, label)
			} else {
				labels = append(labels, string(b))
			}
		}
		fmt.Fprintf(&sb, "Badges: %s", strings.Join(labels, ", "))
	}
	return sb.String()
}

func orUnset(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// validationMessage maps a validation error to its re-prompt text.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrNameTooShort):
		return "That name looks too short — please use at least 2 characters."
	case errors.Is(err, models.ErrNameTooLong):
		return "That name is too long — please keep it under 50 characters."
	case errors.Is(err, models.ErrInvalidAge):
		return "I couldn't read that as an age. Please send a whole number between 1 and 120."
	case errors.Is(err, models.ErrInvalidGender):
		return "Please choose your gender with the buttons below."
	default:
		return msgUseButtons
	}
}
