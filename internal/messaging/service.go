// Package messaging provides the message delivery abstraction for
// Salamatbot and its Telegram implementation.
package messaging

import (
	"context"

	"github.com/salamatyar/salamatbot/internal/models"
)

// KeyboardSpec selects one of the static per-state button layouts. The
// core describes keyboards abstractly; the platform implementation maps
// each spec to its native markup.
type KeyboardSpec int

const (
	// KeyboardNone sends the message without buttons.
	KeyboardNone KeyboardSpec = iota
	// KeyboardMainMenu is the home menu for non-members.
	KeyboardMainMenu
	// KeyboardMainMenuMember is the home menu with member-only entries.
	KeyboardMainMenuMember
	// KeyboardBackToMenu offers only the return-to-main-menu button.
	KeyboardBackToMenu
	// KeyboardGender offers the gender choice.
	KeyboardGender
	// KeyboardYesNo is a binary confirmation.
	KeyboardYesNo
	// KeyboardProfileView offers profile actions (edit name, cancel
	// membership, back).
	KeyboardProfileView
	// KeyboardDoctor offers consultation controls (new question, back).
	KeyboardDoctor
)

// Service defines a pluggable message delivery abstraction. It delivers
// inbound events and accepts outbound messages with keyboard layouts.
// Events for a given user are delivered strictly in order, one at a time.
type Service interface {
	// Start begins background processing (long polling for updates).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Events returns the channel of inbound user events.
	Events() <-chan models.Event

	// SendMessage sends a text message with an optional keyboard layout.
	SendMessage(ctx context.Context, chatID int64, text string, keyboard KeyboardSpec) error

	// SendPhoto sends a photo by URL with a caption.
	SendPhoto(ctx context.Context, chatID int64, url, caption string) error
}
