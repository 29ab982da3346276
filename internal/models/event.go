// Package models defines inbound event structures for Salamatbot.
package models

// Event is one inbound user interaction delivered by the messaging
// adapter: either a button press (Payload set) or free text (Text set).
// The platform delivers events for a given user strictly in order.
type Event struct {
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	Text      string
	Payload   string
	IsCommand bool
	Command   string
}

// IsButton reports whether the event is a button press.
func (e Event) IsButton() bool {
	return e.Payload != ""
}

// Button callback payloads, shared between the keyboard layouts and the
// state machine handlers.
const (
	PayloadConsult          = "menu:consult"
	PayloadJoinClub         = "menu:join"
	PayloadViewProfile      = "menu:profile"
	PayloadWellnessTip      = "menu:tip"
	PayloadCatalog          = "menu:catalog"
	PayloadBackToMenu       = "menu:main"
	PayloadGenderFemale     = "gender:female"
	PayloadGenderMale       = "gender:male"
	PayloadYes              = "confirm:yes"
	PayloadNo               = "confirm:no"
	PayloadEditName         = "profile:edit_name"
	PayloadCancelMembership = "profile:cancel"
	PayloadNewQuestion      = "doctor:new"
)

// Bot commands.
const (
	CommandStart  = "start"
	CommandCancel = "cancel"
)
