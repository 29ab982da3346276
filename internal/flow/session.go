// Package flow implements the session state machine that drives the bot.
package flow

import (
	"sync"

	"github.com/salamatyar/salamatbot/internal/doctor"
	"github.com/salamatyar/salamatbot/internal/models"
)

// ProfileDraft holds the identity fields collected so far during an
// in-progress profile completion or name edit. Discarded on completion
// or cancellation, never persisted on its own.
type ProfileDraft struct {
	FirstName string
	LastName  string
	Age       int
	Gender    models.Gender
}

// Session is the ephemeral per-user conversation state. It is owned by
// the machine, passed explicitly through every handler, and not persisted
// across restarts: the machine can always recover a usable state from the
// profile store.
type Session struct {
	UserID int64
	ChatID int64

	State models.SessionState

	// Draft is the transient profile data of an in-progress completion
	// or edit flow.
	Draft ProfileDraft

	// AfterProfile records which flow requested profile completion, so
	// the machine returns to it when the chain finishes.
	AfterProfile models.CompletionFlow

	// DoctorHistory is the ordered turn list of the active consultation.
	// Cleared on "new question" and on session reset.
	DoctorHistory []doctor.Turn

	// DoctorContext caches the instruction prompt derived from the
	// profile's age and gender. A cache only: the authoritative source
	// is the profile, and the consultation state is never entered
	// without rebuilding a missing context.
	DoctorContext string
}

// Reset discards all transient data and returns the session to the main
// menu.
func (s *Session) Reset() {
	s.State = models.StateMainMenu
	s.Draft = ProfileDraft{}
	s.AfterProfile = ""
	s.DoctorHistory = nil
	s.DoctorContext = ""
}

// Sessions is the in-memory session registry. The mutex guards only map
// access; the machine handles each user's events one at a time, so
// sessions themselves are not locked.
type Sessions struct {
	mu     sync.Mutex
	byUser map[int64]*Session
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{byUser: make(map[int64]*Session)}
}

// Get returns the session for userID, creating one in the main menu
// state on first contact.
func (r *Sessions) Get(userID, chatID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byUser[userID]; ok {
		s.ChatID = chatID
		return s
	}
	s := &Session{UserID: userID, ChatID: chatID, State: models.StateMainMenu}
	r.byUser[userID] = s
	return s
}
