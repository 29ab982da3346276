package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/salamatyar/salamatbot/internal/doctor"
	"github.com/salamatyar/salamatbot/internal/gamify"
	"github.com/salamatyar/salamatbot/internal/messaging"
	"github.com/salamatyar/salamatbot/internal/models"
	"github.com/salamatyar/salamatbot/internal/store"
)

// reply is one outbound effect of a transition.
type reply struct {
	text     string
	keyboard messaging.KeyboardSpec
	photoURL string
}

// handlerFunc processes one inbound event in a given state and returns
// the next state plus the outbound replies. "Go to main menu" is just
// another returned transition, never a call into another handler's
// send path.
type handlerFunc func(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error)

// Opts holds configuration options for the state machine.
type Opts struct {
	WelcomeImageURL string
	CatalogURL      string
}

// Option configures machine construction.
type Option func(*Opts)

// WithWelcomeImageURL sets the image sent with the welcome message.
func WithWelcomeImageURL(url string) Option {
	return func(o *Opts) { o.WelcomeImageURL = url }
}

// WithCatalogURL sets the static product catalog link.
func WithCatalogURL(url string) Option {
	return func(o *Opts) { o.CatalogURL = url }
}

// Machine is the top-level controller: it receives one inbound event at a
// time, consults and updates the per-user session, calls into the store,
// gamification engine, and dialogue context manager, and emits outbound
// messages. All session data is scoped per user; Run feeds each user's
// events through a dedicated worker one at a time, so handlers run
// without per-user locks.
type Machine struct {
	sessions *Sessions
	store    store.Store
	engine   *gamify.Engine
	doctor   *doctor.Manager
	msg      messaging.Service
	handlers map[models.SessionState]handlerFunc
	cfg      Opts
}

// NewMachine creates the state machine with its collaborators.
func NewMachine(st store.Store, engine *gamify.Engine, doc *doctor.Manager, msg messaging.Service, opts ...Option) *Machine {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Machine{
		sessions: NewSessions(),
		store:    st,
		engine:   engine,
		doctor:   doc,
		msg:      msg,
		cfg:      cfg,
	}
	m.handlers = map[models.SessionState]handlerFunc{
		models.StateMainMenu:                m.handleMainMenu,
		models.StateAwaitingFirstName:       m.handleAwaitFirstName,
		models.StateAwaitingLastName:        m.handleAwaitLastName,
		models.StateAwaitingAge:             m.handleAwaitAge,
		models.StateAwaitingGender:          m.handleAwaitGender,
		models.StateDoctorConversation:      m.handleDoctorConversation,
		models.StateAwaitingClubJoinConfirm: m.handleClubJoinConfirm,
		models.StateProfileView:             m.handleProfileView,
		models.StateAwaitingCancelConfirm:   m.handleCancelConfirm,
		models.StateAwaitingEditFirstName:   m.handleEditFirstName,
		models.StateAwaitingEditLastName:    m.handleEditLastName,
	}
	return m
}

// userQueueSize bounds the per-user inbound queue; a user spamming
// faster than their handlers run has the overflow dropped rather than
// blocking every other user.
const userQueueSize = 16

// Run consumes inbound events until the context is cancelled or the
// event channel closes. Each user gets a dedicated worker goroutine fed
// by an ordered queue: one user's events are handled strictly one at a
// time, while different users run concurrently, so nothing else in the
// session needs locking. Run returns only after all workers drain.
func (m *Machine) Run(ctx context.Context) {
	slog.Info("flow.Machine running")

	queues := make(map[int64]chan models.Event)
	var workers sync.WaitGroup
	defer workers.Wait()
	defer func() {
		for _, q := range queues {
			close(q)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("flow.Machine stopping", "reason", ctx.Err())
			return
		case ev, ok := <-m.msg.Events():
			if !ok {
				slog.Info("flow.Machine event channel closed")
				return
			}
			q, ok := queues[ev.UserID]
			if !ok {
				q = make(chan models.Event, userQueueSize)
				queues[ev.UserID] = q
				workers.Add(1)
				go func() {
					defer workers.Done()
					for ev := range q {
						if err := m.HandleEvent(ctx, ev); err != nil {
							slog.Error("flow.Machine event handling failed", "error", err, "userID", ev.UserID)
						}
					}
				}()
			}
			select {
			case q <- ev:
			default:
				slog.Warn("flow.Machine user queue full, dropping event", "userID", ev.UserID)
			}
		}
	}
}

// HandleEvent processes one inbound event through the transition table
// and sends the resulting replies. No handler error terminates the
// process or leaves the session without a next valid input: on failure
// the session is reset to the main menu.
func (m *Machine) HandleEvent(ctx context.Context, ev models.Event) error {
	sess := m.sessions.Get(ev.UserID, ev.ChatID)
	slog.Debug("flow.HandleEvent", "userID", ev.UserID, "state", sess.State, "payload", ev.Payload, "isCommand", ev.IsCommand)

	next, replies, err := m.dispatch(ctx, sess, ev)
	if err != nil {
		slog.Error("flow.HandleEvent handler failed, resetting session", "error", err, "userID", ev.UserID, "state", sess.State)
		sess.Reset()
		m.send(ctx, sess.ChatID, reply{text: msgSomethingWrong, keyboard: messaging.KeyboardMainMenu})
		return err
	}

	if next != sess.State {
		slog.Info("flow.HandleEvent transition", "userID", ev.UserID, "from", sess.State, "to", next)
	}
	sess.State = next

	for _, r := range replies {
		m.send(ctx, sess.ChatID, r)
	}
	return nil
}

// dispatch applies the global fallbacks, then routes the event to the
// current state's handler.
func (m *Machine) dispatch(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	switch {
	case ev.IsCommand && ev.Command == models.CommandStart:
		return m.handleStart(ctx, sess, ev)

	case ev.IsCommand && ev.Command == models.CommandCancel:
		sess.Reset()
		return m.mainMenu(ctx, sess, ev, msgMainMenu)

	case ev.Payload == models.PayloadBackToMenu:
		// The name-edit chain cancels back to the profile view; from
		// everywhere else the button discards all transient data and
		// returns to the main menu.
		if sess.State == models.StateAwaitingEditFirstName || sess.State == models.StateAwaitingEditLastName {
			sess.Draft = ProfileDraft{}
			return m.profileView(ctx, sess)
		}
		sess.Reset()
		return m.mainMenu(ctx, sess, ev, msgMainMenu)
	}

	handler, ok := m.handlers[sess.State]
	if !ok {
		// Unknown state, e.g. after an incompatible deploy. Recover via
		// the main menu rather than stranding the session.
		slog.Warn("flow.dispatch: no handler for state, resetting", "state", sess.State, "userID", sess.UserID)
		sess.Reset()
		return m.mainMenu(ctx, sess, ev, msgMainMenu)
	}
	return handler(ctx, sess, ev)
}

// send delivers one reply, logging rather than propagating delivery
// failures: a lost outbound message must not strand the session.
func (m *Machine) send(ctx context.Context, chatID int64, r reply) {
	if r.photoURL != "" {
		if err := m.msg.SendPhoto(ctx, chatID, r.photoURL, r.text); err != nil {
			slog.Error("flow.send photo failed", "error", err, "chatID", chatID)
		}
		return
	}
	if err := m.msg.SendMessage(ctx, chatID, r.text, r.keyboard); err != nil {
		slog.Error("flow.send failed", "error", err, "chatID", chatID)
	}
}

// handleStart resets the session and re-emits the welcome message.
func (m *Machine) handleStart(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	sess.Reset()
	if _, err := m.store.GetOrCreate(ctx, ev.UserID, ev.Username); err != nil {
		return models.StateMainMenu, nil, err
	}

	var replies []reply
	if m.cfg.WelcomeImageURL != "" {
		replies = append(replies, reply{photoURL: m.cfg.WelcomeImageURL, text: formatWelcome(ev.FirstName)})
		_, menu, err := m.mainMenu(ctx, sess, ev, msgMainMenu)
		if err != nil {
			return models.StateMainMenu, nil, err
		}
		return models.StateMainMenu, append(replies, menu...), nil
	}
	return m.mainMenu(ctx, sess, ev, formatWelcome(ev.FirstName))
}

// mainMenu renders the main menu with the membership-appropriate
// keyboard.
func (m *Machine) mainMenu(ctx context.Context, sess *Session, ev models.Event, text string) (models.SessionState, []reply, error) {
	p, err := m.store.GetOrCreate(ctx, sess.UserID, ev.Username)
	if err != nil {
		return models.StateMainMenu, nil, err
	}
	keyboard := messaging.KeyboardMainMenu
	if p.IsClubMember {
		keyboard = messaging.KeyboardMainMenuMember
	}
	return models.StateMainMenu, []reply{{text: text, keyboard: keyboard}}, nil
}

// profileView renders the profile view screen.
func (m *Machine) profileView(ctx context.Context, sess *Session) (models.SessionState, []reply, error) {
	p, err := m.store.GetOrCreate(ctx, sess.UserID, "")
	if err != nil {
		return models.StateMainMenu, nil, err
	}
	return models.StateProfileView, []reply{{text: formatProfile(p), keyboard: messaging.KeyboardProfileView}}, nil
}
