package flow

import (
	"context"
	"fmt"

	"github.com/salamatyar/salamatbot/internal/doctor"
	"github.com/salamatyar/salamatbot/internal/gamify"
	"github.com/salamatyar/salamatbot/internal/messaging"
	"github.com/salamatyar/salamatbot/internal/models"
)

// handleMainMenu routes the home menu selections.
func (m *Machine) handleMainMenu(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	switch ev.Payload {
	case models.PayloadConsult:
		p, err := m.store.GetOrCreate(ctx, sess.UserID, ev.Username)
		if err != nil {
			return sess.State, nil, err
		}
		if p.IsComplete() {
			return m.enterDoctor(sess, p)
		}
		return m.beginProfileChain(sess, models.FlowConsult)

	case models.PayloadJoinClub:
		p, err := m.store.GetOrCreate(ctx, sess.UserID, ev.Username)
		if err != nil {
			return sess.State, nil, err
		}
		if p.IsClubMember {
			return models.StateMainMenu, []reply{{text: msgClubJoined, keyboard: messaging.KeyboardMainMenuMember}}, nil
		}
		if p.IsComplete() {
			return models.StateAwaitingClubJoinConfirm, []reply{{text: msgClubJoinPrompt, keyboard: messaging.KeyboardYesNo}}, nil
		}
		return m.beginProfileChain(sess, models.FlowClubJoin)

	case models.PayloadViewProfile:
		p, err := m.store.GetOrCreate(ctx, sess.UserID, ev.Username)
		if err != nil {
			return sess.State, nil, err
		}
		if !p.IsClubMember {
			return models.StateMainMenu, []reply{{text: msgMembersOnly, keyboard: messaging.KeyboardMainMenu}}, nil
		}
		return m.profileView(ctx, sess)

	case models.PayloadWellnessTip:
		p, err := m.store.GetOrCreate(ctx, sess.UserID, ev.Username)
		if err != nil {
			return sess.State, nil, err
		}
		if !p.IsClubMember {
			return models.StateMainMenu, []reply{{text: msgMembersOnly, keyboard: messaging.KeyboardMainMenu}}, nil
		}
		tip := wellnessTips[p.ClubTipUsageCount%len(wellnessTips)]
		award, err := m.engine.TipViewed(ctx, p)
		if err != nil {
			return sess.State, nil, err
		}
		replies := []reply{{text: tip, keyboard: messaging.KeyboardMainMenuMember}}
		replies = append(replies, awardReplies(award)...)
		return models.StateMainMenu, replies, nil

	case models.PayloadCatalog:
		text := "Our product catalog is coming soon."
		if m.cfg.CatalogURL != "" {
			text = fmt.Sprintf("Browse our product catalog here: %s", m.cfg.CatalogURL)
		}
		return models.StateMainMenu, []reply{{text: text, keyboard: messaging.KeyboardBackToMenu}}, nil
	}

	// Free text in the menu: re-prompt without changing state.
	return m.mainMenu(ctx, sess, ev, msgUseButtons)
}

// beginProfileChain starts the sequential profile completion, recording
// which flow asked for it.
func (m *Machine) beginProfileChain(sess *Session, flow models.CompletionFlow) (models.SessionState, []reply, error) {
	sess.Draft = ProfileDraft{}
	sess.AfterProfile = flow
	return models.StateAwaitingFirstName, []reply{{text: msgAskFirstName, keyboard: messaging.KeyboardBackToMenu}}, nil
}

func (m *Machine) handleAwaitFirstName(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	if ev.Text == "" {
		return sess.State, []reply{{text: msgAskFirstName, keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	name, err := models.ValidateName(ev.Text)
	if err != nil {
		return sess.State, []reply{{text: validationMessage(err), keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	sess.Draft.FirstName = name
	return models.StateAwaitingLastName, []reply{{text: msgAskLastName, keyboard: messaging.KeyboardBackToMenu}}, nil
}

func (m *Machine) handleAwaitLastName(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	if ev.Text == "" {
		return sess.State, []reply{{text: msgAskLastName, keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	name, err := models.ValidateName(ev.Text)
	if err != nil {
		return sess.State, []reply{{text: validationMessage(err), keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	sess.Draft.LastName = name
	return models.StateAwaitingAge, []reply{{text: msgAskAge, keyboard: messaging.KeyboardBackToMenu}}, nil
}

func (m *Machine) handleAwaitAge(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	if ev.Text == "" {
		return sess.State, []reply{{text: msgAskAge, keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	age, err := models.ValidateAge(ev.Text)
	if err != nil {
		return sess.State, []reply{{text: validationMessage(err), keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	sess.Draft.Age = age
	return models.StateAwaitingGender, []reply{{text: msgAskGender, keyboard: messaging.KeyboardGender}}, nil
}

func (m *Machine) handleAwaitGender(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	var gender models.Gender
	switch ev.Payload {
	case models.PayloadGenderFemale:
		gender = models.GenderFemale
	case models.PayloadGenderMale:
		gender = models.GenderMale
	default:
		g, err := models.ParseGender(ev.Text)
		if err != nil {
			return sess.State, []reply{{text: validationMessage(err), keyboard: messaging.KeyboardGender}}, nil
		}
		gender = g
	}
	sess.Draft.Gender = gender
	return m.commitDraft(ctx, sess)
}

// commitDraft writes the completed draft to the profile in one update,
// evaluates the one-time completion awards, and branches to the flow
// that requested completion.
func (m *Machine) commitDraft(ctx context.Context, sess *Session) (models.SessionState, []reply, error) {
	d := sess.Draft
	err := m.store.Update(ctx, sess.UserID, models.ProfileUpdate{
		FirstName: &d.FirstName,
		LastName:  &d.LastName,
		Age:       &d.Age,
		Gender:    &d.Gender,
	})
	if err != nil {
		return sess.State, nil, err
	}
	sess.Draft = ProfileDraft{}

	p, err := m.store.Get(ctx, sess.UserID)
	if err != nil {
		return sess.State, nil, err
	}
	if p == nil {
		return sess.State, nil, fmt.Errorf("profile missing after draft commit for %d", sess.UserID)
	}

	var replies []reply
	basic, err := m.engine.BasicProfileCompleted(ctx, p)
	if err != nil {
		return sess.State, nil, err
	}
	replies = append(replies, awardReplies(basic)...)

	if basic != nil {
		p, err = m.store.Get(ctx, sess.UserID)
		if err != nil {
			return sess.State, nil, err
		}
	}
	full, err := m.engine.FullProfileCompleted(ctx, p)
	if err != nil {
		return sess.State, nil, err
	}
	replies = append(replies, awardReplies(full)...)

	requested := sess.AfterProfile
	sess.AfterProfile = ""
	if requested == models.FlowClubJoin {
		return models.StateAwaitingClubJoinConfirm,
			append(replies, reply{text: msgClubJoinPrompt, keyboard: messaging.KeyboardYesNo}), nil
	}

	next, doctorReplies, err := m.enterDoctor(sess, p)
	if err != nil {
		return sess.State, nil, err
	}
	return next, append(replies, doctorReplies...), nil
}

// enterDoctor builds the consultation context from the profile and
// enters the consultation state with a fresh history.
func (m *Machine) enterDoctor(sess *Session, p *models.UserProfile) (models.SessionState, []reply, error) {
	sess.DoctorContext = doctor.BuildContext(p.Age, p.Gender)
	sess.DoctorHistory = nil
	return models.StateDoctorConversation, []reply{{text: msgDoctorIntro, keyboard: messaging.KeyboardDoctor}}, nil
}

func (m *Machine) handleDoctorConversation(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	if ev.Payload == models.PayloadNewQuestion {
		sess.DoctorHistory = nil
		return models.StateDoctorConversation, []reply{{text: msgNewQuestion, keyboard: messaging.KeyboardDoctor}}, nil
	}
	if ev.Text == "" {
		return sess.State, []reply{{text: msgUseButtons, keyboard: messaging.KeyboardDoctor}}, nil
	}

	// A lost context (e.g. after a restart) is rebuilt from the profile
	// before the turn runs; if the profile is incomplete the user is
	// redirected to profile completion instead.
	if sess.DoctorContext == "" {
		prompt, ok, err := m.doctor.RecoverContext(ctx, sess.UserID)
		if err != nil {
			return sess.State, nil, err
		}
		if !ok {
			return m.beginProfileChain(sess, models.FlowConsult)
		}
		sess.DoctorContext = prompt
	}

	answer, history := m.doctor.SubmitTurn(ctx, sess.DoctorContext, sess.DoctorHistory, ev.Text)
	sess.DoctorHistory = history
	return models.StateDoctorConversation, []reply{{text: answer, keyboard: messaging.KeyboardDoctor}}, nil
}

func (m *Machine) handleClubJoinConfirm(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	switch ev.Payload {
	case models.PayloadYes:
		p, err := m.store.GetOrCreate(ctx, sess.UserID, ev.Username)
		if err != nil {
			return sess.State, nil, err
		}
		award, err := m.engine.ClubJoined(ctx, p)
		if err != nil {
			return sess.State, nil, err
		}
		replies := []reply{{text: msgClubJoined, keyboard: messaging.KeyboardNone}}
		replies = append(replies, awardReplies(award)...)
		_, menu, err := m.mainMenu(ctx, sess, ev, msgMainMenu)
		if err != nil {
			return sess.State, nil, err
		}
		return models.StateMainMenu, append(replies, menu...), nil

	case models.PayloadNo:
		_, menu, err := m.mainMenu(ctx, sess, ev, msgClubDeclined)
		if err != nil {
			return sess.State, nil, err
		}
		return models.StateMainMenu, menu, nil
	}

	return sess.State, []reply{{text: msgConfirmYesOrNo, keyboard: messaging.KeyboardYesNo}}, nil
}

func (m *Machine) handleProfileView(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	switch ev.Payload {
	case models.PayloadEditName:
		sess.Draft = ProfileDraft{}
		return models.StateAwaitingEditFirstName, []reply{{text: msgAskEditFirstName, keyboard: messaging.KeyboardBackToMenu}}, nil
	case models.PayloadCancelMembership:
		return models.StateAwaitingCancelConfirm, []reply{{text: msgCancelConfirm, keyboard: messaging.KeyboardYesNo}}, nil
	}
	return m.profileView(ctx, sess)
}

func (m *Machine) handleCancelConfirm(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	switch ev.Payload {
	case models.PayloadYes:
		if err := m.engine.CancelMembership(ctx, sess.UserID); err != nil {
			return sess.State, nil, err
		}
		sess.Reset()
		return models.StateMainMenu, []reply{{text: msgCancelled, keyboard: messaging.KeyboardMainMenu}}, nil
	case models.PayloadNo:
		return m.profileView(ctx, sess)
	}
	return sess.State, []reply{{text: msgConfirmYesOrNo, keyboard: messaging.KeyboardYesNo}}, nil
}

func (m *Machine) handleEditFirstName(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	if ev.Text == "" {
		return sess.State, []reply{{text: msgAskEditFirstName, keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	name, err := models.ValidateName(ev.Text)
	if err != nil {
		return sess.State, []reply{{text: validationMessage(err), keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	sess.Draft.FirstName = name
	return models.StateAwaitingEditLastName, []reply{{text: msgAskEditLastName, keyboard: messaging.KeyboardBackToMenu}}, nil
}

func (m *Machine) handleEditLastName(ctx context.Context, sess *Session, ev models.Event) (models.SessionState, []reply, error) {
	if ev.Text == "" {
		return sess.State, []reply{{text: msgAskEditLastName, keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	name, err := models.ValidateName(ev.Text)
	if err != nil {
		return sess.State, []reply{{text: validationMessage(err), keyboard: messaging.KeyboardBackToMenu}}, nil
	}
	sess.Draft.LastName = name

	d := sess.Draft
	err = m.store.Update(ctx, sess.UserID, models.ProfileUpdate{
		FirstName: &d.FirstName,
		LastName:  &d.LastName,
	})
	if err != nil {
		return sess.State, nil, err
	}
	sess.Draft = ProfileDraft{}

	p, err := m.store.Get(ctx, sess.UserID)
	if err != nil {
		return sess.State, nil, err
	}

	replies := []reply{{text: msgNameUpdated, keyboard: messaging.KeyboardNone}}
	if p != nil {
		award, err := m.engine.FullProfileCompleted(ctx, p)
		if err != nil {
			return sess.State, nil, err
		}
		replies = append(replies, awardReplies(award)...)
	}

	_, view, err := m.profileView(ctx, sess)
	if err != nil {
		return sess.State, nil, err
	}
	return models.StateProfileView, append(replies, view...), nil
}

// awardReplies renders an award as its notification message plus, for
// badge grants, a congratulatory message.
func awardReplies(a *gamify.Award) []reply {
	if a == nil {
		return nil
	}
	var replies []reply
	if a.Points > 0 {
		replies = append(replies, reply{text: formatAward(a), keyboard: messaging.KeyboardNone})
	}
	if a.Badge != "" {
		replies = append(replies, reply{text: formatBadge(a.Badge), keyboard: messaging.KeyboardNone})
	}
	return replies
}
