// Package models defines session state structures for Salamatbot flows.
package models

// SessionState identifies a node of the session state machine.
type SessionState string

const (
	StateMainMenu                SessionState = "MAIN_MENU"
	StateAwaitingFirstName       SessionState = "AWAITING_PROFILE_FIRST_NAME"
	StateAwaitingLastName        SessionState = "AWAITING_PROFILE_LAST_NAME"
	StateAwaitingAge             SessionState = "AWAITING_PROFILE_AGE"
	StateAwaitingGender          SessionState = "AWAITING_PROFILE_GENDER"
	StateDoctorConversation      SessionState = "DOCTOR_CONVERSATION"
	StateAwaitingClubJoinConfirm SessionState = "AWAITING_CLUB_JOIN_CONFIRMATION"
	StateProfileView             SessionState = "PROFILE_VIEW"
	StateAwaitingCancelConfirm   SessionState = "AWAITING_CANCEL_MEMBERSHIP_CONFIRMATION"
	StateAwaitingEditFirstName   SessionState = "AWAITING_EDIT_FIRST_NAME"
	StateAwaitingEditLastName    SessionState = "AWAITING_EDIT_LAST_NAME"
)

// CompletionFlow records which flow requested profile completion, so the
// machine can branch back to it once the profile chain finishes.
type CompletionFlow string

const (
	// FlowConsult resumes the doctor consultation after profile completion.
	FlowConsult CompletionFlow = "consult"
	// FlowClubJoin resumes the club join confirmation after profile completion.
	FlowClubJoin CompletionFlow = "club_join"
)
