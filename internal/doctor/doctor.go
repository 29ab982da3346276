// Package doctor implements the dialogue context manager for the
// consultation flow.
//
// It builds the behavioral instruction for the completion service from
// profile attributes, maintains per-session turn history, and can
// reconstruct a lost context from the profile store after a restart.
package doctor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"

	"github.com/salamatyar/salamatbot/internal/genai"
	"github.com/salamatyar/salamatbot/internal/models"
	"github.com/salamatyar/salamatbot/internal/store"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Apology is the fixed user-safe reply substituted for any gateway
// failure (network error, malformed response, timeout). Never retried.
const Apology = "I'm sorry, I couldn't process your question right now. Please try again in a moment."

// RefusalSentence is the fixed reply the assistant is instructed to use
// for non-medical questions.
const RefusalSentence = "I can only help with health-related questions."

// Turn is one message of the active consultation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// BuildContext deterministically renders the consultation instruction for
// the given age and gender.
func BuildContext(age int, gender models.Gender) string {
	patient := "male"
	if gender == models.GenderFemale {
		patient = "female"
	}
	return fmt.Sprintf(`You are a cautious general-practice health assistant. You are talking to a %d-year-old %s patient.
Follow these rules on every turn:
- Ask at most one or two targeted clarifying questions before giving any general guidance.
- Never state a definitive diagnosis and never prescribe medication or dosages.
- If the question is not about health or medicine, reply exactly: "%s"
- Do not open with filler phrases; answer directly.
- If the symptoms sound severe, are getting worse, or otherwise worry you, always recommend seeing a doctor in person.`,
		age, patient, RefusalSentence)
}

// AppendTurn appends one turn to the ordered history. No pruning or
// summarization: the full history of the current consultation is resent
// on every turn, bounded only by the session lifetime.
func AppendTurn(history []Turn, role, text string) []Turn {
	return append(history, Turn{Role: role, Text: text})
}

// Manager submits consultation turns to the completion gateway and
// recovers lost contexts from the profile store.
type Manager struct {
	client genai.ClientInterface
	store  store.Store
}

// NewManager creates a dialogue context manager.
func NewManager(client genai.ClientInterface, st store.Store) *Manager {
	return &Manager{client: client, store: st}
}

// SubmitTurn sends the instruction context, prior history, and the new
// user turn to the completion gateway. On success it returns the trimmed
// assistant text and the history extended with both turns. On any gateway
// failure it returns the fixed apology and the history unchanged, so the
// failed turn is not resent on the next exchange.
func (m *Manager) SubmitTurn(ctx context.Context, contextPrompt string, history []Turn, userText string) (string, []Turn) {
	messages := buildMessages(contextPrompt, history, userText)

	reply, err := m.client.GenerateWithMessages(ctx, messages)
	if err != nil {
		slog.Error("doctor.SubmitTurn: gateway failure, substituting apology", "error", err, "historyLength", len(history))
		return Apology, history
	}

	reply = strings.TrimSpace(reply)
	history = AppendTurn(history, RoleUser, userText)
	history = AppendTurn(history, RoleAssistant, reply)
	slog.Debug("doctor.SubmitTurn: turn completed", "historyLength", len(history), "replyLength", len(reply))
	return reply, history
}

// RecoverContext rebuilds the consultation context from the profile store.
// It is invoked whenever the consultation state is entered without a
// cached context, e.g. after a process restart. If age or gender is
// missing the caller must redirect to profile completion: the
// consultation state is never entered with a missing context.
func (m *Manager) RecoverContext(ctx context.Context, userID int64) (string, bool, error) {
	profile, err := m.store.Get(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("failed to read profile for context recovery: %w", err)
	}
	if profile == nil || !profile.HasBasicProfile() {
		slog.Debug("doctor.RecoverContext: profile incomplete, redirecting to profile completion", "userID", userID)
		return "", false, nil
	}
	slog.Debug("doctor.RecoverContext: context rebuilt from profile", "userID", userID)
	return BuildContext(profile.Age, profile.Gender), true, nil
}

// buildMessages assembles the gateway request: instruction first, then
// the ordered turns, then the new user message.
func buildMessages(contextPrompt string, history []Turn, userText string) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(contextPrompt)}
	for _, turn := range history {
		switch turn.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(turn.Text))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Text))
		}
	}
	return append(messages, openai.UserMessage(userText))
}
