package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"

	"github.com/salamatyar/salamatbot/internal/models"
	"github.com/salamatyar/salamatbot/internal/store"
)

// fakeClient returns a canned reply or error and records the messages it
// was called with.
type fakeClient struct {
	reply    string
	err      error
	lastMsgs []openai.ChatCompletionMessageParamUnion
	calls    int
}

func (f *fakeClient) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	f.calls++
	f.lastMsgs = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestBuildContextIsDeterministic(t *testing.T) {
	a := BuildContext(34, models.GenderMale)
	b := BuildContext(34, models.GenderMale)
	if a != b {
		t.Error("BuildContext must be deterministic")
	}
	if !strings.Contains(a, "34-year-old male") {
		t.Errorf("context missing age/gender: %q", a)
	}
	if !strings.Contains(a, RefusalSentence) {
		t.Error("context missing refusal sentence")
	}
	if c := BuildContext(62, models.GenderFemale); !strings.Contains(c, "62-year-old female") {
		t.Errorf("context missing female variant: %q", c)
	}
}

func TestAppendTurnPreservesOrder(t *testing.T) {
	var history []Turn
	history = AppendTurn(history, RoleUser, "hello")
	history = AppendTurn(history, RoleAssistant, "hi")
	history = AppendTurn(history, RoleUser, "my head hurts")
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[0].Text != "hello" || history[2].Role != RoleUser {
		t.Errorf("history order broken: %+v", history)
	}
}

func TestSubmitTurnAppendsBothTurns(t *testing.T) {
	client := &fakeClient{reply: "  Can you describe the pain?  "}
	m := NewManager(client, store.NewMemoryStore())

	reply, history := m.SubmitTurn(context.Background(), "instructions", nil, "my head hurts")
	if reply != "Can you describe the pain?" {
		t.Errorf("reply = %q, want trimmed assistant text", reply)
	}
	if len(history) != 2 || history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Errorf("history = %+v, want user then assistant turn", history)
	}
	// One system message, then the user turn.
	if len(client.lastMsgs) != 2 {
		t.Errorf("gateway received %d messages, want 2", len(client.lastMsgs))
	}
}

func TestSubmitTurnResendsFullHistory(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	m := NewManager(client, store.NewMemoryStore())

	history := []Turn{
		{Role: RoleUser, Text: "first"},
		{Role: RoleAssistant, Text: "answer"},
	}
	_, history = m.SubmitTurn(context.Background(), "instructions", history, "second")
	// system + 2 prior turns + new user turn
	if len(client.lastMsgs) != 4 {
		t.Errorf("gateway received %d messages, want 4", len(client.lastMsgs))
	}
	if len(history) != 4 {
		t.Errorf("history length = %d, want 4", len(history))
	}
}

func TestSubmitTurnGatewayFailureReturnsApology(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	m := NewManager(client, store.NewMemoryStore())

	prior := []Turn{{Role: RoleUser, Text: "q"}, {Role: RoleAssistant, Text: "a"}}
	reply, history := m.SubmitTurn(context.Background(), "instructions", prior, "another question")
	if reply != Apology {
		t.Errorf("reply = %q, want the fixed apology", reply)
	}
	if len(history) != len(prior) {
		t.Errorf("failed turn must not be appended to history, got %d turns", len(history))
	}
}

func TestRecoverContextWithCompleteProfile(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	st.GetOrCreate(ctx, 5, "u")
	age, gender := 40, models.GenderFemale
	st.Update(ctx, 5, models.ProfileUpdate{Age: &age, Gender: &gender})

	m := NewManager(&fakeClient{}, st)
	prompt, ok, err := m.RecoverContext(ctx, 5)
	if err != nil {
		t.Fatalf("RecoverContext error: %v", err)
	}
	if !ok {
		t.Fatal("expected recovery to succeed for a complete profile")
	}
	if prompt != BuildContext(40, models.GenderFemale) {
		t.Error("recovered prompt does not match BuildContext output")
	}
}

func TestRecoverContextRedirectsWhenProfileIncomplete(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	m := NewManager(&fakeClient{}, st)

	// Absent profile.
	if _, ok, err := m.RecoverContext(ctx, 99); err != nil || ok {
		t.Errorf("absent profile: ok=%v err=%v, want redirect", ok, err)
	}

	// Age set but gender missing.
	st.GetOrCreate(ctx, 6, "u")
	age := 30
	st.Update(ctx, 6, models.ProfileUpdate{Age: &age})
	if _, ok, err := m.RecoverContext(ctx, 6); err != nil || ok {
		t.Errorf("partial profile: ok=%v err=%v, want redirect", ok, err)
	}
}
