package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/thoughts/internal/domain"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	last  []domain.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []domain.Message) (string, error) {
	f.calls++
	f.last = messages
	return f.reply, f.err
}

func newRemote(t *testing.T, c Completer, onFailure func(error)) *Remote {
	t.Helper()
	r, err := NewRemote(RemoteConfig{Completer: c, OnFailure: onFailure})
	require.NoError(t, err)
	return r
}

func TestRemote_ParsesFencedReply(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n" + `[
  {"id": "a1", "content": "Read chapter one", "priority": "high", "timeEstimate": "30 min", "category": "learning"},
  {"content": "Walk", "priority": "urgent", "timeEstimate": "20 min", "category": "health"},
  {"content": "Missing fields", "priority": "low"}
]` + "\n```"}
	r := newRemote(t, fc, nil)

	got := r.Plan(context.Background(), "learn to read", []domain.Message{{Role: domain.RoleUser, Content: "hi"}})

	require.Len(t, got, 2)
	assert.Equal(t, HashID(Seed("learn to read", []domain.Message{{Role: domain.RoleUser, Content: "hi"}}), 0), got[0].ID)
	assert.Equal(t, domain.PriorityMedium, got[1].Priority)
	assert.NotEmpty(t, got[1].ID)

	require.Len(t, fc.last, 2)
	assert.Equal(t, domain.RoleSystem, fc.last[0].Role)
	assert.Contains(t, fc.last[1].Content, "learn to read")
	assert.Contains(t, fc.last[1].Content, "user: hi")
}

func TestRemote_RepairsEmbeddedJSON(t *testing.T) {
	fc := &fakeCompleter{reply: `Here is your plan: [{"content": "Plan the week", "priority": "high", "timeEstimate": "15 min", "category": "planning",},] Enjoy!`}
	r := newRemote(t, fc, nil)

	got := r.Plan(context.Background(), "week", nil)

	require.Len(t, got, 1)
	assert.Equal(t, "Plan the week", got[0].Content)
}

func TestRemote_CapsAtFive(t *testing.T) {
	item := `{"content": "x", "priority": "low", "timeEstimate": "1 min", "category": "c"}`
	fc := &fakeCompleter{reply: "[" + item + "," + item + "," + item + "," + item + "," + item + "," + item + "]"}
	r := newRemote(t, fc, nil)

	assert.Len(t, r.Plan(context.Background(), "note", nil), MaxItems)
}

func TestRemote_DegradesToEmpty(t *testing.T) {
	for name, fc := range map[string]*fakeCompleter{
		"transport": {err: errors.New("connection refused")},
		"no json":   {reply: "I cannot help with that."},
	} {
		t.Run(name, func(t *testing.T) {
			var failures []error
			r := newRemote(t, fc, func(err error) { failures = append(failures, err) })

			got := r.Plan(context.Background(), "note", nil)

			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.Len(t, failures, 1)
		})
	}
}

func TestRemote_EmptyContent(t *testing.T) {
	fc := &fakeCompleter{}
	r := newRemote(t, fc, nil)

	_, err := r.Request(context.Background(), "  ", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, fc.calls)
}

func TestRemote_Caches(t *testing.T) {
	fc := &fakeCompleter{reply: `[{"content": "Plan", "priority": "high", "timeEstimate": "15 min", "category": "planning"}]`}
	r := newRemote(t, fc, nil)

	first := r.Plan(context.Background(), "note", nil)
	first[0].Content = "mutated"
	second := r.Plan(context.Background(), "note", nil)

	assert.Equal(t, 1, fc.calls)
	assert.Equal(t, "Plan", second[0].Content)
}

func TestNewRemote_RequiresCompleter(t *testing.T) {
	_, err := NewRemote(RemoteConfig{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestRemote_ReplacesEchoedIDs(t *testing.T) {
	fc := &fakeCompleter{reply: `[
  {"id": "unique_id", "content": "Draft the outline", "priority": "high", "timeEstimate": "30 min", "category": "planning"},
  {"id": "unique_id", "content": "Email the editor", "priority": "high", "timeEstimate": "10 min", "category": "communication"}
]`}
	r := newRemote(t, fc, nil)

	got := r.Plan(context.Background(), "write the book", nil)

	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.NotEqual(t, "unique_id", got[0].ID)
	assert.Equal(t, HashID(Seed("write the book", nil), 1), got[1].ID)
}

func TestRemote_OrdersByPriority(t *testing.T) {
	fc := &fakeCompleter{reply: `[
  {"content": "Tidy the desk", "priority": "low", "timeEstimate": "5 min", "category": "home"},
  {"content": "Call the bank", "priority": "medium", "timeEstimate": "15 min", "category": "finance"},
  {"content": "Submit the report", "priority": "high", "timeEstimate": "1 hour", "category": "work"},
  {"content": "Book the dentist", "priority": "medium", "timeEstimate": "5 min", "category": "health"}
]`}
	r := newRemote(t, fc, nil)

	got := r.Plan(context.Background(), "busy week", nil)

	require.Len(t, got, 4)
	var contents []string
	for _, a := range got {
		contents = append(contents, a.Content)
	}
	assert.Equal(t, []string{"Submit the report", "Call the bank", "Book the dentist", "Tidy the desk"}, contents)
}

func TestRemote_PromptSkipsSystemMessages(t *testing.T) {
	fc := &fakeCompleter{reply: "[]"}
	r := newRemote(t, fc, nil)

	r.Plan(context.Background(), "a thought", []domain.Message{
		{Role: domain.RoleSystem, Content: "You are a thinking partner"},
		{Role: domain.RoleUser, Content: "a thought"},
		{Role: domain.RoleAssistant, Content: "Tell me more"},
	})

	require.Len(t, fc.last, 2)
	assert.NotContains(t, fc.last[1].Content, "You are a thinking partner")
	assert.Contains(t, fc.last[1].Content, "assistant: Tell me more")
}
