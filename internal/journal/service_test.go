package journal

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/thoughts/internal/classifier"
	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/fetcher"
	"github.com/pbaille/thoughts/internal/kv"
	"github.com/pbaille/thoughts/internal/llm"
	"github.com/pbaille/thoughts/internal/metrics"
	"github.com/pbaille/thoughts/internal/store"
)

var testNow = time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC)

type countingPlanner struct {
	inner classifier.Planner
	calls int
}

func (p *countingPlanner) Plan(ctx context.Context, content string, transcript []domain.Message) []domain.ActionItem {
	p.calls++
	return p.inner.Plan(ctx, content, transcript)
}

type fakeChat struct {
	deltas []string
	err    error
	sent   []domain.Message
}

func (f *fakeChat) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	return llm.Collect(f.Stream(ctx, messages))
}

func (f *fakeChat) Stream(_ context.Context, messages []domain.Message) iter.Seq2[string, error] {
	f.sent = messages
	return func(yield func(string, error) bool) {
		for _, d := range f.deltas {
			if !yield(d, nil) {
				return
			}
		}
		if f.err != nil {
			yield("", f.err)
		}
	}
}

type fixture struct {
	svc     *Service
	planner *countingPlanner
	chat    *fakeChat
	keys    []string
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		planner: &countingPlanner{inner: classifier.NewGenerator(classifier.Config{Now: func() time.Time { return testNow }})},
		chat:    &fakeChat{deltas: []string{"What ", "matters most?"}},
	}
	opts := Options{
		Planner: f.planner,
		Chat:    ChatConfig{Provider: "openai", APIKey: "env-key"},
		NewClient: func(_ context.Context, provider, apiKey, model string, _ ...llm.Option) (llm.Client, error) {
			f.keys = append(f.keys, apiKey)
			return f.chat, nil
		},
		Metrics: metrics.New(),
		Now:     func() time.Time { return testNow },
	}
	for _, c := range configure {
		c(&opts)
	}
	svc, err := New(context.Background(), kv.NewMemory(), opts)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	f.svc = svc
	return f
}

func TestScheduleAction_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	note, err := f.svc.AddThought(ctx, "I want to learn Spanish", []string{"language"})
	require.NoError(t, err)
	actions, err := f.svc.GeneratePlan(ctx, note.ID, false)
	require.NoError(t, err)
	require.NotEmpty(t, actions)

	todo, err := f.svc.ScheduleAction(ctx, note.ID, actions[0].ID, domain.Schedule{StartDate: "2025-01-10", StartTime: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, note.ID, todo.ThoughtID)

	onDay, err := f.svc.TodosOn(ctx, "2025-01-10")
	require.NoError(t, err)
	require.Len(t, onDay, 1)
	assert.Equal(t, actions[0].Content, onDay[0].Content)

	cached, err := f.svc.GeneratePlan(ctx, note.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", cached[0].StartDate)
	assert.Equal(t, "09:00", cached[0].StartTime)
}

func TestScheduleAction_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note, err := f.svc.AddThought(ctx, "plan a project", nil)
	require.NoError(t, err)
	actions, err := f.svc.GeneratePlan(ctx, note.ID, false)
	require.NoError(t, err)

	_, err = f.svc.ScheduleAction(ctx, note.ID, actions[0].ID, domain.Schedule{StartDate: "2025-01-10"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.ScheduleAction(ctx, note.ID, "nope", domain.Schedule{StartDate: "2025-01-10", StartTime: "09:00"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	todos, err := f.svc.Todos(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestGeneratePlan_Caches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note, err := f.svc.AddThought(ctx, "health and exercise", nil)
	require.NoError(t, err)

	first, err := f.svc.GeneratePlan(ctx, note.ID, false)
	require.NoError(t, err)
	second, err := f.svc.GeneratePlan(ctx, note.ID, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.planner.calls)

	_, err = f.svc.GeneratePlan(ctx, note.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.planner.calls)

	_, err = f.svc.GeneratePlan(ctx, "missing", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveSelected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note, err := f.svc.AddThought(ctx, "", nil)
	require.Error(t, err)

	note, err = f.svc.AddThought(ctx, "work on my career", nil)
	require.NoError(t, err)
	actions, err := f.svc.GeneratePlan(ctx, note.ID, false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(actions), 2)

	_, err = f.svc.ScheduleAction(ctx, note.ID, actions[1].ID, domain.Schedule{StartDate: "2025-02-01", StartTime: "14:00"})
	require.NoError(t, err)

	saved, err := f.svc.SaveSelected(ctx, note.ID, []string{actions[0].ID, actions[1].ID})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "2025-01-09", saved[0].ScheduledDate)
	assert.Equal(t, "09:00", saved[0].ScheduledTime)
	assert.Equal(t, "2025-02-01", saved[1].ScheduledDate)
	assert.Equal(t, "14:00", saved[1].ScheduledTime)

	today, err := f.svc.TodosOn(ctx, "today")
	require.NoError(t, err)
	assert.Len(t, today, 1)

	_, err = f.svc.SaveSelected(ctx, note.ID, []string{"unknown"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.SaveSelected(ctx, note.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultSelection(t *testing.T) {
	actions := []domain.ActionItem{
		{ID: "1", Priority: domain.PriorityHigh},
		{ID: "2", Priority: domain.PriorityMedium},
		{ID: "3", Priority: domain.PriorityHigh},
		{ID: "4", Priority: domain.PriorityHigh},
		{ID: "5", Priority: domain.PriorityHigh},
	}
	assert.Equal(t, []string{"1", "3", "4"}, DefaultSelection(actions))
	assert.Empty(t, DefaultSelection(nil))
}

func TestTodos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note, err := f.svc.AddThought(ctx, "call grandma", nil)
	require.NoError(t, err)

	todo, err := f.svc.TodoFromThought(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "call grandma", todo.Content)

	toggled, err := f.svc.ToggleTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	date := "2025-01-10"
	edited, err := f.svc.EditTodo(ctx, todo.ID, store.TodoPatch{StartDate: &date})
	require.NoError(t, err)
	assert.Equal(t, date, edited.StartDate)

	tomorrow, err := f.svc.TodosOn(ctx, "tomorrow")
	require.NoError(t, err)
	assert.Len(t, tomorrow, 1)

	require.NoError(t, f.svc.DeleteTodo(ctx, todo.ID))
	all, err := f.svc.Todos(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = f.svc.AddTodo(ctx, store.TodoInput{Content: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConverse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note, err := f.svc.AddThought(ctx, "I feel stuck at work", nil)
	require.NoError(t, err)

	started, err := f.svc.StartConversation(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, started.Transcript(), 2)

	var deltas []string
	reply, err := f.svc.Converse(ctx, note.ID, "Mostly the meetings", func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)

	assert.Equal(t, "What matters most?", reply)
	assert.Equal(t, []string{"What ", "matters most?"}, deltas)
	assert.Equal(t, []string{"env-key"}, f.keys)
	require.Len(t, f.chat.sent, 3)
	assert.Equal(t, domain.RoleSystem, f.chat.sent[0].Role)
	assert.Equal(t, "Mostly the meetings", f.chat.sent[2].Content)

	got, err := f.svc.Thought(ctx, note.ID)
	require.NoError(t, err)
	transcript := got.Transcript()
	require.Len(t, transcript, 4)
	assert.Equal(t, domain.Message{Role: domain.RoleAssistant, Content: "What matters most?"}, transcript[3])

	reset, err := f.svc.ResetConversation(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, reset.Transcript())
}

func TestConverse_StoredKeyAndFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	note, err := f.svc.AddThought(ctx, "thinking", nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.SetAPIKey(ctx, "stored-key"))

	f.chat.err = fmt.Errorf("%w: overloaded", domain.ErrUpstream)
	_, err = f.svc.Converse(ctx, note.ID, "hello", nil)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, []string{"stored-key"}, f.keys)

	got, err := f.svc.Thought(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Transcript())

	_, err = f.svc.Converse(ctx, note.ID, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.SetAPIKey(ctx, ""), domain.ErrInvalidInput)
}

func TestConverse_NotConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *Options) {
		o.Chat.APIKey = ""
		o.NewClient = nil
	})
	note, err := f.svc.AddThought(ctx, "thinking", nil)
	require.NoError(t, err)

	_, err = f.svc.Converse(ctx, note.ID, "hello", nil)
	assert.True(t, errors.Is(err, domain.ErrNotConfigured), "got %v", err)
}

func TestWindow(t *testing.T) {
	var transcript []domain.Message
	transcript = append(transcript, domain.Message{Role: domain.RoleSystem, Content: "old prompt"})
	for i := 0; i < 8; i++ {
		transcript = append(transcript, domain.Message{Role: domain.RoleUser, Content: fmt.Sprint(i)})
	}

	got := Window(transcript)

	require.Len(t, got, 7)
	assert.Equal(t, SystemPrompt, got[0].Content)
	assert.Equal(t, "2", got[1].Content)
	assert.Equal(t, "7", got[6].Content)
}

func TestCaptureURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><title>Habits</title></head><body><p>Small steps compound.</p></body></html>")
	}))
	defer srv.Close()

	f := newFixture(t, func(o *Options) { o.Fetcher = fetcher.New(srv.Client()) })

	note, err := f.svc.CaptureURL(context.Background(), srv.URL, []string{"reading"})
	require.NoError(t, err)
	assert.Contains(t, note.Content, "Habits")
	assert.Contains(t, note.Content, "Small steps compound.")
	assert.Equal(t, []string{"reading"}, note.Tags)
}

func TestThoughtsAndTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.AddThought(ctx, "first", []string{"work", "ideas"})
	require.NoError(t, err)
	_, err = f.svc.AddThought(ctx, "second", []string{"work"})
	require.NoError(t, err)

	content := "first, edited"
	_, err = f.svc.EditThought(ctx, a.ID, store.NotePatch{Content: &content})
	require.NoError(t, err)

	found, err := f.svc.Search(ctx, "EDITED")
	require.NoError(t, err)
	require.Len(t, found, 1)

	assert.Eventually(t, func() bool {
		tags := f.svc.Tags()
		return len(tags) == 2 && tags[0].Name == "work" && tags[0].Count == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, f.svc.DeleteThought(ctx, a.ID))
	all, err := f.svc.Thoughts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
