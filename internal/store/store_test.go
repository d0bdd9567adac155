package store

import (
	"context"
	"testing"
	"time"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"#work", "idea", "x"}, ParseTags(" #work, idea  x,,"))
	assert.Nil(t, ParseTags("  ,  "))
}

func TestNotes_CRUD(t *testing.T) {
	ctx := context.Background()
	notes := NewNotes(kv.NewMemory())

	_, err := notes.Create(ctx, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := notes.Create(ctx, " learn Go generics ", []string{"#go"})
	require.NoError(t, err)
	assert.Equal(t, "learn Go generics", n.Content)
	assert.NotEmpty(t, n.ID)

	got, err := notes.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Content, got.Content)

	resolved, err := notes.Resolve(ctx, n.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, n.ID, resolved.ID)

	content := "learn Go iterators"
	updated, err := notes.Update(ctx, n.ID, NotePatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)
	assert.Equal(t, []string{"#go"}, updated.Tags)

	require.NoError(t, notes.Delete(ctx, n.ID))
	_, err = notes.Get(ctx, n.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, notes.Delete(ctx, n.ID), domain.ErrNotFound)
}

func TestNotes_ListNewestFirstAndSearch(t *testing.T) {
	ctx := context.Background()
	notes := NewNotes(kv.NewMemory())
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	notes.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := notes.Create(ctx, "Morning run felt great", []string{"health"})
	require.NoError(t, err)
	second, err := notes.Create(ctx, "Project kickoff notes", []string{"#Work"})
	require.NoError(t, err)

	list, err := notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	byContent, err := notes.Search(ctx, "KICKOFF")
	require.NoError(t, err)
	require.Len(t, byContent, 1)
	assert.Equal(t, second.ID, byContent[0].ID)

	byTag, err := notes.Search(ctx, "heal")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, first.ID, byTag[0].ID)

	empty, err := notes.Search(ctx, " ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNotes_ConversationAndActions(t *testing.T) {
	ctx := context.Background()
	notes := NewNotes(kv.NewMemory())

	n, err := notes.Create(ctx, "thinking about friends", nil)
	require.NoError(t, err)
	assert.Nil(t, n.Transcript())

	msgs := []domain.Message{{Role: domain.RoleUser, Content: "hi"}}
	_, err = notes.SetConversation(ctx, n.ID, msgs)
	require.NoError(t, err)

	actions := []domain.ActionItem{{ID: "a-0", Content: "call mum", Priority: domain.PriorityHigh}}
	_, err = notes.SetGeneratedActions(ctx, n.ID, actions)
	require.NoError(t, err)

	got, err := notes.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, msgs, got.Transcript())
	assert.Equal(t, actions, got.GeneratedActions)

	_, err = notes.SetConversation(ctx, "missing", msgs)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cleared, err := notes.ClearConversation(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Transcript())
	assert.Equal(t, actions, cleared.GeneratedActions)
}

func TestNotes_ResolveEmptyPrefix(t *testing.T) {
	ctx := context.Background()
	notes := NewNotes(kv.NewMemory())
	_, err := notes.Create(ctx, "a", nil)
	require.NoError(t, err)
	_, err = notes.Create(ctx, "b", nil)
	require.NoError(t, err)

	// the empty prefix never matches
	_, err = notes.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTodos_CRUDAndToggle(t *testing.T) {
	ctx := context.Background()
	todos := NewTodos(kv.NewMemory())

	_, err := todos.Create(ctx, TodoInput{Content: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	todo, err := todos.Create(ctx, TodoInput{Content: "write report", ThoughtID: "n1"})
	require.NoError(t, err)
	assert.False(t, todo.Done)

	toggled, err := todos.Toggle(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	toggled, err = todos.Toggle(ctx, todo.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Done)

	date := "2025-02-01"
	updated, err := todos.Update(ctx, todo.ID, TodoPatch{ScheduledDate: &date})
	require.NoError(t, err)
	assert.Equal(t, date, updated.ScheduledDate)
	assert.Equal(t, "write report", updated.Content)

	require.NoError(t, todos.Delete(ctx, todo.ID))
	_, err = todos.Toggle(ctx, todo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTodos_ByDate(t *testing.T) {
	ctx := context.Background()
	todos := NewTodos(kv.NewMemory())

	created, err := todos.CreateMany(ctx, []TodoInput{
		{Content: "legacy", ScheduledDate: "2025-01-10", ScheduledTime: "08:00"},
		{Content: "single day", StartDate: "2025-01-10", StartTime: "09:00"},
		{Content: "range", StartDate: "2025-01-08", EndDate: "2025-01-12", StartTime: "10:00"},
		{Content: "other day", StartDate: "2025-01-11", StartTime: "09:00"},
		{Content: "unscheduled"},
	})
	require.NoError(t, err)
	require.Len(t, created, 5)

	contents := func(list []domain.Todo) []string {
		var out []string
		for _, td := range list {
			out = append(out, td.Content)
		}
		return out
	}

	on10, err := todos.ByDate(ctx, "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy", "single day", "range"}, contents(on10))

	// range bounds are inclusive
	on12, err := todos.ByDate(ctx, "2025-01-12")
	require.NoError(t, err)
	assert.Equal(t, []string{"range"}, contents(on12))

	on13, err := todos.ByDate(ctx, "2025-01-13")
	require.NoError(t, err)
	assert.Empty(t, on13)

	_, err = todos.ByDate(ctx, "10/01/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	settings := NewSettings(kv.NewMemory())

	key, err := settings.APIKey(ctx, "openai")
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, settings.SetAPIKey(ctx, "openai", "sk-test"))
	key, err = settings.APIKey(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	notion, err := settings.Notion(ctx)
	require.NoError(t, err)
	assert.False(t, notion.Configured())

	require.NoError(t, settings.SaveNotion(ctx, domain.NotionSettings{Token: "secret", DatabaseID: "db", SyncEnabled: true}))
	notion, err = settings.Notion(ctx)
	require.NoError(t, err)
	assert.True(t, notion.Configured())
	assert.True(t, notion.SyncEnabled)
}

func TestBuildTags(t *testing.T) {
	tags := BuildTags([]domain.Note{
		{ID: "1", Tags: []string{"b", "a"}},
		{ID: "2", Tags: []string{"a"}},
		{ID: "3", Tags: []string{"c"}},
	})
	require.Len(t, tags, 3)
	assert.Equal(t, domain.TagInfo{Name: "a", Count: 2, ThoughtIDs: []string{"1", "2"}}, tags[0])
	assert.Equal(t, "b", tags[1].Name)
	assert.Equal(t, "c", tags[2].Name)
}

func TestTagIndex_FollowsWrites(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemory()
	notes := NewNotes(s)

	_, err := notes.Create(ctx, "first", []string{"idea"})
	require.NoError(t, err)

	idx, err := NewTagIndex(ctx, s, notes, nil)
	require.NoError(t, err)
	defer idx.Close()
	require.Len(t, idx.Tags(), 1)

	_, err = notes.Create(ctx, "second", []string{"idea", "work"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		tags := idx.Tags()
		return len(tags) == 2 && tags[0].Name == "idea" && tags[0].Count == 2
	}, time.Second, 10*time.Millisecond)
}
