package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/thoughts/internal/classifier"
	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/journal"
	"github.com/pbaille/thoughts/internal/kv"
)

var testNow = time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (*Server, *journal.Service) {
	t.Helper()
	svc, err := journal.New(context.Background(), kv.NewMemory(), journal.Options{
		Planner: classifier.NewGenerator(classifier.Config{Now: func() time.Time { return testNow }}),
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return New(svc), svc
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCP_RegistersTools(t *testing.T) {
	s, _ := newServer(t)
	assert.NotNil(t, s.MCP("test"))
}

func TestGenerateActionPlan(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	res, err := s.generateActionPlan(ctx, call(map[string]any{
		"content": "I want to learn Spanish",
		"transcript": []any{
			map[string]any{"role": "assistant", "content": "Start with ten minutes a day."},
		},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var actions []domain.ActionItem
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &actions))
	assert.NotEmpty(t, actions)
	assert.LessOrEqual(t, len(actions), classifier.MaxItems)

	res, err = s.generateActionPlan(ctx, call(map[string]any{"content": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.generateActionPlan(ctx, call(map[string]any{"content": "x", "transcript": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAddThoughtAndSchedule(t *testing.T) {
	s, svc := newServer(t)
	ctx := context.Background()

	res, err := s.addThought(ctx, call(map[string]any{"content": "Plan the move", "tags": "home, family"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "saved")

	notes, err := svc.Thoughts(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, []string{"home", "family"}, notes[0].Tags)

	actions, err := svc.GeneratePlan(ctx, notes[0].ID, false)
	require.NoError(t, err)

	res, err = s.scheduleAction(ctx, call(map[string]any{
		"thought_id": notes[0].ID,
		"action_id":  actions[0].ID,
		"start_date": "2025-01-10",
		"start_time": "10:00",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	res, err = s.listTodos(ctx, call(map[string]any{"date": "tomorrow"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), actions[0].Content)
	assert.Contains(t, text(t, res), "(2025-01-10)")

	res, err = s.listTodos(ctx, call(map[string]any{"date": "2025-02-01"}))
	require.NoError(t, err)
	assert.Equal(t, "No todos.", text(t, res))

	res, err = s.scheduleAction(ctx, call(map[string]any{
		"thought_id": notes[0].ID,
		"action_id":  actions[0].ID,
		"start_date": "2025-01-10",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAddThought_Empty(t *testing.T) {
	s, _ := newServer(t)
	res, err := s.addThought(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
