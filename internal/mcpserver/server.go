// Package mcpserver exposes the journal as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/journal"
	"github.com/pbaille/thoughts/internal/store"
)

const (
	serverName = "thoughts"
	maxSnippet = 80
)

// Server holds the tool handlers
type Server struct {
	journal *journal.Service
}

// New creates the tool handlers over svc
func New(svc *journal.Service) *Server {
	return &Server{journal: svc}
}

// MCP builds the MCP server with every tool registered
func (s *Server) MCP(version string) *server.MCPServer {
	m := server.NewMCPServer(serverName, version)

	m.AddTool(mcp.NewTool("generate_action_plan",
		mcp.WithDescription("Proposes up to five prioritized, categorized action items for a journal entry."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The journal entry text")),
		mcp.WithArray("transcript",
			mcp.Description("Optional conversation about the entry, as {role, content} messages"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"role":    map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
			}),
		),
	), s.generateActionPlan)

	m.AddTool(mcp.NewTool("add_thought",
		mcp.WithDescription("Records a new journal entry."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The entry text")),
		mcp.WithString("tags", mcp.Description("Optional tags separated by commas or spaces")),
	), s.addThought)

	m.AddTool(mcp.NewTool("list_todos",
		mcp.WithDescription("Lists todos, optionally only those on a date."),
		mcp.WithString("date", mcp.Description("YYYY-MM-DD, 'today' or 'tomorrow'")),
	), s.listTodos)

	m.AddTool(mcp.NewTool("schedule_action",
		mcp.WithDescription("Schedules an action of an entry's plan and saves it as a todo."),
		mcp.WithString("thought_id", mcp.Required(), mcp.Description("ID of the journal entry")),
		mcp.WithString("action_id", mcp.Required(), mcp.Description("ID of the action in the entry's plan")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
		mcp.WithString("start_time", mcp.Required(), mcp.Description("HH:MM")),
		mcp.WithString("end_date", mcp.Description("Optional YYYY-MM-DD")),
		mcp.WithString("end_time", mcp.Description("Optional HH:MM")),
	), s.scheduleAction)

	return m
}

// Serve runs the MCP server on stdio until the client disconnects
func (s *Server) Serve(version string) error {
	return server.ServeStdio(s.MCP(version))
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// generateActionPlan runs the planner without storing anything
func (s *Server) generateActionPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	content := stringArg(args, "content")
	if content == "" {
		return mcp.NewToolResultError("Content cannot be empty"), nil
	}

	var transcript []domain.Message
	if raw, ok := args["transcript"]; ok && raw != nil {
		b, err := json.Marshal(raw)
		if err == nil {
			err = json.Unmarshal(b, &transcript)
		}
		if err != nil {
			return mcp.NewToolResultError("Transcript must be a list of {role, content} messages"), nil
		}
	}

	actions := s.journal.PlanFor(ctx, content, transcript)
	if actions == nil {
		actions = []domain.ActionItem{}
	}
	return jsonResult(actions)
}

func (s *Server) addThought(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	content := stringArg(args, "content")
	if content == "" {
		return mcp.NewToolResultError("Content cannot be empty"), nil
	}

	note, err := s.journal.AddThought(ctx, content, store.ParseTags(stringArg(args, "tags")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Saving thought failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Thought '%s' saved.", note.ID)), nil
}

func (s *Server) listTodos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := stringArg(arguments(request), "date")

	var (
		todos []domain.Todo
		err   error
	)
	if date != "" {
		todos, err = s.journal.TodosOn(ctx, date)
	} else {
		todos, err = s.journal.Todos(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Listing todos failed: %v", err)), nil
	}
	if len(todos) == 0 {
		return mcp.NewToolResultText("No todos."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d todos:\n", len(todos))
	for _, t := range todos {
		mark := " "
		if t.Done {
			mark = "x"
		}
		content := t.Content
		if r := []rune(content); len(r) > maxSnippet {
			content = string(r[:maxSnippet-3]) + "..."
		}
		fmt.Fprintf(&sb, "- [%s] %s: %s", mark, t.ID, content)
		if d := t.Date(); d != "" {
			fmt.Fprintf(&sb, " (%s)", d)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) scheduleAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	thoughtID := stringArg(args, "thought_id")
	actionID := stringArg(args, "action_id")
	if thoughtID == "" || actionID == "" {
		return mcp.NewToolResultError("thought_id and action_id are required"), nil
	}

	sched := domain.Schedule{
		StartDate: stringArg(args, "start_date"),
		StartTime: stringArg(args, "start_time"),
		EndDate:   stringArg(args, "end_date"),
		EndTime:   stringArg(args, "end_time"),
	}
	todo, err := s.journal.ScheduleAction(ctx, thoughtID, actionID, sched)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Scheduling failed: %v", err)), nil
	}
	return jsonResult(todo)
}
