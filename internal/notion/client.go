package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pbaille/thoughts/internal/domain"
)

const (
	notionAPI     = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
)

// Client is a minimal Notion REST client for a todo database
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL points the client at another endpoint
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client authenticated with an integration token
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: notionAPI,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Database describes the connected database
type Database struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PushResult reports the outcome for one todo
type PushResult struct {
	ID           string `json:"id"`
	Success      bool   `json:"success"`
	NotionPageID string `json:"notionPageId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// TestConnection fetches the database metadata
func (c *Client) TestConnection(ctx context.Context, databaseID string) (*Database, error) {
	db, err := c.database(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	title := "Untitled"
	if len(db.Title) > 0 && db.Title[0].PlainText != "" {
		title = db.Title[0].PlainText
	}
	return &Database{ID: db.ID, Title: title, URL: db.URL}, nil
}

// PushTodos creates one page per todo. Failures are recorded per todo and
// do not stop the batch; only a schema fetch failure is returned as error.
func (c *Client) PushTodos(ctx context.Context, databaseID string, todos []domain.Todo) ([]PushResult, error) {
	db, err := c.database(ctx, databaseID)
	if err != nil {
		return nil, fmt.Errorf("get database schema: %w", err)
	}
	s := inspect(db.Properties)

	results := make([]PushResult, 0, len(todos))
	for _, todo := range todos {
		body := map[string]any{
			"parent":     map[string]string{"database_id": databaseID},
			"properties": s.pageProperties(todo),
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := c.do(ctx, http.MethodPost, "/pages", body, &created); err != nil {
			results = append(results, PushResult{ID: todo.ID, Error: err.Error()})
			continue
		}
		results = append(results, PushResult{ID: todo.ID, Success: true, NotionPageID: created.ID})
	}
	return results, nil
}

// PullTodos reads the database pages as todos, newest first when the
// database has a created or edited time property
func (c *Client) PullTodos(ctx context.Context, databaseID string) ([]domain.Todo, error) {
	db, err := c.database(ctx, databaseID)
	if err != nil {
		return nil, fmt.Errorf("get database schema: %w", err)
	}

	query := map[string]any{}
	if prop := sortProperty(db.Properties); prop != "" {
		query["sorts"] = []map[string]string{{"property": prop, "direction": "descending"}}
	}

	var resp struct {
		Results []page `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", query, &resp); err != nil {
		return nil, fmt.Errorf("query database: %w", err)
	}

	todos := make([]domain.Todo, 0, len(resp.Results))
	for _, p := range resp.Results {
		todos = append(todos, p.todo())
	}
	return todos, nil
}

func (c *Client) database(ctx context.Context, id string) (*database, error) {
	var db database
	if err := c.do(ctx, http.MethodGet, "/databases/"+id, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: notion request: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: notion api error (status %d): %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
