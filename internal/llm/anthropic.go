package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/pbaille/thoughts/internal/domain"
)

const (
	anthropicAPI          = "https://api.anthropic.com/v1"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
)

// Anthropic is a Messages API client
type Anthropic struct {
	transport
	model string
}

// NewAnthropic creates an Anthropic client
func NewAnthropic(apiKey, model string, opts ...Option) *Anthropic {
	o := buildOptions(opts)
	if o.baseURL == "" {
		o.baseURL = anthropicAPI
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{
		transport: transport{
			options: o,
			headers: map[string]string{
				"x-api-key":         apiKey,
				"anthropic-version": "2023-06-01",
			},
		},
		model: model,
	}
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	Stream      bool         `json:"stream,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type apiEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// system messages move to the top-level system field
func (c *Anthropic) request(messages []domain.Message, stream bool) apiRequest {
	req := apiRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      stream,
	}
	var system []string
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, apiMessage{Role: string(m.Role), Content: m.Content})
	}
	req.System = strings.Join(system, "\n\n")
	return req
}

// Complete sends the conversation and returns the reply
func (c *Anthropic) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	var apiResp apiResponse
	if err := c.postJSON(ctx, "/messages", c.request(messages, false), &apiResp); err != nil {
		return "", err
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("%w: api error: %s", domain.ErrUpstream, apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrUpstream)
	}

	return apiResp.Content[0].Text, nil
}

// Stream yields text_delta events until message_stop
func (c *Anthropic) Stream(ctx context.Context, messages []domain.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := c.post(ctx, "/messages", c.request(messages, true))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		stopped := false
		err = scanEvents(resp.Body, func(payload string) bool {
			var ev apiEvent
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				return true
			}
			switch ev.Type {
			case "message_stop":
				return false
			case "error":
				msg := "stream error"
				if ev.Error != nil {
					msg = ev.Error.Message
				}
				stopped = true
				yield("", fmt.Errorf("%w: %s", domain.ErrUpstream, msg))
				return false
			case "content_block_delta":
				if ev.Delta.Text == "" {
					return true
				}
				if !yield(ev.Delta.Text, nil) {
					stopped = true
					return false
				}
			}
			return true
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}
