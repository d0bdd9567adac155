package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/pbaille/thoughts/internal/domain"
)

const (
	openAIAPI          = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAI is a chat completions client
type OpenAI struct {
	transport
	model string
}

// NewOpenAI creates an OpenAI client
func NewOpenAI(apiKey, model string, opts ...Option) *OpenAI {
	o := buildOptions(opts)
	if o.baseURL == "" {
		o.baseURL = openAIAPI
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		transport: transport{
			options: o,
			headers: map[string]string{"Authorization": "Bearer " + apiKey},
		},
		model: model,
	}
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *OpenAI) request(messages []domain.Message, stream bool) openAIRequest {
	req := openAIRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      stream,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}
	return req
}

// Complete sends the conversation and returns the reply
func (c *OpenAI) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	var resp openAIResponse
	if err := c.postJSON(ctx, "/chat/completions", c.request(messages, false), &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream yields content deltas from the SSE response until [DONE]
func (c *OpenAI) Stream(ctx context.Context, messages []domain.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := c.post(ctx, "/chat/completions", c.request(messages, true))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		stopped := false
		err = scanEvents(resp.Body, func(payload string) bool {
			if payload == "[DONE]" {
				return false
			}
			var chunk openAIChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				return true
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				return true
			}
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}
