package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/pbaille/thoughts/internal/domain"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini wraps the genai SDK
type Gemini struct {
	client      *genai.Client
	model       string
	limiter     *rate.Limiter
	maxTokens   int32
	temperature float32
}

// NewGemini creates a Gemini client
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	o := buildOptions(opts)
	if model == "" {
		model = defaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       model,
		limiter:     o.limiter,
		maxTokens:   int32(o.maxTokens),
		temperature: float32(o.temperature),
	}, nil
}

func (g *Gemini) request(messages []domain.Message) ([]*genai.Content, *genai.GenerateContentConfig) {
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
		Temperature:     &temp,
	}
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}
	}
	return contents, cfg
}

func (g *Gemini) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Complete sends the conversation and returns the reply
func (g *Gemini) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	contents, cfg := g.request(messages)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", domain.ErrUpstream, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty response (check safety filters)", domain.ErrUpstream)
	}
	return text, nil
}

// Stream yields the text of each streamed candidate chunk
func (g *Gemini) Stream(ctx context.Context, messages []domain.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := g.wait(ctx); err != nil {
			yield("", err)
			return
		}
		contents, cfg := g.request(messages)
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
			if err != nil {
				yield("", fmt.Errorf("%w: generate content: %v", domain.ErrUpstream, err))
				return
			}
			if text := responseText(resp); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}
