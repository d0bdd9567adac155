package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pbaille/thoughts/internal/domain"
)

// Client talks to a chat model
type Client interface {
	// Complete returns the whole assistant reply
	Complete(ctx context.Context, messages []domain.Message) (string, error)
	// Stream yields the reply as incremental text deltas. An error ends the
	// sequence.
	Stream(ctx context.Context, messages []domain.Message) iter.Seq2[string, error]
}

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.7
)

type options struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxTokens   int
	temperature float64
}

// Option customizes a client
type Option func(*options)

// WithBaseURL points the client at another endpoint
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRateLimit waits for a token before each upstream call. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxTokens caps the reply length
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

func buildOptions(opts []Option) options {
	o := options{
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a client for provider (openai, anthropic or gemini).
// An empty key is ErrNotConfigured.
func New(ctx context.Context, provider, apiKey, model string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, domain.NewAppError(domain.ErrNotConfigured, fmt.Sprintf("%s API key is not set", provider), 412)
	}
	switch provider {
	case "openai":
		return NewOpenAI(apiKey, model, opts...), nil
	case "anthropic":
		return NewAnthropic(apiKey, model, opts...), nil
	case "gemini":
		return NewGemini(ctx, apiKey, model, opts...)
	}
	return nil, domain.NewAppError(domain.ErrInvalidInput, fmt.Sprintf("unknown provider %q", provider), 400)
}

// Collect drains a stream into a single string
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for delta, err := range seq {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(delta)
	}
	return sb.String(), nil
}

// transport is the JSON-over-HTTP plumbing shared by the REST providers
type transport struct {
	options
	headers map[string]string
}

func (t *transport) post(ctx context.Context, path string, body any) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("%w: api error (status %d): %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return resp, nil
}

func (t *transport) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := t.post(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// scanEvents calls fn with the payload of every "data:" line until fn
// returns false or the body ends
func scanEvents(r io.Reader, fn func(payload string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if !fn(payload) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
