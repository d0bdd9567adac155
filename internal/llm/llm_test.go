package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/thoughts/internal/domain"
)

var conversation = []domain.Message{
	{Role: domain.RoleSystem, Content: "Ask one question at a time."},
	{Role: domain.RoleUser, Content: "I want to learn piano"},
}

func TestOpenAI_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Why piano?"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", "", WithBaseURL(srv.URL))
	reply, err := c.Complete(context.Background(), conversation)

	require.NoError(t, err)
	assert.Equal(t, "Why piano?", reply)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.False(t, got.Stream)
}

func TestOpenAI_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Why \"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"piano?\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", "gpt-test", WithBaseURL(srv.URL))

	var deltas []string
	for d, err := range c.Stream(context.Background(), conversation) {
		require.NoError(t, err)
		deltas = append(deltas, d)
	}
	assert.Equal(t, []string{"Why ", "piano?"}, deltas)
}

func TestOpenAI_StreamStopsEarly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 5; i++ {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"%d\"}}]}\n\n", i)
		}
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", "", WithBaseURL(srv.URL))

	var deltas []string
	for d, err := range c.Stream(context.Background(), conversation) {
		require.NoError(t, err)
		deltas = append(deltas, d)
		if len(deltas) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"0", "1"}, deltas)
}

func TestOpenAI_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenAI("bad", "", WithBaseURL(srv.URL))

	_, err := c.Complete(context.Background(), conversation)
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "401")

	_, err = Collect(c.Stream(context.Background(), conversation))
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestAnthropic_Complete(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"What draws you to it?"}]}`)
	}))
	defer srv.Close()

	c := NewAnthropic("sk-ant", "", WithBaseURL(srv.URL))
	reply, err := c.Complete(context.Background(), conversation)

	require.NoError(t, err)
	assert.Equal(t, "What draws you to it?", reply)
	assert.Equal(t, "Ask one question at a time.", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestAnthropic_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"What \"}}\n\n")
		fmt.Fprint(w, "event: ping\ndata: {\"type\":\"ping\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"draws you?\"}}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	c := NewAnthropic("sk-ant", "", WithBaseURL(srv.URL))
	reply, err := Collect(c.Stream(context.Background(), conversation))

	require.NoError(t, err)
	assert.Equal(t, "What draws you?", reply)
}

func TestAnthropic_StreamErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"partial\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"error\",\"error\":{\"message\":\"overloaded\"}}\n\n")
	}))
	defer srv.Close()

	c := NewAnthropic("sk-ant", "", WithBaseURL(srv.URL))
	reply, err := Collect(c.Stream(context.Background(), conversation))

	assert.Equal(t, "partial", reply)
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestGemini_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Tell me more."}]}}]}`)
	}))
	defer srv.Close()

	c, err := NewGemini(context.Background(), "g-key", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	reply, err := c.Complete(context.Background(), conversation)
	require.NoError(t, err)
	assert.Equal(t, "Tell me more.", reply)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, "openai", "", "")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = New(ctx, "mistral", "key", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := New(ctx, "anthropic", "key", "", WithRateLimit(5, 1))
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, c)
}

func TestRateLimitCancelled(t *testing.T) {
	c := NewOpenAI("sk-test", "", WithBaseURL("http://127.0.0.1:1"), WithRateLimit(0.001, 1))
	c.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, conversation)
	assert.Error(t, err)
}
