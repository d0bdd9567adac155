package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kaptinlin/jsonrepair"

	"github.com/pbaille/thoughts/internal/domain"
)

// Completer sends a conversation to a chat model and returns its reply
type Completer interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

const remoteSystemPrompt = `You are a professional action-planning assistant. Carefully analyze the user's thought and the AI conversation transcript, then produce 5 concrete, actionable steps.

Requirements:
1. Every action must be grounded in the user's specific situation and needs
2. Actions must be concrete, measurable and carry a time estimate
3. Spread priorities sensibly
4. The category must reflect the nature of the action
5. Reply with pure JSON, no other text

Reply format (JSON array):
[
  {
    "id": "unique_id",
    "content": "concrete description of the action",
    "priority": "high|medium|low",
    "timeEstimate": "estimated time (e.g. 30 min, 1 hour)",
    "category": "category (e.g. learning, work, health, relationships, planning)"
  }
]`

// RemoteConfig configures a Remote planner
type RemoteConfig struct {
	Completer Completer
	CacheSize int
	Logger    *slog.Logger
	// OnFailure is called with every error degraded to an empty plan
	OnFailure func(error)
}

// Remote asks a chat model for the plan. Transport and parse failures are
// logged and turn into an empty plan.
type Remote struct {
	llm       Completer
	cache     *lru.Cache[string, []domain.ActionItem]
	logger    *slog.Logger
	onFailure func(error)
}

// NewRemote creates a Remote planner
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("remote planner: %w", domain.ErrNotConfigured)
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, []domain.ActionItem](size)
	if err != nil {
		return nil, fmt.Errorf("create plan cache: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Remote{llm: cfg.Completer, cache: cache, logger: logger, onFailure: cfg.OnFailure}, nil
}

// Plan returns at most MaxItems validated actions, or an empty list on failure
func (r *Remote) Plan(ctx context.Context, content string, transcript []domain.Message) []domain.ActionItem {
	actions, err := r.Request(ctx, content, transcript)
	if err != nil {
		r.logger.Warn("remote action plan failed", "err", err)
		if r.onFailure != nil {
			r.onFailure(err)
		}
		return []domain.ActionItem{}
	}
	return actions
}

// Request is Plan without the degrade-to-empty policy
func (r *Remote) Request(ctx context.Context, content string, transcript []domain.Message) ([]domain.ActionItem, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.NewAppError(domain.ErrInvalidInput, "thought content is empty", 400)
	}

	seed := Seed(content, transcript)
	key := cacheKey(seed)
	if cached, ok := r.cache.Get(key); ok {
		return slices.Clone(cached), nil
	}

	reply, err := r.llm.Complete(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: remoteSystemPrompt},
		{Role: domain.RoleUser, Content: buildPrompt(content, transcript)},
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	parsed, err := parseActions(reply)
	if err != nil {
		return nil, err
	}
	// Model ids are discarded: replies often echo the prompt's placeholder
	actions := Rank(parsed, false)
	assignIDs(actions, seed, HashID)
	r.cache.Add(key, slices.Clone(actions))
	return actions, nil
}

func buildPrompt(content string, transcript []domain.Message) string {
	var sb strings.Builder

	sb.WriteString("Thought:\n")
	sb.WriteString(content)
	sb.WriteString("\n\nAI conversation:\n")
	for _, m := range transcript {
		if m.Role == domain.RoleSystem {
			continue
		}
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nGenerate 5 personalized actions based on the above.")

	return sb.String()
}

type remoteAction struct {
	Content      string `json:"content"`
	Priority     string `json:"priority"`
	TimeEstimate string `json:"timeEstimate"`
	Category     string `json:"category"`
}

var errNoJSON = errors.New("no JSON array in reply")

func parseActions(reply string) ([]domain.ActionItem, error) {
	// Clean up response - remove markdown code blocks if present
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var raw []remoteAction
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		start, end := strings.Index(reply, "["), strings.LastIndex(reply, "]")
		if start < 0 || end < start {
			return nil, fmt.Errorf("parse actions: %w", errNoJSON)
		}
		repaired, rerr := jsonrepair.JSONRepair(reply[start : end+1])
		if rerr != nil {
			return nil, fmt.Errorf("repair actions: %w", rerr)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("parse actions: %w", err)
		}
	}

	actions := make([]domain.ActionItem, 0, MaxItems)
	for _, a := range raw {
		if a.Content == "" || a.Priority == "" || a.TimeEstimate == "" || a.Category == "" {
			continue
		}
		p := domain.Priority(a.Priority)
		if !p.Valid() {
			p = domain.PriorityMedium
		}
		actions = append(actions, domain.ActionItem{
			Content:      a.Content,
			Priority:     p,
			TimeEstimate: a.TimeEstimate,
			Category:     a.Category,
		})
		if len(actions) == MaxItems {
			break
		}
	}
	return actions, nil
}

func cacheKey(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
