package classifier

import (
	"context"
	"time"

	"github.com/pbaille/thoughts/internal/domain"
)

// Planner produces an action plan for a note and its transcript.
// Implementations never fail: the worst outcome is an empty plan.
type Planner interface {
	Plan(ctx context.Context, content string, transcript []domain.Message) []domain.ActionItem
}

// Config tunes the local generator. Zero values select the defaults.
type Config struct {
	DeepAnalysisThreshold int
	Dedupe                bool
	// ThinkingDelay holds Plan back before answering
	ThinkingDelay time.Duration
	Rules         []Rule
	IDs           IDFunc
	Now           func() time.Time
}

// Generator is the keyword and conversation based planner
type Generator struct {
	cfg Config
}

// NewGenerator creates a Generator
func NewGenerator(cfg Config) *Generator {
	if cfg.DeepAnalysisThreshold <= 0 {
		cfg.DeepAnalysisThreshold = DefaultDeepAnalysisThreshold
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules
	}
	if cfg.IDs == nil {
		cfg.IDs = HashID
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Generator{cfg: cfg}
}

// Generate returns between 0 and MaxItems actions ordered by priority.
// Conversation-derived items come ahead of the rule items before ranking.
func (g *Generator) Generate(content string, transcript []domain.Message) []domain.ActionItem {
	c := Aggregate(content, transcript)

	items := ExtractConversation(c, g.cfg.DeepAnalysisThreshold, g.cfg.Now())
	items = append(items, Propose(c, g.cfg.Rules)...)

	ranked := Rank(items, g.cfg.Dedupe)
	assignIDs(ranked, Seed(content, transcript), g.cfg.IDs)
	return ranked
}

// Plan waits for the thinking delay, then generates. A cancelled context
// yields an empty plan.
func (g *Generator) Plan(ctx context.Context, content string, transcript []domain.Message) []domain.ActionItem {
	if g.cfg.ThinkingDelay > 0 {
		t := time.NewTimer(g.cfg.ThinkingDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return []domain.ActionItem{}
		case <-t.C:
		}
	}
	return g.Generate(content, transcript)
}

var defaultGenerator = NewGenerator(Config{})

// GenerateActionPlan runs the default generator
func GenerateActionPlan(content string, transcript []domain.Message) []domain.ActionItem {
	return defaultGenerator.Generate(content, transcript)
}
