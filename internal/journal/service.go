package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pbaille/thoughts/internal/classifier"
	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/fetcher"
	"github.com/pbaille/thoughts/internal/kv"
	"github.com/pbaille/thoughts/internal/llm"
	"github.com/pbaille/thoughts/internal/metrics"
	"github.com/pbaille/thoughts/internal/store"
)

// ClientFunc builds a chat client for a provider and key
type ClientFunc func(ctx context.Context, provider, apiKey, model string, opts ...llm.Option) (llm.Client, error)

// ChatConfig selects the conversation partner
type ChatConfig struct {
	Provider string
	Model    string
	// APIKey is used when no key is stored in settings
	APIKey  string
	Options []llm.Option
}

// Options wires the service's collaborators. Zero values select defaults.
type Options struct {
	Planner classifier.Planner
	// PlannerSource labels plans in metrics, "local" or "remote"
	PlannerSource string
	Chat          ChatConfig
	NewClient     ClientFunc
	Fetcher       *fetcher.Fetcher
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Now           func() time.Time
}

// Service is the journal application layer over the note, todo and
// settings stores
type Service struct {
	notes    *store.Notes
	todos    *store.Todos
	settings *store.Settings
	tags     *store.TagIndex

	planner   classifier.Planner
	source    string
	chat      ChatConfig
	newClient ClientFunc
	fetcher   *fetcher.Fetcher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Service over s and starts its tag index
func New(ctx context.Context, s kv.Store, opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Planner == nil {
		opts.Planner = classifier.NewGenerator(classifier.Config{})
		opts.PlannerSource = "local"
	}
	if opts.PlannerSource == "" {
		opts.PlannerSource = "local"
	}
	if opts.Chat.Provider == "" {
		opts.Chat.Provider = "openai"
	}
	if opts.NewClient == nil {
		opts.NewClient = llm.New
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetcher.New(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	notes := store.NewNotes(s)
	tags, err := store.NewTagIndex(ctx, s, notes, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("start tag index: %w", err)
	}

	return &Service{
		notes:     notes,
		todos:     store.NewTodos(s),
		settings:  store.NewSettings(s),
		tags:      tags,
		planner:   opts.Planner,
		source:    opts.PlannerSource,
		chat:      opts.Chat,
		newClient: opts.NewClient,
		fetcher:   opts.Fetcher,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
	}, nil
}

// Close stops the tag index
func (s *Service) Close() {
	s.tags.Close()
}

// TodoStore exposes the todo store to integrations such as Notion sync
func (s *Service) TodoStore() *store.Todos { return s.todos }

// SettingsStore exposes the settings store
func (s *Service) SettingsStore() *store.Settings { return s.settings }

func (s *Service) today() string {
	return s.now().Format(domain.DateLayout)
}
