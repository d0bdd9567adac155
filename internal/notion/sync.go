package notion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/metrics"
	"github.com/pbaille/thoughts/internal/store"
)

// Syncer runs Notion operations with the credentials kept in settings
type Syncer struct {
	todos     *store.Todos
	settings  *store.Settings
	newClient func(token string) *Client
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// SyncerOptions wires optional collaborators
type SyncerOptions struct {
	ClientOptions []Option
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Now           func() time.Time
}

// NewSyncer creates a Syncer over the todo and settings stores
func NewSyncer(todos *store.Todos, settings *store.Settings, opts SyncerOptions) *Syncer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Syncer{
		todos:    todos,
		settings: settings,
		newClient: func(token string) *Client {
			return NewClient(token, opts.ClientOptions...)
		},
		metrics: opts.Metrics,
		logger:  logger,
		now:     now,
	}
}

func (s *Syncer) client(ctx context.Context) (*Client, domain.NotionSettings, error) {
	settings, err := s.settings.Notion(ctx)
	if err != nil {
		return nil, settings, err
	}
	if !settings.Configured() {
		return nil, settings, domain.NewAppError(domain.ErrNotConfigured, "Notion API token and database ID are required", 412)
	}
	return s.newClient(settings.Token), settings, nil
}

// Settings returns the stored Notion settings
func (s *Syncer) Settings(ctx context.Context) (domain.NotionSettings, error) {
	return s.settings.Notion(ctx)
}

// SaveSettings stores new Notion settings, keeping the last sync time and,
// when in carries none, the stored token
func (s *Syncer) SaveSettings(ctx context.Context, in domain.NotionSettings) (domain.NotionSettings, error) {
	current, err := s.settings.Notion(ctx)
	if err != nil {
		return in, err
	}
	in.LastSyncAt = current.LastSyncAt
	if in.Token == "" {
		in.Token = current.Token
	}
	if err := s.settings.SaveNotion(ctx, in); err != nil {
		return in, err
	}
	return in, nil
}

// TestConnection checks the stored credentials against the database
func (s *Syncer) TestConnection(ctx context.Context) (*Database, error) {
	c, settings, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.TestConnection(ctx, settings.DatabaseID)
}

// Push sends todos not yet linked to a Notion page, records the created
// page ids and the sync time
func (s *Syncer) Push(ctx context.Context) ([]PushResult, error) {
	c, settings, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.todos.List(ctx)
	if err != nil {
		return nil, err
	}
	var pending []domain.Todo
	for _, t := range all {
		if t.NotionPageID == "" {
			pending = append(pending, t)
		}
	}

	results, err := c.PushTodos(ctx, settings.DatabaseID, pending)
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			s.metrics.NotionPage("error")
			s.logger.Warn("notion push failed", "todo_id", r.ID, "err", r.Error)
			continue
		}
		s.metrics.NotionPage("ok")
		pageID := r.NotionPageID
		if _, err := s.todos.Update(ctx, r.ID, store.TodoPatch{NotionPageID: &pageID}); err != nil {
			s.logger.Warn("record notion page", "todo_id", r.ID, "err", err)
		}
	}

	now := s.now()
	settings.LastSyncAt = &now
	if err := s.settings.SaveNotion(ctx, settings); err != nil {
		return results, fmt.Errorf("save sync time: %w", err)
	}
	s.logger.Info("notion push done", "pushed", len(results)-failed, "failed", failed)
	return results, nil
}

// Pull reads the todos held in the Notion database
func (s *Syncer) Pull(ctx context.Context) ([]domain.Todo, error) {
	c, settings, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.PullTodos(ctx, settings.DatabaseID)
}

// SyncIfEnabled pushes when sync is enabled and configured
func (s *Syncer) SyncIfEnabled(ctx context.Context) error {
	settings, err := s.settings.Notion(ctx)
	if err != nil {
		return err
	}
	if !settings.SyncEnabled || !settings.Configured() {
		return nil
	}
	_, err = s.Push(ctx)
	return err
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler runs SyncIfEnabled on a cron schedule
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler registers the sync job; spec is a cron expression or a
// descriptor such as "@hourly"
func NewScheduler(syncer *Syncer, spec string, timeout time.Duration) (*Scheduler, error) {
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := syncer.SyncIfEnabled(ctx); err != nil {
			syncer.logger.Warn("scheduled notion sync failed", "err", err)
		}
	})
	if err != nil {
		return nil, domain.NewAppError(domain.ErrInvalidInput, fmt.Sprintf("invalid sync schedule %q: %v", spec, err), 400)
	}
	return &Scheduler{cron: c, logger: syncer.logger}, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("notion sync scheduler started")
}

// Stop halts the scheduler and waits for a running sync
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
