package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbaille/thoughts/internal/classifier"
	"github.com/pbaille/thoughts/internal/config"
	"github.com/pbaille/thoughts/internal/journal"
	"github.com/pbaille/thoughts/internal/kv"
	"github.com/pbaille/thoughts/internal/llm"
	"github.com/pbaille/thoughts/internal/metrics"
	"github.com/pbaille/thoughts/internal/notion"
	"github.com/pbaille/thoughts/internal/store"
)

var version = "dev"

var (
	configPath string
	dataDir    string
	backend    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "thoughts",
		Short:        "Journal with action plans, todos and an AI thinking partner",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: sqlite, badger or memory (overrides config)")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(actionsCmd())
	rootCmd.AddCommand(todoCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(mindmapCmd())
	rootCmd.AddCommand(notionCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app bundles what every command needs
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	kv      kv.Store
	metrics *metrics.Metrics
	journal *journal.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)

	// Ensure directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s, err := kv.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	planner, source, err := newPlanner(ctx, cfg, store.NewSettings(s), m, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	llmOpts := []llm.Option{llm.WithRateLimit(cfg.LLM.RPS, 1)}
	svc, err := journal.New(ctx, s, journal.Options{
		Planner:       planner,
		PlannerSource: source,
		Chat: journal.ChatConfig{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.Key(),
			Options:  llmOpts,
		},
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, kv: s, metrics: m, journal: svc}, nil
}

func (a *app) Close() {
	a.journal.Close()
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("close store", "err", err)
	}
}

func (a *app) notion() *notion.Syncer {
	return notion.NewSyncer(a.journal.TodoStore(), a.journal.SettingsStore(), notion.SyncerOptions{
		Metrics: a.metrics,
		Logger:  a.logger,
	})
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// newPlanner selects the keyword planner or the LLM backed one
func newPlanner(ctx context.Context, cfg *config.Config, settings *store.Settings, m *metrics.Metrics, logger *slog.Logger) (classifier.Planner, string, error) {
	if cfg.Planner.Mode != "remote" {
		return classifier.NewGenerator(classifier.Config{
			DeepAnalysisThreshold: cfg.Planner.DeepAnalysisThreshold,
			Dedupe:                cfg.Planner.Dedupe,
			ThinkingDelay:         cfg.Planner.ThinkingDelay,
		}), "local", nil
	}

	key, err := settings.APIKey(ctx, cfg.LLM.Provider)
	if err != nil {
		return nil, "", err
	}
	if key == "" {
		key = cfg.LLM.Key()
	}
	client, err := llm.New(ctx, cfg.LLM.Provider, key, cfg.LLM.Model, llm.WithRateLimit(cfg.LLM.RPS, 1))
	if err != nil {
		return nil, "", fmt.Errorf("remote planner: %w", err)
	}
	remote, err := classifier.NewRemote(classifier.RemoteConfig{
		Completer: client,
		CacheSize: cfg.Planner.CacheSize,
		Logger:    logger,
		OnFailure: m.RemoteFailure,
	})
	if err != nil {
		return nil, "", err
	}
	return remote, "remote", nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
