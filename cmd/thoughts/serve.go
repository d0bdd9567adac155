package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/thoughts/internal/api"
	"github.com/pbaille/thoughts/internal/mcpserver"
	"github.com/pbaille/thoughts/internal/notion"
	"github.com/pbaille/thoughts/internal/ratelimit"
)

const syncTimeout = 5 * time.Minute

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Addr
			}

			syncer := a.notion()
			if spec := a.cfg.Notion.SyncSchedule; spec != "" {
				sched, err := notion.NewScheduler(syncer, spec, syncTimeout)
				if err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}

			server := api.New(api.Config{
				Addr:    addr,
				Journal: a.journal,
				Notion:  syncer,
				Limiter: ratelimit.NewRateLimiter(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst),
				Metrics: a.metrics,
				Logger:  a.logger,
			})
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides config)")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the journal as MCP tools on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.logger.Info("mcp server starting on stdio")
			return mcpserver.New(a.journal).Serve(version)
		},
	}
}
