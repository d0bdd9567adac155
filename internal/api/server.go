package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pbaille/thoughts/internal/journal"
	"github.com/pbaille/thoughts/internal/metrics"
	"github.com/pbaille/thoughts/internal/notion"
	"github.com/pbaille/thoughts/internal/ratelimit"
)

// Config wires the server's collaborators
type Config struct {
	Addr    string
	Journal *journal.Service
	Notion  *notion.Syncer
	Limiter *ratelimit.RateLimiter
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Server handles HTTP requests for the journal API
type Server struct {
	journal *journal.Service
	notion  *notion.Syncer
	limiter *ratelimit.RateLimiter
	metrics *metrics.Metrics
	logger  *slog.Logger
	addr    string
}

// New creates a new API server
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		journal: cfg.Journal,
		notion:  cfg.Notion,
		limiter: cfg.Limiter,
		metrics: cfg.Metrics,
		logger:  logger,
		addr:    cfg.Addr,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Thoughts
	mux.HandleFunc("GET /thoughts", s.listThoughts)
	mux.HandleFunc("POST /thoughts", s.addThought)
	mux.HandleFunc("GET /thoughts/{id}", s.getThought)
	mux.HandleFunc("PATCH /thoughts/{id}", s.editThought)
	mux.HandleFunc("DELETE /thoughts/{id}", s.deleteThought)
	mux.HandleFunc("GET /tags", s.listTags)
	mux.HandleFunc("GET /search", s.searchThoughts)

	// Action plans
	mux.HandleFunc("POST /action-plan", s.actionPlan)
	mux.HandleFunc("GET /thoughts/{id}/actions", s.getActions)
	mux.HandleFunc("POST /thoughts/{id}/actions", s.regenerateActions)
	mux.HandleFunc("POST /thoughts/{id}/actions/{actionID}/schedule", s.scheduleAction)
	mux.HandleFunc("POST /thoughts/{id}/actions/save", s.saveActions)

	// Conversation
	mux.HandleFunc("GET /thoughts/{id}/chat", s.getChat)
	mux.HandleFunc("POST /thoughts/{id}/chat", s.chat)
	mux.HandleFunc("DELETE /thoughts/{id}/chat", s.resetChat)
	mux.HandleFunc("GET /thoughts/{id}/mindmap", s.mindmap)

	// Todos
	mux.HandleFunc("GET /todos", s.listTodos)
	mux.HandleFunc("POST /todos", s.addTodo)
	mux.HandleFunc("POST /thoughts/{id}/todo", s.todoFromThought)
	mux.HandleFunc("PATCH /todos/{id}", s.editTodo)
	mux.HandleFunc("DELETE /todos/{id}", s.deleteTodo)
	mux.HandleFunc("POST /todos/{id}/toggle", s.toggleTodo)

	// Settings and Notion
	mux.HandleFunc("GET /settings/notion", s.getNotionSettings)
	mux.HandleFunc("PUT /settings/notion", s.saveNotionSettings)
	mux.HandleFunc("PUT /settings/api-key", s.setAPIKey)
	mux.HandleFunc("POST /notion/test", s.notionTest)
	mux.HandleFunc("POST /notion/push", s.notionPush)
	mux.HandleFunc("GET /notion/todos", s.notionPull)

	// Health check
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return withCORS(s.withMetrics(s.withRateLimit(mux)))
}

// Run starts the HTTP server and shuts it down when ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
