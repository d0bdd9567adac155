package api

import (
	"net/http"
	"time"

	"github.com/pbaille/thoughts/internal/domain"
)

type apiKeyRequest struct {
	Key string `json:"key"`
}

// notionSettingsView never echoes the token back
type notionSettingsView struct {
	TokenSet    bool    `json:"token_set"`
	DatabaseID  string  `json:"notion_database_id"`
	SyncEnabled bool    `json:"sync_enabled"`
	LastSyncAt  *string `json:"last_sync_at,omitempty"`
}

func viewOf(n domain.NotionSettings) notionSettingsView {
	v := notionSettingsView{
		TokenSet:    n.Token != "",
		DatabaseID:  n.DatabaseID,
		SyncEnabled: n.SyncEnabled,
	}
	if n.LastSyncAt != nil {
		ts := n.LastSyncAt.Format(time.RFC3339)
		v.LastSyncAt = &ts
	}
	return v
}

func (s *Server) getNotionSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.notion.Settings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(settings))
}

func (s *Server) saveNotionSettings(w http.ResponseWriter, r *http.Request) {
	var in domain.NotionSettings
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.notion.SaveSettings(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(saved))
}

func (s *Server) setAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.journal.SetAPIKey(r.Context(), req.Key); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) notionTest(w http.ResponseWriter, r *http.Request) {
	db, err := s.notion.TestConnection(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, db)
}

func (s *Server) notionPush(w http.ResponseWriter, r *http.Request) {
	results, err := s.notion.Push(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) notionPull(w http.ResponseWriter, r *http.Request) {
	todos, err := s.notion.Pull(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}
