package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/mindmap"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) getChat(w http.ResponseWriter, r *http.Request) {
	note, err := s.journal.StartConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	messages := note.Transcript()
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// chat streams the reply as server-sent events. Errors raised before the
// first delta are answered as plain JSON.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	send := func(event string, data any) {
		b, _ := json.Marshal(data)
		if event != "" {
			fmt.Fprintf(w, "event: %s\n", event)
		}
		fmt.Fprintf(w, "data: %s\n\n", b)
		if flusher != nil {
			flusher.Flush()
		}
	}

	reply, err := s.journal.Converse(r.Context(), r.PathValue("id"), req.Message, func(delta string) {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		send("", map[string]string{"delta": delta})
	})
	if err != nil {
		if !started {
			s.fail(w, r, err)
			return
		}
		s.logger.Warn("chat stream aborted", "note_id", r.PathValue("id"), "err", err)
		send("error", map[string]string{"error": messageFor(err)})
		return
	}
	if !started {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
	}
	send("done", map[string]string{"reply": reply})
}

func (s *Server) resetChat(w http.ResponseWriter, r *http.Request) {
	if _, err := s.journal.ResetConversation(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) mindmap(w http.ResponseWriter, r *http.Request) {
	note, err := s.journal.Thought(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mindmap.Build(note.Content, note.Transcript()))
}
