package api

import (
	"net/http"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/store"
)

type addThoughtRequest struct {
	Content string   `json:"content"`
	URL     string   `json:"url"`
	Tags    []string `json:"tags"`
}

func (s *Server) listThoughts(w http.ResponseWriter, r *http.Request) {
	notes, err := s.journal.Thoughts(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) addThought(w http.ResponseWriter, r *http.Request) {
	var req addThoughtRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var (
		note *domain.Note
		err  error
	)
	if req.URL != "" {
		note, err = s.journal.CaptureURL(r.Context(), req.URL, req.Tags)
	} else {
		note, err = s.journal.AddThought(r.Context(), req.Content, req.Tags)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) getThought(w http.ResponseWriter, r *http.Request) {
	note, err := s.journal.Thought(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) editThought(w http.ResponseWriter, r *http.Request) {
	var patch store.NotePatch
	if err := decode(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	note, err := s.journal.EditThought(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) deleteThought(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteThought(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags := s.journal.Tags()
	if tags == nil {
		tags = []domain.TagInfo{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) searchThoughts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	notes, err := s.journal.Search(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}
