package api

import (
	"net/http"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/store"
)

// listTodos returns all todos, or those falling on ?date= when given
func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	var (
		todos []domain.Todo
		err   error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		todos, err = s.journal.TodosOn(r.Context(), date)
	} else {
		todos, err = s.journal.Todos(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) addTodo(w http.ResponseWriter, r *http.Request) {
	var in store.TodoInput
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.journal.AddTodo(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) todoFromThought(w http.ResponseWriter, r *http.Request) {
	todo, err := s.journal.TodoFromThought(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) editTodo(w http.ResponseWriter, r *http.Request) {
	var patch store.TodoPatch
	if err := decode(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.journal.EditTodo(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteTodo(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.journal.ToggleTodo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}
