package journal

import (
	"context"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/store"
)

// AddTodo creates a todo
func (s *Service) AddTodo(ctx context.Context, in store.TodoInput) (*domain.Todo, error) {
	return s.todos.Create(ctx, in)
}

// TodoFromThought creates a todo holding the note's raw content
func (s *Service) TodoFromThought(ctx context.Context, noteID string) (*domain.Todo, error) {
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return s.todos.Create(ctx, store.TodoInput{Content: note.Content, ThoughtID: note.ID})
}

// ToggleTodo flips a todo's done flag
func (s *Service) ToggleTodo(ctx context.Context, id string) (*domain.Todo, error) {
	return s.todos.Toggle(ctx, id)
}

// EditTodo applies patch to a todo
func (s *Service) EditTodo(ctx context.Context, id string, patch store.TodoPatch) (*domain.Todo, error) {
	return s.todos.Update(ctx, id, patch)
}

// DeleteTodo removes a todo
func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	return s.todos.Delete(ctx, id)
}

// Todos lists all todos
func (s *Service) Todos(ctx context.Context) ([]domain.Todo, error) {
	return s.todos.List(ctx)
}

// TodosOn returns the todos falling on date; "today" is accepted
func (s *Service) TodosOn(ctx context.Context, date string) ([]domain.Todo, error) {
	switch date {
	case "", "today":
		date = s.today()
	case "tomorrow":
		date = s.now().AddDate(0, 0, 1).Format(domain.DateLayout)
	}
	return s.todos.ByDate(ctx, date)
}
