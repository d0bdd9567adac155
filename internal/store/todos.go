package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/kv"
)

// Todos stores to-do items in the todos slot
type Todos struct {
	slot slot[domain.Todo]
	now  func() time.Time
}

// NewTodos creates a todo store over s
func NewTodos(s kv.Store) *Todos {
	return &Todos{slot: slot[domain.Todo]{kv: s, key: TodosSlot}, now: time.Now}
}

// TodoInput describes a todo to create
type TodoInput struct {
	Content       string `json:"content"`
	ThoughtID     string `json:"thoughtId,omitempty"`
	Done          bool   `json:"done"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	StartTime     string `json:"startTime,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	EndTime       string `json:"endTime,omitempty"`
	NotionPageID  string `json:"notionPageId,omitempty"`
}

// TodoPatch holds optional todo fields to update
type TodoPatch struct {
	Content       *string `json:"content,omitempty"`
	Done          *bool   `json:"done,omitempty"`
	ScheduledDate *string `json:"scheduledDate,omitempty"`
	ScheduledTime *string `json:"scheduledTime,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	StartTime     *string `json:"startTime,omitempty"`
	EndDate       *string `json:"endDate,omitempty"`
	EndTime       *string `json:"endTime,omitempty"`
	NotionPageID  *string `json:"notionPageId,omitempty"`
}

func (t *Todos) build(in TodoInput) (domain.Todo, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return domain.Todo{}, domain.NewAppError(domain.ErrInvalidInput, "todo content is required", 400)
	}
	now := t.now()
	return domain.Todo{
		ID:            uuid.New().String(),
		Content:       content,
		ThoughtID:     in.ThoughtID,
		Done:          in.Done,
		ScheduledDate: in.ScheduledDate,
		ScheduledTime: in.ScheduledTime,
		StartDate:     in.StartDate,
		StartTime:     in.StartTime,
		EndDate:       in.EndDate,
		EndTime:       in.EndTime,
		NotionPageID:  in.NotionPageID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Create adds a single todo
func (t *Todos) Create(ctx context.Context, in TodoInput) (*domain.Todo, error) {
	todo, err := t.build(in)
	if err != nil {
		return nil, err
	}
	err = t.slot.modify(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		return append(todos, todo), nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return &todo, nil
}

// CreateMany adds several todos in one write
func (t *Todos) CreateMany(ctx context.Context, inputs []TodoInput) ([]domain.Todo, error) {
	created := make([]domain.Todo, 0, len(inputs))
	for _, in := range inputs {
		todo, err := t.build(in)
		if err != nil {
			return nil, err
		}
		created = append(created, todo)
	}
	err := t.slot.modify(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		return append(todos, created...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert todos: %w", err)
	}
	return created, nil
}

// Get returns the todo with id
func (t *Todos) Get(ctx context.Context, id string) (*domain.Todo, error) {
	todos, err := t.slot.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	for i := range todos {
		if todos[i].ID == id {
			return &todos[i], nil
		}
	}
	return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
}

// List returns all todos in creation order
func (t *Todos) List(ctx context.Context) ([]domain.Todo, error) {
	todos, err := t.slot.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// ByDate returns the todos planned on date (YYYY-MM-DD)
func (t *Todos) ByDate(ctx context.Context, date string) ([]domain.Todo, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, domain.NewAppError(domain.ErrInvalidInput, fmt.Sprintf("invalid date %q", date), 400)
	}

	todos, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []domain.Todo
	for _, todo := range todos {
		if todo.OnDate(date) {
			matches = append(matches, todo)
		}
	}
	return matches, nil
}

// Toggle flips the done flag
func (t *Todos) Toggle(ctx context.Context, id string) (*domain.Todo, error) {
	return t.update(ctx, id, func(todo *domain.Todo) {
		todo.Done = !todo.Done
	})
}

// Update applies patch to the todo
func (t *Todos) Update(ctx context.Context, id string, patch TodoPatch) (*domain.Todo, error) {
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, domain.NewAppError(domain.ErrInvalidInput, "todo content cannot be empty", 400)
	}
	return t.update(ctx, id, func(todo *domain.Todo) {
		if patch.Content != nil {
			todo.Content = strings.TrimSpace(*patch.Content)
		}
		setIf(&todo.Done, patch.Done)
		setIf(&todo.ScheduledDate, patch.ScheduledDate)
		setIf(&todo.ScheduledTime, patch.ScheduledTime)
		setIf(&todo.StartDate, patch.StartDate)
		setIf(&todo.StartTime, patch.StartTime)
		setIf(&todo.EndDate, patch.EndDate)
		setIf(&todo.EndTime, patch.EndTime)
		setIf(&todo.NotionPageID, patch.NotionPageID)
	})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (t *Todos) update(ctx context.Context, id string, fn func(*domain.Todo)) (*domain.Todo, error) {
	var updated domain.Todo
	err := t.slot.modify(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		for i := range todos {
			if todos[i].ID == id {
				fn(&todos[i])
				todos[i].UpdatedAt = t.now()
				updated = todos[i]
				return todos, nil
			}
		}
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	})
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return &updated, nil
}

// Delete removes the todo
func (t *Todos) Delete(ctx context.Context, id string) error {
	err := t.slot.modify(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		for i := range todos {
			if todos[i].ID == id {
				return slices.Delete(todos, i, i+1), nil
			}
		}
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	})
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
