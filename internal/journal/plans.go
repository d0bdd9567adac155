package journal

import (
	"context"
	"fmt"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/store"
)

const (
	defaultSelectionSize = 3
	defaultStartTime     = "09:00"
)

// GeneratePlan returns the note's action plan. The cached plan is reused
// unless force is set or nothing is cached yet.
func (s *Service) GeneratePlan(ctx context.Context, noteID string, force bool) ([]domain.ActionItem, error) {
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !force && len(note.GeneratedActions) > 0 {
		return note.GeneratedActions, nil
	}

	actions := s.PlanFor(ctx, note.Content, note.Transcript())
	if _, err := s.notes.SetGeneratedActions(ctx, noteID, actions); err != nil {
		return nil, fmt.Errorf("cache plan: %w", err)
	}
	s.logger.Info("action plan generated", "note_id", noteID, "items", len(actions), "source", s.source)
	return actions, nil
}

// PlanFor runs the planner without touching any note
func (s *Service) PlanFor(ctx context.Context, content string, transcript []domain.Message) []domain.ActionItem {
	actions := s.planner.Plan(ctx, content, transcript)
	s.metrics.ObservePlan(s.source, len(actions))
	return actions
}

// DefaultSelection returns the ids of the first high priority actions
func DefaultSelection(actions []domain.ActionItem) []string {
	var ids []string
	for _, a := range actions {
		if len(ids) == defaultSelectionSize {
			break
		}
		if a.Priority == domain.PriorityHigh {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// ScheduleAction assigns a date and time to a cached action and immediately
// writes it through to the todo store
func (s *Service) ScheduleAction(ctx context.Context, noteID, actionID string, sched domain.Schedule) (*domain.Todo, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}

	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	actions := note.GeneratedActions
	i := indexOf(actions, actionID)
	if i < 0 {
		return nil, domain.NewAppError(domain.ErrNotFound, fmt.Sprintf("action %s", actionID), 404)
	}
	actions[i].Apply(sched)
	if _, err := s.notes.SetGeneratedActions(ctx, noteID, actions); err != nil {
		return nil, fmt.Errorf("schedule action: %w", err)
	}

	todo, err := s.todos.Create(ctx, store.TodoInput{
		Content:   actions[i].Content,
		ThoughtID: noteID,
		StartDate: sched.StartDate,
		StartTime: sched.StartTime,
		EndDate:   sched.EndDate,
		EndTime:   sched.EndTime,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule action: %w", err)
	}
	s.logger.Info("action scheduled", "note_id", noteID, "action_id", actionID, "todo_id", todo.ID, "date", sched.StartDate)
	return todo, nil
}

// SaveSelected turns the chosen actions into todos, one write each. Actions
// without a schedule land on today at 09:00. On failure the todos created so
// far are returned with the error.
func (s *Service) SaveSelected(ctx context.Context, noteID string, actionIDs []string) ([]domain.Todo, error) {
	if len(actionIDs) == 0 {
		return nil, domain.NewAppError(domain.ErrInvalidInput, "no actions selected", 400)
	}
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}

	selected := make([]domain.ActionItem, 0, len(actionIDs))
	for _, id := range actionIDs {
		i := indexOf(note.GeneratedActions, id)
		if i < 0 {
			return nil, domain.NewAppError(domain.ErrNotFound, fmt.Sprintf("action %s", id), 404)
		}
		selected = append(selected, note.GeneratedActions[i])
	}

	created := make([]domain.Todo, 0, len(selected))
	for _, a := range selected {
		in := store.TodoInput{
			Content:       a.Content,
			ThoughtID:     noteID,
			ScheduledDate: a.StartDate,
			ScheduledTime: a.StartTime,
		}
		if in.ScheduledDate == "" {
			in.ScheduledDate = s.today()
		}
		if in.ScheduledTime == "" {
			in.ScheduledTime = defaultStartTime
		}
		todo, err := s.todos.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("save action %s: %w", a.ID, err)
		}
		created = append(created, *todo)
	}
	s.logger.Info("actions saved", "note_id", noteID, "count", len(created))
	return created, nil
}

func indexOf(actions []domain.ActionItem, id string) int {
	for i := range actions {
		if actions[i].ID == id {
			return i
		}
	}
	return -1
}
