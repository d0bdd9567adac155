package store

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/kv"
)

// Notes stores thoughts in the thoughts slot
type Notes struct {
	slot slot[domain.Note]
	now  func() time.Time
}

// NewNotes creates a note store over s
func NewNotes(s kv.Store) *Notes {
	return &Notes{slot: slot[domain.Note]{kv: s, key: ThoughtsSlot}, now: time.Now}
}

// NotePatch holds optional note fields to update
type NotePatch struct {
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

var tagSeparators = regexp.MustCompile(`[,\s]+`)

// ParseTags splits user input on commas and whitespace
func ParseTags(s string) []string {
	var tags []string
	for _, t := range tagSeparators.Split(s, -1) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Create adds a new note
func (n *Notes) Create(ctx context.Context, content string, tags []string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewAppError(domain.ErrInvalidInput, "content is required", 400)
	}

	now := n.now()
	note := domain.Note{
		ID:        uuid.New().String(),
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := n.slot.modify(ctx, func(notes []domain.Note) ([]domain.Note, error) {
		return append(notes, note), nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &note, nil
}

// Get returns the note with the exact id
func (n *Notes) Get(ctx context.Context, id string) (*domain.Note, error) {
	notes, err := n.slot.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	for i := range notes {
		if notes[i].ID == id {
			return &notes[i], nil
		}
	}
	return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
}

// Resolve finds a note by id or unique id prefix
func (n *Notes) Resolve(ctx context.Context, idOrPrefix string) (*domain.Note, error) {
	notes, err := n.slot.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve note: %w", err)
	}

	var found *domain.Note
	for i := range notes {
		if notes[i].ID == idOrPrefix {
			return &notes[i], nil
		}
		if idOrPrefix != "" && strings.HasPrefix(notes[i].ID, idOrPrefix) {
			if found != nil {
				return nil, domain.NewAppError(domain.ErrInvalidInput, fmt.Sprintf("ambiguous id prefix %q", idOrPrefix), 400)
			}
			found = &notes[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("note %s: %w", idOrPrefix, domain.ErrNotFound)
	}
	return found, nil
}

// List returns all notes, newest first
func (n *Notes) List(ctx context.Context) ([]domain.Note, error) {
	notes, err := n.slot.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	slices.SortStableFunc(notes, func(a, b domain.Note) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return notes, nil
}

// Search matches q against content and tags, case-insensitively
func (n *Notes) Search(ctx context.Context, q string) ([]domain.Note, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil, nil
	}

	notes, err := n.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	var matches []domain.Note
	for _, note := range notes {
		if strings.Contains(strings.ToLower(note.Content), q) ||
			slices.ContainsFunc(note.Tags, func(tag string) bool {
				return strings.Contains(strings.ToLower(tag), q)
			}) {
			matches = append(matches, note)
		}
	}
	return matches, nil
}

// Update applies patch to the note
func (n *Notes) Update(ctx context.Context, id string, patch NotePatch) (*domain.Note, error) {
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, domain.NewAppError(domain.ErrInvalidInput, "content cannot be empty", 400)
	}
	return n.update(ctx, id, func(note *domain.Note) {
		if patch.Content != nil {
			note.Content = strings.TrimSpace(*patch.Content)
		}
		if patch.Tags != nil {
			note.Tags = *patch.Tags
		}
	})
}

// SetConversation replaces the note's transcript
func (n *Notes) SetConversation(ctx context.Context, id string, messages []domain.Message) (*domain.Note, error) {
	return n.update(ctx, id, func(note *domain.Note) {
		note.Conversation = &domain.Conversation{
			Messages:    messages,
			LastUpdated: n.now(),
		}
	})
}

// ClearConversation drops the note's transcript
func (n *Notes) ClearConversation(ctx context.Context, id string) (*domain.Note, error) {
	return n.update(ctx, id, func(note *domain.Note) {
		note.Conversation = nil
	})
}

// SetGeneratedActions caches the generated action plan on the note
func (n *Notes) SetGeneratedActions(ctx context.Context, id string, actions []domain.ActionItem) (*domain.Note, error) {
	return n.update(ctx, id, func(note *domain.Note) {
		note.GeneratedActions = actions
	})
}

func (n *Notes) update(ctx context.Context, id string, fn func(*domain.Note)) (*domain.Note, error) {
	var updated domain.Note
	err := n.slot.modify(ctx, func(notes []domain.Note) ([]domain.Note, error) {
		for i := range notes {
			if notes[i].ID == id {
				fn(&notes[i])
				notes[i].UpdatedAt = n.now()
				updated = notes[i]
				return notes, nil
			}
		}
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	})
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &updated, nil
}

// Delete removes the note
func (n *Notes) Delete(ctx context.Context, id string) error {
	err := n.slot.modify(ctx, func(notes []domain.Note) ([]domain.Note, error) {
		for i := range notes {
			if notes[i].ID == id {
				return slices.Delete(notes, i, i+1), nil
			}
		}
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
