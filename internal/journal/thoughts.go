package journal

import (
	"context"
	"fmt"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/store"
)

// AddThought records a new note
func (s *Service) AddThought(ctx context.Context, content string, tags []string) (*domain.Note, error) {
	note, err := s.notes.Create(ctx, content, tags)
	if err != nil {
		return nil, fmt.Errorf("add thought: %w", err)
	}
	s.logger.Info("thought added", "note_id", note.ID, "tags", len(tags))
	return note, nil
}

// CaptureURL records the readable text of a web page as a note
func (s *Service) CaptureURL(ctx context.Context, rawURL string, tags []string) (*domain.Note, error) {
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", rawURL, err)
	}
	return s.AddThought(ctx, page.Thought(), tags)
}

// Thought returns a note by id or unique id prefix
func (s *Service) Thought(ctx context.Context, idOrPrefix string) (*domain.Note, error) {
	return s.notes.Resolve(ctx, idOrPrefix)
}

// Thoughts lists notes, newest first
func (s *Service) Thoughts(ctx context.Context) ([]domain.Note, error) {
	return s.notes.List(ctx)
}

// EditThought applies patch to a note
func (s *Service) EditThought(ctx context.Context, id string, patch store.NotePatch) (*domain.Note, error) {
	return s.notes.Update(ctx, id, patch)
}

// DeleteThought removes a note. Todos created from it are kept.
func (s *Service) DeleteThought(ctx context.Context, id string) error {
	if err := s.notes.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("thought deleted", "note_id", id)
	return nil
}

// Search matches notes by content or tag
func (s *Service) Search(ctx context.Context, q string) ([]domain.Note, error) {
	return s.notes.Search(ctx, q)
}

// Tags returns tag usage, most used first
func (s *Service) Tags() []domain.TagInfo {
	return s.tags.Tags()
}
