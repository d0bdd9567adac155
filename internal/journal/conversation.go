package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/llm"
)

// SystemPrompt steers the conversation partner
const SystemPrompt = "You are a gentle guide to self-exploration. Help the user think more deeply about their thought and clarify it. Ask only one question at a time, in a friendly tone that encourages an honest answer."

// historyWindow is how many recent non-system messages are sent upstream
const historyWindow = 6

// StartConversation seeds the note's transcript with the system prompt and
// the note content. An existing transcript is returned as is.
func (s *Service) StartConversation(ctx context.Context, noteID string) (*domain.Note, error) {
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if len(note.Transcript()) > 0 {
		return note, nil
	}
	return s.notes.SetConversation(ctx, noteID, seed(note.Content))
}

func seed(content string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: SystemPrompt},
		{Role: domain.RoleUser, Content: content},
	}
}

// ResetConversation drops the note's transcript
func (s *Service) ResetConversation(ctx context.Context, noteID string) (*domain.Note, error) {
	return s.notes.ClearConversation(ctx, noteID)
}

// Converse sends the user's message with the recent history, passes each
// reply delta to onDelta and stores both messages once the reply is complete.
// Nothing is stored when the call fails.
func (s *Service) Converse(ctx context.Context, noteID, userContent string, onDelta func(string)) (string, error) {
	userContent = strings.TrimSpace(userContent)
	if userContent == "" {
		return "", domain.NewAppError(domain.ErrInvalidInput, "message is empty", 400)
	}

	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return "", err
	}
	client, err := s.chatClient(ctx)
	if err != nil {
		return "", err
	}

	transcript := note.Transcript()
	if len(transcript) == 0 {
		transcript = seed(note.Content)
	}
	transcript = append(transcript, domain.Message{Role: domain.RoleUser, Content: userContent})

	var reply strings.Builder
	for delta, err := range client.Stream(ctx, Window(transcript)) {
		if err != nil {
			s.logger.Warn("conversation failed", "note_id", noteID, "err", err)
			return "", fmt.Errorf("converse: %w", err)
		}
		reply.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	transcript = append(transcript, domain.Message{Role: domain.RoleAssistant, Content: reply.String()})
	if _, err := s.notes.SetConversation(ctx, noteID, transcript); err != nil {
		return "", fmt.Errorf("save conversation: %w", err)
	}
	return reply.String(), nil
}

// Window returns the system prompt followed by the last six non-system
// messages of transcript
func Window(transcript []domain.Message) []domain.Message {
	var recent []domain.Message
	for _, m := range transcript {
		if m.Role != domain.RoleSystem {
			recent = append(recent, m)
		}
	}
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	return append([]domain.Message{{Role: domain.RoleSystem, Content: SystemPrompt}}, recent...)
}

// chatClient prefers the key stored in settings over the configured one
func (s *Service) chatClient(ctx context.Context) (llm.Client, error) {
	key, err := s.settings.APIKey(ctx, s.chat.Provider)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = s.chat.APIKey
	}
	return s.newClient(ctx, s.chat.Provider, key, s.chat.Model, s.chat.Options...)
}

// SetAPIKey stores the conversation partner's key
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.NewAppError(domain.ErrInvalidInput, "API key is empty", 400)
	}
	return s.settings.SetAPIKey(ctx, s.chat.Provider, key)
}
