package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/kv"
)

// Settings holds credentials and integration settings
type Settings struct {
	kv kv.Store
}

// NewSettings creates a settings store over s
func NewSettings(s kv.Store) *Settings {
	return &Settings{kv: s}
}

// APIKey returns the stored key for an LLM provider, or "" when unset
func (s *Settings) APIKey(ctx context.Context, provider string) (string, error) {
	data, err := s.kv.Get(ctx, apiKeyPrefix+provider)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get api key: %w", err)
	}
	return string(data), nil
}

// SetAPIKey stores the key for an LLM provider
func (s *Settings) SetAPIKey(ctx context.Context, provider, key string) error {
	if err := s.kv.Set(ctx, apiKeyPrefix+provider, []byte(key)); err != nil {
		return fmt.Errorf("set api key: %w", err)
	}
	return nil
}

// Notion returns the Notion settings; zero value when never saved
func (s *Settings) Notion(ctx context.Context) (domain.NotionSettings, error) {
	var settings domain.NotionSettings
	data, err := s.kv.Get(ctx, NotionSlot)
	if errors.Is(err, domain.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("get notion settings: %w", err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("decode notion settings: %w", err)
	}
	return settings, nil
}

// SaveNotion replaces the Notion settings
func (s *Settings) SaveNotion(ctx context.Context, settings domain.NotionSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode notion settings: %w", err)
	}
	if err := s.kv.Set(ctx, NotionSlot, data); err != nil {
		return fmt.Errorf("save notion settings: %w", err)
	}
	return nil
}
