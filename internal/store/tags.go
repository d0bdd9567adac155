package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/pbaille/thoughts/internal/domain"
	"github.com/pbaille/thoughts/internal/kv"
)

// BuildTags counts tag usage, most used first
func BuildTags(notes []domain.Note) []domain.TagInfo {
	index := make(map[string]*domain.TagInfo)
	var order []string

	for _, note := range notes {
		for _, tag := range note.Tags {
			info, ok := index[tag]
			if !ok {
				info = &domain.TagInfo{Name: tag}
				index[tag] = info
				order = append(order, tag)
			}
			info.Count++
			info.ThoughtIDs = append(info.ThoughtIDs, note.ID)
		}
	}

	tags := make([]domain.TagInfo, 0, len(order))
	for _, name := range order {
		tags = append(tags, *index[name])
	}
	slices.SortStableFunc(tags, func(a, b domain.TagInfo) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return tags
}

// TagIndex keeps tag counts current by following writes to the thoughts slot
type TagIndex struct {
	mu     sync.RWMutex
	tags   []domain.TagInfo
	cancel func()
	done   chan struct{}
	logger *slog.Logger
}

// NewTagIndex loads the current notes and starts following the slot
func NewTagIndex(ctx context.Context, s kv.Store, notes *Notes, logger *slog.Logger) (*TagIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	updates, cancel := s.Subscribe(ThoughtsSlot)
	current, err := notes.List(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	idx := &TagIndex{
		tags:   BuildTags(current),
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
	}
	go idx.follow(updates)
	return idx, nil
}

func (idx *TagIndex) follow(updates <-chan []byte) {
	defer close(idx.done)
	for data := range updates {
		var notes []domain.Note
		if err := json.Unmarshal(data, &notes); err != nil {
			idx.logger.Warn("tag index: decode thoughts", "err", err)
			continue
		}
		tags := BuildTags(notes)

		idx.mu.Lock()
		idx.tags = tags
		idx.mu.Unlock()
	}
}

// Tags returns the latest tag counts
func (idx *TagIndex) Tags() []domain.TagInfo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Clone(idx.tags)
}

// Close stops following the slot
func (idx *TagIndex) Close() {
	idx.cancel()
	<-idx.done
}
