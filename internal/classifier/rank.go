package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/pbaille/thoughts/internal/domain"
)

// MaxItems is the size of a final action plan
const MaxItems = 5

// Rank stable-sorts items by descending priority weight and keeps the first
// MaxItems. With dedupe set, later items whose content repeats an earlier one
// are dropped before sorting.
func Rank(items []domain.ActionItem, dedupe bool) []domain.ActionItem {
	if dedupe {
		items = Dedupe(items)
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b domain.ActionItem) int {
		return b.Priority.Weight() - a.Priority.Weight()
	})
	if len(out) > MaxItems {
		out = out[:MaxItems]
	}
	return out
}

// Dedupe keeps the first item for each case-insensitive content
func Dedupe(items []domain.ActionItem) []domain.ActionItem {
	seen := make(map[string]bool, len(items))
	var out []domain.ActionItem
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Content))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// IDFunc derives the id of the item at index within a batch generated from seed
type IDFunc func(seed string, index int) string

// HashID is the default IDFunc: a short digest of the input plus the index
func HashID(seed string, index int) string {
	sum := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("action-%s-%d", hex.EncodeToString(sum[:6]), index)
}

// Seed is the string ids are derived from
func Seed(content string, transcript []domain.Message) string {
	var sb strings.Builder
	sb.WriteString(content)
	for _, m := range transcript {
		sb.WriteString("\x00")
		sb.WriteString(string(m.Role))
		sb.WriteString(":")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

func assignIDs(items []domain.ActionItem, seed string, ids IDFunc) {
	for i := range items {
		items[i].ID = ids(seed, i)
	}
}
