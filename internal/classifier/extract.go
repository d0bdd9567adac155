package classifier

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pbaille/thoughts/internal/domain"
)

const (
	// DefaultDeepAnalysisThreshold is the assistant text length, in runes,
	// above which the conversation is mined for actions
	DefaultDeepAnalysisThreshold = 80

	// MaxConversationItems caps the conversation-derived items
	MaxConversationItems = 3

	maxSuggestions = 3
	maxUserNeeds   = 2
	minSentenceLen = 10

	suggestionPrefix = "Per AI suggestion: "
	userNeedPrefix   = "Realize the idea: "
)

const sentenceDelimiters = "。！？.!?"

var suggestionMarkers = []string{
	"can", "suggest", "try", "consider", "start", "schedule", "formulate",
	"execute", "proceed", "contact", "discuss", "prepare",
	"可以", "建議", "嘗試", "考慮", "開始", "安排", "制定", "執行", "進行", "聯繫", "討論", "準備",
}

var actionVerbs = []string{
	"start", "schedule", "try", "consider", "formulate", "execute", "contact",
	"discuss", "prepare", "plan", "set", "make", "write", "review", "call",
	"開始", "安排", "嘗試", "制定", "執行", "聯繫", "討論", "準備",
}

var needMarkers = []string{"want", "hope", "need", "plan", "intend", "想要", "希望", "需要", "計劃", "打算"}

type label struct {
	subs  []string
	value string
}

// first match wins
var timeTable = []label{
	{[]string{"learn", "research", "study", "學習", "研究"}, "60 min"},
	{[]string{"discuss", "meeting", "討論", "會議"}, "45 min"},
	{[]string{"plan", "計劃", "規劃"}, "30 min"},
	{[]string{"contact", "call", "look up", "search", "聯繫", "查詢"}, "15 min"},
}

var categoryTable = []label{
	{[]string{"learn", "research", "study", "學習", "研究"}, "learning"},
	{[]string{"discuss", "meeting", "talk", "討論", "會議"}, "communication"},
	{[]string{"plan", "schedule", "計劃", "規劃", "安排"}, "planning"},
	{[]string{"contact", "call", "friend", "family", "聯繫", "朋友", "家人"}, "relationships"},
}

func lookup(table []label, s, fallback string) string {
	for _, l := range table {
		if containsAny(s, l.subs) {
			return l.value
		}
	}
	return fallback
}

// contextual actions are keyed on what the conversation is about and carry
// a default schedule relative to the generation day
type contextual struct {
	triggers []string
	template Template
	dayShift int
	time     string
}

var contextualActions = []contextual{
	{
		triggers: []string{"goal", "want", "目標", "想要"},
		template: Template{"Organize the key points of the discussion into concrete goals", domain.PriorityHigh, "20 min", "planning"},
		time:     "09:00",
	},
	{
		triggers: []string{"difficult", "challenge", "困難", "挑戰"},
		template: Template{"Work out a strategy for the difficulties that came up", domain.PriorityHigh, "30 min", "problem solving"},
		dayShift: 1,
		time:     "10:00",
	},
	{
		triggers: []string{"feeling", "emotion", "感受", "情緒"},
		template: Template{"Set aside time to look after yourself", domain.PriorityMedium, "15 min", "self-care"},
		time:     "20:00",
	},
}

// DeepAnalysis reports whether the assistant text is long enough to mine
func DeepAnalysis(c Context, threshold int) bool {
	return utf8.RuneCountInString(c.Assistant) > threshold
}

// SplitSentences splits on Western and CJK sentence terminators and trims
// the pieces. Empty pieces are dropped.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceDelimiters, r)
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ContextualActions returns the scheduled actions triggered by the topic of
// the conversation. now fixes the dates.
func ContextualActions(c Context, now time.Time) []domain.ActionItem {
	conv := c.Conversation()
	var items []domain.ActionItem
	for _, ca := range contextualActions {
		if !containsAny(conv, ca.triggers) {
			continue
		}
		item := ca.template.item()
		item.StartDate = now.AddDate(0, 0, ca.dayShift).Format(domain.DateLayout)
		item.StartTime = ca.time
		items = append(items, item)
	}
	return items
}

// Suggestions turns assistant sentences that read like advice into actions
func Suggestions(assistant string) []domain.ActionItem {
	var items []domain.ActionItem
	for _, sentence := range SplitSentences(assistant) {
		if len(items) == maxSuggestions {
			break
		}
		if utf8.RuneCountInString(sentence) <= minSentenceLen {
			continue
		}
		lower := strings.ToLower(sentence)
		if !containsAny(lower, suggestionMarkers) {
			continue
		}

		content := sentence
		if !startsWithAny(lower, actionVerbs) {
			content = suggestionPrefix + sentence
		}
		priority := domain.PriorityHigh
		if len(items) >= 2 {
			priority = domain.PriorityMedium
		}
		items = append(items, domain.ActionItem{
			Content:      content,
			Priority:     priority,
			TimeEstimate: lookup(timeTable, lower, "30 min"),
			Category:     lookup(categoryTable, lower, "action"),
		})
	}
	return items
}

// UserNeeds turns sentences where the user states a want or need into actions
func UserNeeds(user string) []domain.ActionItem {
	var items []domain.ActionItem
	for _, sentence := range SplitSentences(user) {
		if len(items) == maxUserNeeds {
			break
		}
		if !containsAny(strings.ToLower(sentence), needMarkers) {
			continue
		}
		items = append(items, domain.ActionItem{
			Content:      userNeedPrefix + sentence,
			Priority:     domain.PriorityHigh,
			TimeEstimate: "30 min",
			Category:     "user need",
		})
	}
	return items
}

// ExtractConversation returns at most MaxConversationItems actions mined from
// the transcript: contextual actions first, then assistant suggestions, then
// user needs. It returns nil unless the assistant text passes threshold.
func ExtractConversation(c Context, threshold int, now time.Time) []domain.ActionItem {
	if !DeepAnalysis(c, threshold) {
		return nil
	}
	items := ContextualActions(c, now)
	items = append(items, Suggestions(c.assistantText)...)
	items = append(items, UserNeeds(c.userText)...)
	if len(items) > MaxConversationItems {
		items = items[:MaxConversationItems]
	}
	return items
}

func startsWithAny(s string, prefixes []string) bool {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
