package mindmap

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pbaille/thoughts/internal/domain"
)

// NodeType tells where a node sits in the tree
type NodeType string

const (
	NodeRoot    NodeType = "root"
	NodeTopic   NodeType = "topic"
	NodeInsight NodeType = "insight"
)

// Node is one labelled point of the map
type Node struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Level    int      `json:"level"`
	ParentID string   `json:"parentId,omitempty"`
	Type     NodeType `json:"type"`
}

// Map is a three level tree: the note at the root, one topic per user turn
// and the assistant's insight below it
type Map struct {
	Nodes []Node `json:"nodes"`
}

// Build pairs the i-th user message with the i-th assistant message.
// User messages repeating the note content are skipped.
func Build(content string, transcript []domain.Message) Map {
	m := Map{Nodes: []Node{{
		ID:    "root",
		Text:  "Core: " + Summarize(content),
		Level: 0,
		Type:  NodeRoot,
	}}}

	var user, assistant []string
	for _, msg := range transcript {
		switch {
		case msg.Role == domain.RoleUser && msg.Content != content:
			user = append(user, msg.Content)
		case msg.Role == domain.RoleAssistant:
			assistant = append(assistant, msg.Content)
		}
	}

	rounds := min(len(user), len(assistant))
	for i := 0; i < rounds; i++ {
		topic := fmt.Sprintf("topic-%d", i)
		m.Nodes = append(m.Nodes,
			Node{ID: topic, Text: Summarize(user[i]), Level: 1, ParentID: "root", Type: NodeTopic},
			Node{ID: fmt.Sprintf("insight-%d", i), Text: Summarize(assistant[i]), Level: 2, ParentID: topic, Type: NodeInsight},
		)
	}
	return m
}

// Outline renders the map as an indented list
func (m Map) Outline() string {
	var sb strings.Builder
	for _, n := range m.Nodes {
		sb.WriteString(strings.Repeat("  ", n.Level))
		if n.Level > 0 {
			sb.WriteString("- ")
		}
		sb.WriteString(n.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

var punctuation = strings.NewReplacer(
	"？", "", "！", "", "。", "", "，", "", "；", "", "：", "",
	"「", "", "」", "", "『", "", "』", "", "（", "", "）", "",
)

// Summarize shortens text to a label: up to 15 runes or 3 words are kept as
// is, longer text becomes its first 3 words and an ellipsis
func Summarize(text string) string {
	cleaned := strings.TrimSpace(punctuation.Replace(text))
	if utf8.RuneCountInString(cleaned) <= 15 {
		return cleaned
	}
	words := strings.Fields(cleaned)
	if len(words) <= 3 {
		return cleaned
	}
	return strings.Join(words[:3], " ") + "..."
}
