package classifier

import (
	"strings"

	"github.com/pbaille/thoughts/internal/domain"
)

// Context holds the lower-cased strings the matchers run against
type Context struct {
	Note      string
	Assistant string
	User      string
	// Combined is the note text followed by the assistant and user text
	Combined string

	// original casing, used to quote extracted sentences
	assistantText string
	userText      string
}

// Aggregate builds the matching context. System messages are dropped and
// nothing beyond case folding is normalized.
func Aggregate(note string, transcript []domain.Message) Context {
	var assistant, user []string
	for _, m := range transcript {
		switch m.Role {
		case domain.RoleAssistant:
			assistant = append(assistant, m.Content)
		case domain.RoleUser:
			user = append(user, m.Content)
		}
	}

	c := Context{
		Note:          strings.ToLower(note),
		assistantText: strings.Join(assistant, " "),
		userText:      strings.Join(user, " "),
	}
	c.Assistant = strings.ToLower(c.assistantText)
	c.User = strings.ToLower(c.userText)
	c.Combined = c.Note
	for _, part := range []string{c.Assistant, c.User} {
		if part != "" {
			c.Combined += " " + part
		}
	}
	return c
}

// Conversation returns the assistant and user text together
func (c Context) Conversation() string {
	if c.User == "" {
		return c.Assistant
	}
	if c.Assistant == "" {
		return c.User
	}
	return c.Assistant + " " + c.User
}

func (c Context) scoped(s Scope) string {
	if s == ScopeCombined {
		return c.Combined
	}
	return c.Note
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
