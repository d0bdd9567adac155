package domain

import (
	"fmt"
	"time"
)

// Role tags a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a conversation with the AI partner
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the transcript attached to a note
type Conversation struct {
	Messages    []Message `json:"messages"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Note is a user-authored journal entry ("thought")
type Note struct {
	ID               string        `json:"id"`
	Content          string        `json:"content"`
	Tags             []string      `json:"tags,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	Conversation     *Conversation `json:"aiConversation,omitempty"`
	GeneratedActions []ActionItem  `json:"generatedActions,omitempty"`
}

// Transcript returns the attached messages, or nil when there is no conversation
func (n *Note) Transcript() []Message {
	if n.Conversation == nil {
		return nil
	}
	return n.Conversation.Messages
}

// Priority ranks an action item
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight orders priorities: high=3, medium=2, low=1, anything else 0
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is one of the three known priorities
func (p Priority) Valid() bool {
	return p.Weight() > 0
}

// ActionItem is a proposed, not yet committed task
type ActionItem struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Priority     Priority `json:"priority"`
	TimeEstimate string   `json:"timeEstimate"`
	Category     string   `json:"category"`
	StartDate    string   `json:"startDate,omitempty"`
	StartTime    string   `json:"startTime,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	EndTime      string   `json:"endTime,omitempty"`
}

// Scheduled reports whether a start date and time are assigned
func (a ActionItem) Scheduled() bool {
	return a.StartDate != "" && a.StartTime != ""
}

// Apply copies the schedule fields onto the action
func (a *ActionItem) Apply(s Schedule) {
	a.StartDate = s.StartDate
	a.StartTime = s.StartTime
	a.EndDate = s.EndDate
	a.EndTime = s.EndTime
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Schedule is a date/time assignment for an action or todo
type Schedule struct {
	StartDate string `json:"startDate"`
	StartTime string `json:"startTime"`
	EndDate   string `json:"endDate,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Validate checks formats; start date and time are required
func (s Schedule) Validate() error {
	if s.StartDate == "" || s.StartTime == "" {
		return NewAppError(ErrInvalidInput, "start date and start time are required", 400)
	}
	start, err := time.Parse(DateLayout, s.StartDate)
	if err != nil {
		return NewAppError(ErrInvalidInput, fmt.Sprintf("invalid start date %q", s.StartDate), 400)
	}
	if _, err := time.Parse(TimeLayout, s.StartTime); err != nil {
		return NewAppError(ErrInvalidInput, fmt.Sprintf("invalid start time %q", s.StartTime), 400)
	}
	if s.EndDate != "" {
		end, err := time.Parse(DateLayout, s.EndDate)
		if err != nil {
			return NewAppError(ErrInvalidInput, fmt.Sprintf("invalid end date %q", s.EndDate), 400)
		}
		if end.Before(start) {
			return NewAppError(ErrInvalidInput, "end date is before start date", 400)
		}
	}
	if s.EndTime != "" {
		if _, err := time.Parse(TimeLayout, s.EndTime); err != nil {
			return NewAppError(ErrInvalidInput, fmt.Sprintf("invalid end time %q", s.EndTime), 400)
		}
	}
	return nil
}

// Todo is a durable, schedulable task
type Todo struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	ThoughtID     string    `json:"thoughtId,omitempty"`
	Done          bool      `json:"done"`
	ScheduledDate string    `json:"scheduledDate,omitempty"`
	ScheduledTime string    `json:"scheduledTime,omitempty"`
	StartDate     string    `json:"startDate,omitempty"`
	StartTime     string    `json:"startTime,omitempty"`
	EndDate       string    `json:"endDate,omitempty"`
	EndTime       string    `json:"endTime,omitempty"`
	NotionPageID  string    `json:"notionPageId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OnDate reports whether the todo falls on date (YYYY-MM-DD).
// A start/end range matches inclusive of both ends; a start date without an
// end matches only itself; otherwise the legacy scheduled date is used.
func (t Todo) OnDate(date string) bool {
	if t.StartDate != "" {
		if t.EndDate == "" {
			return date == t.StartDate
		}
		target, err := time.Parse(DateLayout, date)
		if err != nil {
			return false
		}
		start, err := time.Parse(DateLayout, t.StartDate)
		if err != nil {
			return false
		}
		end, err := time.Parse(DateLayout, t.EndDate)
		if err != nil {
			return false
		}
		return !target.Before(start) && !target.After(end)
	}
	if t.ScheduledDate != "" {
		return t.ScheduledDate == date
	}
	return false
}

// Date returns the date the todo is planned for, if any
func (t Todo) Date() string {
	if t.StartDate != "" {
		return t.StartDate
	}
	return t.ScheduledDate
}

// TagInfo aggregates tag usage across notes
type TagInfo struct {
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	ThoughtIDs []string `json:"thoughtIds"`
}

// NotionSettings holds the Notion integration configuration
type NotionSettings struct {
	Token       string     `json:"notion_api_token,omitempty"`
	DatabaseID  string     `json:"notion_database_id,omitempty"`
	SyncEnabled bool       `json:"sync_enabled"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
}

// Configured reports whether a token and database are set
func (s NotionSettings) Configured() bool {
	return s.Token != "" && s.DatabaseID != ""
}
