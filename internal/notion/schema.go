package notion

import (
	"slices"
	"strings"
	"time"

	"github.com/pbaille/thoughts/internal/domain"
)

type richText struct {
	PlainText string `json:"plain_text"`
}

type property struct {
	Type string `json:"type"`
}

type database struct {
	ID         string              `json:"id"`
	Title      []richText          `json:"title"`
	URL        string              `json:"url"`
	Properties map[string]property `json:"properties"`
}

type selectValue struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type pageProperty struct {
	Type        string       `json:"type"`
	Title       []richText   `json:"title"`
	RichText    []richText   `json:"rich_text"`
	Select      *selectValue `json:"select"`
	Checkbox    *bool        `json:"checkbox"`
	Date        *dateValue   `json:"date"`
	CreatedTime string       `json:"created_time"`
}

type page struct {
	ID          string                  `json:"id"`
	URL         string                  `json:"url"`
	CreatedTime string                  `json:"created_time"`
	Properties  map[string]pageProperty `json:"properties"`
}

// known title property names, tried before falling back to the title type
var titleKeys = []string{"專案名稱", "Name", "name", "Title", "title", "名稱", "標題"}

var sortKeys = []string{"Created time", "created_time", "Last edited time", "last_edited_time"}

var doneStatuses = []string{"Done", "完成"}

// schema is where a todo's fields go in a particular database
type schema struct {
	title     string
	titleType string
	status    string
	statusTyp string
	date      string
}

// inspect resolves the target properties. Property names are visited in
// sorted order so the choice is stable.
func inspect(props map[string]property) schema {
	var s schema
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, key := range titleKeys {
		if p, ok := props[key]; ok {
			s.title, s.titleType = key, p.Type
			break
		}
	}
	if s.title == "" {
		for _, name := range names {
			if props[name].Type == "title" {
				s.title, s.titleType = name, "title"
				break
			}
		}
	}

	for _, name := range names {
		if strings.ToLower(name) == "status" {
			s.status, s.statusTyp = name, props[name].Type
			break
		}
	}

	for _, name := range names {
		if props[name].Type == "date" {
			s.date = name
			break
		}
	}
	return s
}

func textValue(content string) []map[string]any {
	if content == "" {
		content = "Untitled"
	}
	return []map[string]any{{"text": map[string]string{"content": content}}}
}

func (s schema) pageProperties(todo domain.Todo) map[string]any {
	props := map[string]any{}

	switch s.titleType {
	case "title":
		props[s.title] = map[string]any{"title": textValue(todo.Content)}
	case "rich_text":
		props[s.title] = map[string]any{"rich_text": textValue(todo.Content)}
	}

	switch s.statusTyp {
	case "select":
		name := "Not started"
		if todo.Done {
			name = "Done"
		}
		props[s.status] = map[string]any{"select": map[string]string{"name": name}}
	case "checkbox":
		props[s.status] = map[string]any{"checkbox": todo.Done}
	}

	if date := todo.Date(); date != "" && s.date != "" {
		d := map[string]string{"start": date}
		if todo.EndDate != "" {
			d["end"] = todo.EndDate
		}
		props[s.date] = map[string]any{"date": d}
	}
	return props
}

func sortProperty(props map[string]property) string {
	for _, key := range sortKeys {
		if _, ok := props[key]; ok {
			return key
		}
	}
	return ""
}

func (p page) todo() domain.Todo {
	names := make([]string, 0, len(p.Properties))
	for name := range p.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	todo := domain.Todo{
		ID:           "notion-" + p.ID,
		Content:      "Untitled",
		NotionPageID: p.ID,
	}
	created := p.CreatedTime

	for _, name := range names {
		prop := p.Properties[name]
		lower := strings.ToLower(name)
		switch {
		case prop.Type == "title" || lower == "name" || lower == "title":
			if len(prop.Title) > 0 {
				todo.Content = prop.Title[0].PlainText
			} else if len(prop.RichText) > 0 {
				todo.Content = prop.RichText[0].PlainText
			}
		case lower == "status":
			if prop.Select != nil {
				todo.Done = slices.Contains(doneStatuses, prop.Select.Name)
			} else if prop.Checkbox != nil {
				todo.Done = *prop.Checkbox
			}
		case prop.Type == "date" || lower == "date":
			if prop.Date != nil && todo.ScheduledDate == "" {
				todo.ScheduledDate = dateOnly(prop.Date.Start)
			}
		case prop.Type == "created_time":
			if prop.CreatedTime != "" {
				created = prop.CreatedTime
			}
		}
	}

	if t, err := time.Parse(time.RFC3339, created); err == nil {
		todo.CreatedAt = t
		todo.UpdatedAt = t
	}
	return todo
}

// dateOnly drops the time part of a Notion datetime
func dateOnly(s string) string {
	if len(s) > len(domain.DateLayout) {
		return s[:len(domain.DateLayout)]
	}
	return s
}
