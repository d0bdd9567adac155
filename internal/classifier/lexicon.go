package classifier

import "github.com/pbaille/thoughts/internal/domain"

// Scope selects which context string a rule's triggers are matched against
type Scope int

const (
	// ScopeNote matches the note text alone
	ScopeNote Scope = iota
	// ScopeCombined matches the note text plus the transcript
	ScopeCombined
)

// Template is a fixed action proposed when a rule fires
type Template struct {
	Content      string
	Priority     domain.Priority
	TimeEstimate string
	Category     string
}

func (t Template) item() domain.ActionItem {
	return domain.ActionItem{
		Content:      t.Content,
		Priority:     t.Priority,
		TimeEstimate: t.TimeEstimate,
		Category:     t.Category,
	}
}

// Rule maps a topic category to its triggers and templates
type Rule struct {
	Category  string
	Scope     Scope
	Triggers  []string
	Templates []Template
}

// Only "learning" looks at the transcript; the other categories read the
// note text alone. Triggers are lower-case substrings, English first, then
// the Traditional Chinese forms the journal was first written with.
var DefaultRules = []Rule{
	{
		Category: "learning",
		Scope:    ScopeCombined,
		Triggers: []string{"learn", "study", "research", "understand", "學習", "了解", "研究", "研讀"},
		Templates: []Template{
			{"Search for and organize relevant learning resources", domain.PriorityHigh, "30 min", "learning"},
			{"Draw up a study plan and timeline", domain.PriorityMedium, "15 min", "planning"},
			{"Set aside a fixed time for learning every day", domain.PriorityMedium, "ongoing", "habit"},
		},
	},
	{
		Category: "project",
		Scope:    ScopeNote,
		Triggers: []string{"project", "plan", "develop", "專案", "計劃", "開發"},
		Templates: []Template{
			{"Break the project into small tasks", domain.PriorityHigh, "45 min", "planning"},
			{"Set project milestones", domain.PriorityHigh, "20 min", "planning"},
			{"Discuss the division of work with team members", domain.PriorityMedium, "60 min", "collaboration"},
		},
	},
	{
		Category: "work",
		Scope:    ScopeNote,
		Triggers: []string{"at work", "my work", "workplace", "office", "career", "job", "boss", "工作", "職業", "事業"},
		Templates: []Template{
			{"Review current work priorities", domain.PriorityHigh, "15 min", "work"},
			{"Discuss goals and expectations with your manager", domain.PriorityMedium, "30 min", "communication"},
		},
	},
	{
		Category: "health",
		Scope:    ScopeNote,
		Triggers: []string{"health", "exercise", "body", "workout", "健康", "運動", "身體"},
		Templates: []Template{
			{"Schedule regular exercise time", domain.PriorityMedium, "3 times a week", "health"},
			{"Plan a healthy diet", domain.PriorityMedium, "30 min", "health"},
		},
	},
	{
		Category: "relationships",
		Scope:    ScopeNote,
		Triggers: []string{"friend", "family", "relationship", "朋友", "家人", "關係"},
		Templates: []Template{
			{"Reach out to the people who matter to you", domain.PriorityMedium, "20 min", "relationships"},
			{"Arrange a get-together with friends and family", domain.PriorityLow, "to be planned", "relationships"},
		},
	},
	{
		Category: "creativity",
		Scope:    ScopeNote,
		Triggers: []string{"creativ", "idea", "inspiration", "創意", "想法", "靈感"},
		Templates: []Template{
			{"Set up a system for collecting ideas", domain.PriorityMedium, "15 min", "creativity"},
			{"Regularly review and develop good ideas", domain.PriorityLow, "once a week", "creativity"},
		},
	},
}

// FallbackTemplates are proposed when the rules produce fewer than three items
var FallbackTemplates = []Template{
	{"Break the goal into concrete actions", domain.PriorityHigh, "20 min", "planning"},
	{"Set and execute a small daily goal", domain.PriorityHigh, "ongoing", "execution"},
	{"Review progress weekly and adjust direction", domain.PriorityMedium, "30 min", "review"},
}

// MinRuleItems is the count below which the fallback templates are appended
const MinRuleItems = 3
