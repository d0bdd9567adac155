package classifier

import "github.com/pbaille/thoughts/internal/domain"

// Propose runs the rule table over c and appends the fallback templates when
// fewer than MinRuleItems items were produced. The result is unordered and
// may hold more than MaxItems entries.
func Propose(c Context, rules []Rule) []domain.ActionItem {
	var items []domain.ActionItem
	for _, rule := range rules {
		if !containsAny(c.scoped(rule.Scope), rule.Triggers) {
			continue
		}
		for _, t := range rule.Templates {
			items = append(items, t.item())
		}
	}

	if len(items) < MinRuleItems {
		for _, t := range FallbackTemplates {
			items = append(items, t.item())
		}
	}
	return items
}
