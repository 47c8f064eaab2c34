package server

import "strings"

type hintRule struct {
	hint     string
	keywords []string
}

// hintRules are checked in order; the first rule with a matching keyword wins.
var hintRules = []hintRule{
	{"bar_chart", []string{"compare", "by region", "by country", "by site"}},
	{"pie_chart", []string{"distribution", "breakdown", "percentage"}},
	{"line_chart", []string{"trend", "over time", "timeline"}},
	{"table", []string{"list", "show", "top", "bottom"}},
}

// visualizationHint suggests a chart type from keywords in the question. It
// returns nil when nothing matches.
func visualizationHint(question string) *string {
	q := strings.ToLower(question)
	for _, rule := range hintRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				hint := rule.hint
				return &hint
			}
		}
	}
	return nil
}
