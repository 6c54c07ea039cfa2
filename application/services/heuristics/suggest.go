package heuristics

import (
	"regexp"
	"strings"

	"lifelog/domain/events"
)

var categoryHints = []struct {
	pattern    *regexp.Regexp
	suggestion events.SuggestedCategory
}{
	{
		pattern:    re(`(?:coding|programming|building|developing|worked on|built)\s+(?:projects?|apps?|code|software)`),
		suggestion: events.SuggestedCategory{Name: "PROJECTS", Reason: "coding projects and development work"},
	},
	{
		pattern:    re(`(?:worked|working|business|work|meetings?|calls?)`),
		suggestion: events.SuggestedCategory{Name: "WORK", Reason: "work activities and business tasks"},
	},
	{
		pattern:    re(`(?:creative|art|design|writing|music)`),
		suggestion: events.SuggestedCategory{Name: "CREATIVE", Reason: "creative projects and artistic work"},
	},
}

// SuggestCategory proposes a custom domain for text that fits none of the
// built-in ones, or nil
func SuggestCategory(text string) *events.SuggestedCategory {
	lower := strings.ToLower(text)
	for _, hint := range categoryHints {
		if hint.pattern.MatchString(lower) {
			s := hint.suggestion
			return &s
		}
	}
	return nil
}
