package heuristics

import (
	"strings"

	"lifelog/domain/events"
)

func productivityFamily() Family {
	return Family{
		Domain: events.DomainProductivity,
		Gate:   re(`work|build|code|project|app|task|portfolio|improving|pomodoro|focus`),
		Rules: []Rule{
			{
				Name:       "focus-session",
				Pattern:    re(`(?:pomodoro|focus\s+session|deep\s+work|focused|concentrated)\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(minutes?|mins?|hours?|hrs?)\b`),
				Extract:    extractFocus,
				Confidence: 0.8,
			},
			{
				// "did a 25 minute pomodoro"
				Name:       "focus-duration-first",
				Pattern:    re(`(\d+(?:\.\d+)?)\s*-?\s*(minutes?|mins?|hours?|hrs?)\s+(?:of\s+)?(?:pomodoro|focus(?:\s+session)?|deep\s+work)\b`),
				Extract:    extractFocus,
				Confidence: 0.8,
			},
			{
				Name:       "project-verb-count",
				Pattern:    re(`(?:worked|working|built|building|completed|finished|improving|improved|did|accomplished|shipped)\s+(?:on\s+)?(?:more\s+like\s+)?(\d+)\s*(?:coding\s+)?(?:projects?|apps?|tasks?|things|items|features|bugfixes|bugs)\b`),
				Extract:    extractProjectCount,
				Confidence: 0.8,
			},
			{
				Name:       "project-count",
				Pattern:    re(`(\d+)\s*(?:coding\s+)?(?:projects?|apps?|features|bugfixes|bugs)\b`),
				Extract:    extractProjectCount,
				Confidence: 0.8,
			},
			{
				Name:       "project-improving",
				Pattern:    re(`(?:improving|improved|working\s+on)\s+(?:my\s+)?(?:portfolio|code|projects?|app|website)\b.*?(\d+)`),
				Extract:    extractProjectCount,
				Confidence: 0.8,
			},
		},
	}
}

func extractFocus(in Input, m []string) (events.EventType, events.Payload, bool) {
	duration, ok := parseNumber(group(m, 1))
	if !ok || duration <= 0 {
		return "", nil, false
	}
	unit := "minutes"
	if strings.HasPrefix(group(m, 2), "h") {
		unit = "hours"
	}
	return events.FocusSession, &events.ProductivityPayload{
		Duration: events.Num(duration),
		Unit:     unit,
	}, true
}

func extractProjectCount(in Input, m []string) (events.EventType, events.Payload, bool) {
	count, ok := parseNumber(group(m, 1))
	if !ok || count <= 0 {
		return "", nil, false
	}
	return events.ProjectCompleted, &events.ProductivityPayload{
		Kind:        "PROJECT",
		Count:       events.Num(count),
		Description: in.Original,
	}, true
}
