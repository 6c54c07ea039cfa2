package heuristics

import (
	"strings"

	"lifelog/domain/events"
)

func routineFamily() Family {
	return Family{
		Domain: events.DomainRoutine,
		Rules: []Rule{
			{
				Name:       "routine-checked",
				Pattern:    re(`(?:routine|checklist|checked|completed|done|finished|did)\s+(?:my\s+|the\s+)?([a-z][a-z\s]*?)\s+(?:routine|checklist)\b`),
				Extract:    extractRoutine,
				Confidence: 0.75,
			},
		},
	}
}

func extractRoutine(in Input, m []string) (events.EventType, events.Payload, bool) {
	routine := strings.Join(strings.Fields(group(m, 1)), " ")
	if routine == "" {
		return "", nil, false
	}
	return events.RoutineChecked, &events.RoutinePayload{Routine: routine, Status: "completed"}, true
}
