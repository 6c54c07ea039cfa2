package heuristics

import (
	"strings"

	"lifelog/domain/events"
)

// habitAliases is ordered: the first alias contained in a phrase wins
var habitAliases = []struct {
	phrase     string
	normalized string
}{
	{"quit smoking", "quit smoking"},
	{"quit cigarettes", "quit smoking"},
	{"stop smoking", "quit smoking"},
	{"no smoking", "quit smoking"},
	{"eating healthier", "eat healthy"},
	{"eating healthy", "eat healthy"},
	{"eat healthier", "eat healthy"},
	{"eat healthy", "eat healthy"},
	{"healthy eating", "eat healthy"},
	{"drank water", "drink water"},
	{"drinking water", "drink water"},
	{"drink water", "drink water"},
	{"exercised", "exercise"},
	{"exercising", "exercise"},
	{"exercise", "exercise"},
	{"workout", "exercise"},
	{"meditation", "meditate"},
	{"meditated", "meditate"},
	{"meditating", "meditate"},
	{"meditate", "meditate"},
	{"journaling", "journal"},
	{"journaled", "journal"},
	{"journal", "journal"},
	{"reading", "read"},
	{"read", "read"},
	{"walking", "walk"},
	{"walked", "walk"},
	{"walk", "walk"},
	{"yoga", "yoga"},
	{"stretching", "stretch"},
	{"stretched", "stretch"},
	{"stretch", "stretch"},
	{"smoking", "quit smoking"},
}

// NormalizeHabit maps a free-form habit phrase onto its canonical name,
// e.g. "quitting smoking" to "quit smoking". Unknown phrases are trimmed
// and lower-cased.
func NormalizeHabit(habit string) string {
	lower := strings.Join(strings.Fields(strings.ToLower(habit)), " ")
	if lower == "" {
		return ""
	}
	for _, alias := range habitAliases {
		if strings.Contains(lower, alias.phrase) {
			return alias.normalized
		}
		if len(lower) >= 3 && strings.Contains(alias.phrase, lower) {
			return alias.normalized
		}
	}
	return lower
}

func habitFamily() Family {
	return Family{
		Domain: events.DomainHabit,
		Rules: []Rule{
			{
				Name:       "habit-quit-smoking",
				Pattern:    re(`(?:quit|quitting|stopped?|staying\s+away\s+from|abstained\s+from)\s+(?:smoking|cigarettes|tobacco)`),
				Extract:    fixedHabit("quit smoking"),
				Confidence: 0.85,
			},
			{
				Name:       "habit-eat-healthy",
				Pattern:    re(`(?:eating|eat|ate)\s+(?:healthier|healthy)`),
				Extract:    fixedHabit("eat healthy"),
				Confidence: 0.85,
			},
			{
				Name:       "habit-drink-water",
				Pattern:    re(`(?:drank|drinking|drink)\s+(?:water|h2o)`),
				Extract:    fixedHabit("drink water"),
				Confidence: 0.85,
			},
			{
				Name:       "habit-did-known",
				Pattern:    re(`(?:did|completed|finished)\s+(?:my\s+)?(exercise|workout|meditation|journaling|reading|walking|yoga|stretching)\b`),
				Extract:    capturedHabit,
				Confidence: 0.85,
			},
			{
				Name:       "habit-completed-my-x",
				Pattern:    re(`(?:completed|did|finished|checked\s+off|marked|accomplished|stuck\s+to)\s+(?:my\s+)?([a-z][a-z\s]{1,39}?)\s+(?:habit|today|off|task)\b`),
				Extract:    capturedHabit,
				Confidence: 0.85,
			},
			{
				Name:       "habit-goal-done",
				Pattern:    re(`(?:habit|goal)\s+(?:of\s+)?([a-z][a-z\s]{1,39}?)\s+(?:completed|done|finished|accomplished)\b`),
				Extract:    capturedHabit,
				Confidence: 0.85,
			},
			{
				Name:       "habit-verb-activity",
				Pattern:    re(`(?:quit|stopped|started|continued|did|completed|finished)\s+(smoking|exercising|eating\s+healthy|meditating|journaling|reading|walking|yoga)\b`),
				Extract:    capturedHabit,
				Confidence: 0.85,
			},
		},
	}
}

func fixedHabit(name string) Extractor {
	return func(in Input, m []string) (events.EventType, events.Payload, bool) {
		return events.HabitCompleted, &events.HabitPayload{Habit: name}, true
	}
}

func capturedHabit(in Input, m []string) (events.EventType, events.Payload, bool) {
	raw := group(m, 1)
	// routines have their own family
	if strings.Contains(raw, "routine") || strings.Contains(raw, "checklist") {
		return "", nil, false
	}
	habit := NormalizeHabit(raw)
	if habit == "" || len(habit) >= 50 {
		return "", nil, false
	}
	return events.HabitCompleted, &events.HabitPayload{Habit: habit}, true
}
