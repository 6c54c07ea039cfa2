package heuristics

import (
	"strings"

	"lifelog/domain/events"
)

// Things people "take" that are not medication
var notMedication = map[string]bool{
	"walk": true, "nap": true, "break": true, "shower": true, "bath": true, "rest": true,
	"look": true, "photo": true, "picture": true, "class": true, "course": true, "test": true,
	"exam": true, "call": true, "the": true, "it": true, "time": true, "care": true, "off": true,
}

func healthFamily() Family {
	return Family{
		Domain: events.DomainHealth,
		Rules: []Rule{
			{
				Name:       "health-symptom",
				Pattern:    re(`(?:symptoms?|feeling|experiencing|have|having|got)\s+(?:a\s+|an\s+|some\s+)?([a-z\s]*?)\s*(headache|stomachache|pain|ache|discomfort|nausea|fever|cough|migraine)\b`),
				Extract:    extractSymptom,
				Confidence: 0.75,
			},
			{
				Name:       "health-vital",
				Pattern:    re(`\b(blood\s+pressure|bp|heart\s+rate|hr|pulse|temperature|temp|weight)(?:\s*:\s*|\s+(?:is|was|at|of)\s+)(\d+(?:\.\d+)?(?:/\d+)?)`),
				Extract:    extractVital,
				Confidence: 0.8,
			},
			{
				Name:       "health-medication",
				Pattern:    re(`(?:took|taking|take)\s+(?:my\s+|a\s+|an\s+|some\s+|\d+\s+)?([a-z][a-z0-9-]*(?:\s+[a-z][a-z0-9-]*)?)(?:\s+for\s+(?:my\s+|a\s+|an\s+|the\s+)?([a-z][a-z\s]*?))?[.!]?\s*$`),
				Extract:    extractMedication,
				Confidence: 0.75,
			},
			{
				Name:       "health-medication-noun",
				Pattern:    re(`(?:medication|medicine|pill|tablet)s?\s*:\s*([a-z][a-z0-9-]*(?:\s+[a-z][a-z0-9-]*)?)`),
				Extract:    extractMedication,
				Confidence: 0.75,
			},
		},
	}
}

func extractSymptom(in Input, m []string) (events.EventType, events.Payload, bool) {
	symptom := strings.Join(strings.Fields(group(m, 1)+" "+group(m, 2)), " ")
	if symptom == "" {
		return "", nil, false
	}
	payload := &events.HealthPayload{Symptom: symptom}
	payload.Notes = in.Original
	return events.SymptomLogged, payload, true
}

func extractMedication(in Input, m []string) (events.EventType, events.Payload, bool) {
	medication := strings.TrimSpace(group(m, 1))
	words := strings.Fields(medication)
	if len(words) == 0 || notMedication[words[0]] {
		return "", nil, false
	}
	return events.MedicationTaken, &events.HealthPayload{
		Medication: medication,
		Condition:  strings.TrimSpace(group(m, 2)),
	}, true
}

func extractVital(in Input, m []string) (events.EventType, events.Payload, bool) {
	label := strings.Join(strings.Fields(group(m, 1)), " ")
	raw := group(m, 2)

	var value *events.Number
	if strings.Contains(raw, "/") {
		value = events.NumString(raw)
	} else {
		v, ok := parseNumber(raw)
		if !ok {
			return "", nil, false
		}
		value = events.Num(v)
	}

	kind, unit := "weight", "kg"
	switch label {
	case "blood pressure", "bp":
		kind, unit = "blood_pressure", "mmHg"
	case "heart rate", "hr", "pulse":
		kind, unit = "heart_rate", "bpm"
	case "temperature", "temp":
		kind, unit = "temperature", "°C"
	}
	return events.VitalLogged, &events.HealthPayload{Kind: kind, Value: value, Unit: unit}, true
}
