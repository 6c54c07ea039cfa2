package heuristics

import (
	"strings"

	"lifelog/domain/events"
)

// Sobriety statuses
const (
	SobrietySober    = "sober"
	SobrietyCraving  = "craving"
	SobrietyRelapsed = "relapsed"
)

var (
	sobrietyDays    = re(`\bday\s+(\d+)\b|\b(\d+)\s+days?\b`)
	cravingWords    = re(`\b(?:craving|cravings|urges?)\b`)
	strongCraving   = re(`\b(?:strong|intense|very|really\s+bad)\b`)
	substanceSignal = []struct {
		pattern   string
		substance string
	}{
		{"alcohol", "alcohol"}, {"drinking", "alcohol"}, {"booze", "alcohol"}, {"beer", "alcohol"}, {"wine", "alcohol"},
		{"smok", "nicotine"}, {"cigarette", "nicotine"}, {"nicotine", "nicotine"}, {"vap", "nicotine"},
		{"weed", "cannabis"}, {"cannabis", "cannabis"}, {"marijuana", "cannabis"},
		{"gambl", "gambling"},
		{"drug", "drugs"},
	}
)

func sobrietyFamily() Family {
	return Family{
		Domain: events.DomainSobriety,
		Rules: []Rule{
			{
				Name:       "sobriety-check-in",
				Pattern:    re(`\b(?:sober|sobriety|clean|relapsed?|craving|cravings|urges?|day\s+\d+)\b`),
				Extract:    extractSobriety,
				Confidence: 0.8,
			},
		},
	}
}

func extractSobriety(in Input, m []string) (events.EventType, events.Payload, bool) {
	payload := &events.SobrietyPayload{Status: SobrietySober}
	switch {
	case strings.Contains(in.Lower, "relapse"):
		payload.Status = SobrietyRelapsed
	case cravingWords.MatchString(in.Lower):
		payload.Status = SobrietyCraving
		craving := 5.0
		if strongCraving.MatchString(in.Lower) {
			craving = 8
		}
		payload.Craving = events.Num(craving)
	}

	if dm := sobrietyDays.FindStringSubmatch(in.Lower); dm != nil {
		raw := dm[1]
		if raw == "" {
			raw = dm[2]
		}
		days, ok := parseNumber(raw)
		if !ok {
			return "", nil, false
		}
		payload.Days = events.Num(days)
	}

	for _, signal := range substanceSignal {
		if strings.Contains(in.Lower, signal.pattern) {
			payload.Substance = signal.substance
			break
		}
	}
	payload.Notes = in.Original
	return events.SobrietyLogged, payload, true
}
