package heuristics

import (
	"strings"

	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
)

const weightUnits = `kg|kgs|kilograms?|lbs?|pounds?`

const liftNames = `dead\s*lifts?|squats?|bench(?:\s+press(?:es)?)?|press(?:es)?|lunges?|curls?|extensions?|rows?|pull-?ups?|push-?ups?|sit-?ups?|chin-?ups?|dips?|crunch(?:es)?|flys|flies|raises?|shrugs?`

var (
	loadedSetMention = re(`\b(?:at|with|using)\b|@|\d+\s*(?:` + weightUnits + `)\b`)
	exerciseFiller   = map[string]bool{
		"i": true, "did": true, "do": true, "my": true, "some": true, "a": true, "set": true,
		"of": true, "performed": true, "completed": true, "finished": true, "just": true,
		"rep": true, "reps": true, "repetition": true, "repetitions": true, "x": true,
		"times": true, "sets": true, "lifted": true,
	}
)

func workoutFamily() Family {
	return Family{
		Domain: events.DomainWorkout,
		Rules: []Rule{
			{
				Name:       "set-reps-of-exercise-at-weight",
				Pattern:    re(`(?:did|performed|completed|finished|did\s+a\s+set\s+of)\s+(\d+)\s*(?:reps?|repetitions?|x|times)\s+(?:of\s+)?([a-z][a-z\s-]*?)\s+(?:at|with|@|using)\s*(\d+(?:\.\d+)?)\s*(` + weightUnits + `)\b`),
				Extract:    setExtractor(1, 2, 3, 4),
				Confidence: 0.85,
			},
			{
				// "squat 5x100kg"
				Name:       "set-exercise-reps-x-weight",
				Pattern:    re(`([a-z][a-z\s-]*?)\s+(\d+)\s*x\s*(\d+(?:\.\d+)?)\s*(` + weightUnits + `)\b`),
				Extract:    setExtractor(2, 1, 3, 4),
				Confidence: 0.85,
			},
			{
				// "5 squats at 100kg"
				Name:       "set-reps-exercise-at-weight",
				Pattern:    re(`(\d+)\s+([a-z][a-z\s-]*?)\s+(?:at|@|with|using)\s*(\d+(?:\.\d+)?)\s*(` + weightUnits + `)\b`),
				Extract:    setExtractor(1, 2, 3, 4),
				Confidence: 0.85,
			},
			{
				Name:       "cardio-running",
				Pattern:    re(`(?:ran|run|running|jogged|jogging|sprinted|sprinting)\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(km|kilometers?|kilometres?|miles?|mi|minutes?|mins?|hours?|hrs?|h)\b`),
				Extract:    cardioExtractor("running"),
				Confidence: 0.8,
			},
			{
				Name:       "cardio-cycling",
				Pattern:    re(`(?:biked|biking|cycled|cycling|rode|riding)\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(km|kilometers?|kilometres?|miles?|mi|minutes?|mins?|hours?|hrs?)\b`),
				Extract:    cardioExtractor("cycling"),
				Confidence: 0.8,
			},
			{
				Name:       "cardio-swimming",
				Pattern:    re(`(?:swam|swimming|swim)\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(meters?|metres?|m|yards?|km|kilometers?|kilometres?|minutes?|mins?|hours?|hrs?)\b`),
				Extract:    cardioExtractor("swimming"),
				Confidence: 0.8,
			},
			{
				Name:       "cardio-walking",
				Pattern:    re(`(?:walked|walking|walk)\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(km|kilometers?|kilometres?|miles?|mi|steps?|minutes?|mins?|hours?|hrs?)\b`),
				Extract:    cardioExtractor("walking"),
				Confidence: 0.8,
			},
			{
				Name:       "flexibility-session",
				Pattern:    re(`(?:did|practiced|practised|did\s+a\s+session\s+of)\s+(?:some\s+)?(yoga|pilates|stretching|meditation|martial\s+arts)(?:\s+for\s+(\d+(?:\.\d+)?)\s*(minutes?|mins?|hours?|hrs?)\b)?`),
				Extract:    extractFlexibility,
				Confidence: 0.75,
			},
			{
				Name:       "flexibility-duration",
				Pattern:    re(`(yoga|pilates|stretching|meditation)\s+for\s+(\d+(?:\.\d+)?)\s*(minutes?|mins?|hours?|hrs?)\b`),
				Extract:    extractFlexibility,
				Confidence: 0.75,
			},
			{
				// "50 russian dead lifts" carries reps but no load; the weight
				// comes from a follow-up turn.
				Name:       "set-reps-only",
				Pattern:    re(`(\d+)\s+((?:[a-z]+\s+){0,2}?(?:` + liftNames + `))\b`),
				Extract:    extractRepsOnly,
				Confidence: 0.85,
			},
		},
	}
}

func setExtractor(repsIdx, exerciseIdx, weightIdx, unitIdx int) Extractor {
	return func(in Input, m []string) (events.EventType, events.Payload, bool) {
		reps, ok := parseNumber(group(m, repsIdx))
		if !ok || reps <= 0 {
			return "", nil, false
		}
		weight, ok := parseNumber(group(m, weightIdx))
		if !ok || weight <= 0 {
			return "", nil, false
		}
		exercise := cleanExercise(group(m, exerciseIdx))
		if exercise == "" {
			return "", nil, false
		}
		return events.SetCompleted, &events.SetPayload{
			Exercise: exercise,
			Reps:     events.Num(reps),
			Weight:   events.Num(weight),
			Unit:     valueobjects.NormalizeWeightUnit(group(m, unitIdx)),
		}, true
	}
}

func extractRepsOnly(in Input, m []string) (events.EventType, events.Payload, bool) {
	if loadedSetMention.MatchString(in.Lower) {
		return "", nil, false
	}
	reps, ok := parseNumber(group(m, 1))
	if !ok || reps <= 0 {
		return "", nil, false
	}
	exercise := cleanExercise(group(m, 2))
	if exercise == "" {
		return "", nil, false
	}
	return events.SetCompletedIncomplete, &events.SetPayload{
		Exercise: exercise,
		Reps:     events.Num(reps),
	}, true
}

func cardioExtractor(exercise string) Extractor {
	return func(in Input, m []string) (events.EventType, events.Payload, bool) {
		value, ok := parseNumber(group(m, 1))
		if !ok || value <= 0 {
			return "", nil, false
		}
		unit, isDuration := cardioUnit(group(m, 2))
		payload := &events.WorkoutPayload{Exercise: exercise, Unit: unit}
		if isDuration {
			payload.Duration = events.Num(value)
		} else {
			payload.Distance = events.Num(value)
		}
		return events.WorkoutCompleted, payload, true
	}
}

// cardioUnit canonicalises a distance or duration unit
func cardioUnit(raw string) (unit string, isDuration bool) {
	switch {
	case strings.HasPrefix(raw, "km"), strings.HasPrefix(raw, "kilomet"):
		return "km", false
	case strings.HasPrefix(raw, "mi"):
		if strings.HasPrefix(raw, "min") {
			return "minutes", true
		}
		return "miles", false
	case strings.HasPrefix(raw, "h"):
		return "hours", true
	case strings.HasPrefix(raw, "yard"):
		return "yards", false
	case strings.HasPrefix(raw, "step"):
		return "steps", false
	}
	return "meters", false
}

func extractFlexibility(in Input, m []string) (events.EventType, events.Payload, bool) {
	exercise := strings.Join(strings.Fields(group(m, 1)), " ")
	payload := &events.WorkoutPayload{Exercise: exercise}
	if raw := group(m, 2); raw != "" {
		duration, ok := parseNumber(raw)
		if !ok {
			return "", nil, false
		}
		payload.Duration = events.Num(duration)
		payload.Unit = "minutes"
		if strings.HasPrefix(group(m, 3), "h") {
			payload.Unit = "hours"
		}
	}
	return events.WorkoutCompleted, payload, true
}

// cleanExercise drops leading filler such as "did a set of" or "reps of"
func cleanExercise(raw string) string {
	words := strings.Fields(raw)
	for len(words) > 0 && exerciseFiller[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
