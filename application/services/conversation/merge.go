package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"lifelog/application/services/heuristics"
	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
)

// MergeConfidence is assigned to every event completed from context
const MergeConfidence = 0.85

const maxFollowUpLength = 80

var (
	bareWeight     = regexp.MustCompile(`^(?:at|with|@|using)?\s*(\d+(?:\.\d+)?)\s*(kgs?|kilos?|kilograms?|lbs?|pounds?)[.!]?$`)
	bareReps       = regexp.MustCompile(`^(?:for\s+)?(\d+)\s*(?:reps?|repetitions?|times)[.!]?$`)
	bareWater      = regexp.MustCompile(`^(?:another|one more|plus|and|also)?\s*(\d+(?:\.\d+)?)\s*(ml|milliliters?|millilitres?|cups?|glass(?:es)?|oz|ounces?|l|liters?|litres?|pints?)(?:\s+(?:more|again))?(?:\s+(?:of\s+)?water)?[.!]?$`)
	appliedAck     = regexp.MustCompile(`^(?:i\s+)?(?:just\s+|already\s+)?(?:applied|submitted|sent)(?:\s+(?:my\s+)?(?:application|it|resume|cv))?(?:\s+(?:to|for)\s+(.+?))?[.!]?$`)
	roleSuffix     = regexp.MustCompile(`(?i)\s*\b(?:role|position|job|opening)$`)
	leadingArticle = regexp.MustCompile(`(?i)^(?:the|that|this)\s+`)
)

var pronouns = map[string]bool{"it": true, "that": true, "this": true, "them": true, "one": true}

// MergeFollowUp completes the most recent unfinished event with a short
// follow-up such as "5kg" or "i applied". Entries are newest first.
func MergeFollowUp(entries []Entry, text string) (*events.ParsedEvent, bool) {
	original := strings.TrimSpace(text)
	lower := strings.ToLower(original)
	if lower == "" || len(lower) > maxFollowUpLength || len(entries) == 0 {
		return nil, false
	}

	if m := bareWeight.FindStringSubmatch(lower); m != nil {
		return mergeWeight(entries, m[1], m[2])
	}
	if m := bareReps.FindStringSubmatch(lower); m != nil {
		return mergeReps(entries, m[1])
	}
	if m := bareWater.FindStringSubmatch(lower); m != nil {
		return mergeWater(entries, m[1], m[2])
	}
	if m := appliedAck.FindStringSubmatchIndex(lower); m != nil {
		named := ""
		if len(original) != len(lower) {
			original = lower
		}
		if m[2] >= 0 {
			named = original[m[2]:m[3]]
		}
		return mergeApplication(entries, named)
	}
	return nil, false
}

func mergeWeight(entries []Entry, rawWeight, unit string) (*events.ParsedEvent, bool) {
	weight, err := strconv.ParseFloat(rawWeight, 64)
	if err != nil || weight <= 0 {
		return nil, false
	}

	for _, e := range entries {
		if e.Domain != events.DomainWorkout {
			continue
		}
		exercise, reps, ok := awaitingWeight(e)
		if !ok {
			continue
		}
		merged := events.NewParsedEvent(events.DomainWorkout, events.SetCompleted, &events.SetPayload{
			Exercise: exercise,
			Reps:     reps,
			Weight:   events.Num(weight),
			Unit:     valueobjects.NormalizeWeightUnit(unit),
		}, MergeConfidence)
		return &merged, true
	}
	return nil, false
}

// awaitingWeight reports whether a workout entry is a strength set with no weight yet
func awaitingWeight(e Entry) (string, *events.Number, bool) {
	switch p := e.Payload.(type) {
	case *events.SetPayload:
		if e.Type == events.SetCompletedIncomplete || !p.Weight.IsNumeric() {
			return p.Exercise, p.Reps, p.Exercise != ""
		}
	case *events.WorkoutPayload:
		if p.Reps.IsNumeric() && !p.Distance.IsNumeric() && !p.Duration.IsNumeric() {
			return p.Exercise, p.Reps, p.Exercise != ""
		}
	}
	return "", nil, false
}

func mergeReps(entries []Entry, rawReps string) (*events.ParsedEvent, bool) {
	reps, err := strconv.Atoi(rawReps)
	if err != nil || reps <= 0 {
		return nil, false
	}

	for _, e := range entries {
		p, ok := e.Payload.(*events.SetPayload)
		if !ok || e.Domain != events.DomainWorkout {
			continue
		}
		if !p.Weight.IsNumeric() || p.Reps.IsNumeric() {
			continue
		}
		merged := events.NewParsedEvent(events.DomainWorkout, events.SetCompleted, &events.SetPayload{
			Exercise: p.Exercise,
			Reps:     events.Num(float64(reps)),
			Weight:   p.Weight,
			Unit:     p.Unit,
		}, MergeConfidence)
		return &merged, true
	}
	return nil, false
}

func mergeWater(entries []Entry, rawAmount, unit string) (*events.ParsedEvent, bool) {
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil || amount <= 0 || amount >= 50000 {
		return nil, false
	}

	for _, e := range entries {
		if e.Domain == events.DomainWellness && e.Type == events.WaterLogged {
			merged := events.NewParsedEvent(events.DomainWellness, events.WaterLogged, &events.WaterPayload{
				Amount: events.Num(amount),
				Unit:   heuristics.InferWaterUnit(unit, amount),
			}, MergeConfidence)
			return &merged, true
		}
	}
	return nil, false
}

func mergeApplication(entries []Entry, named string) (*events.ParsedEvent, bool) {
	for _, e := range entries {
		p, ok := e.Payload.(*events.JobPayload)
		if !ok || e.Domain != events.DomainJobs || strings.TrimSpace(p.Company) == "" {
			continue
		}
		role, ok := pickRole(p.RoleOrPosition(), p.Company, named)
		if !ok {
			return nil, false
		}
		merged := events.NewParsedEvent(events.DomainJobs, events.JobApplied, &events.JobPayload{
			Company: p.Company,
			Role:    role,
			URL:     p.URL,
			Status:  heuristics.JobStatusApplied,
		}, MergeConfidence)
		return &merged, true
	}
	return nil, false
}

// pickRole decides the role of a confirmed application. The follow-up may
// refer back to the lead ("it", the company, part of the known role) or name
// a role explicitly ("the platform role"); anything else is a new lead.
func pickRole(prior, company, named string) (string, bool) {
	named = strings.TrimSpace(named)
	if named == "" {
		return prior, true
	}

	withoutArticle := leadingArticle.ReplaceAllString(named, "")
	lower := strings.ToLower(withoutArticle)
	if pronouns[lower] || strings.EqualFold(withoutArticle, company) {
		return prior, true
	}

	if !roleSuffix.MatchString(withoutArticle) {
		return "", false
	}
	role := strings.TrimSpace(roleSuffix.ReplaceAllString(withoutArticle, ""))
	if role == "" || (prior != "" && strings.Contains(strings.ToLower(prior), strings.ToLower(role))) {
		return prior, true
	}
	return role, true
}
