package validators

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"lifelog/domain/events"
	"lifelog/pkg/errors"
)

var (
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3})?Z$`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{2}/\d{2}/\d{4}$`)
	numericIDPattern = regexp.MustCompile(`^\d{10,}$`)
	urlPattern       = regexp.MustCompile(`^https?://`)
	letterPattern    = regexp.MustCompile(`\p{L}`)
)

var badValues = []string{"unknown", "to be determined", "tbd", "n/a", "null", "undefined", ""}

var rawInputPhrases = []string{
	"i want to apply",
	"i want to",
	"i am trying to",
	"help me",
}

// Result is the outcome of validating one event
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Err converts an invalid result into a validation AppError
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return errors.NewValidationError(r.Error).WithCode("INVALID_EVENT")
}

func ok() Result { return Result{Valid: true} }

func fail(format string, args ...interface{}) Result {
	return Result{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// Rule checks one aspect of an event
type Rule func(e events.ParsedEvent) Result

// EventValidator is the single gate every extracted event passes before storage.
// Rules are composed per domain and run in order; the first failure wins.
type EventValidator struct {
	common []Rule
	rules  map[events.Domain][]Rule
}

// NewEventValidator creates a validator with the standard rule set
func NewEventValidator() *EventValidator {
	return &EventValidator{
		common: []Rule{knownDomainAndType, confidenceInRange, payloadPresent},
		rules: map[events.Domain][]Rule{
			events.DomainHabit:    {habitRule},
			events.DomainJobs:     {jobRule},
			events.DomainWorkout:  {workoutRule},
			events.DomainWellness: {waterRule},
			events.DomainFinances: {financeRule},
		},
	}
}

// AddRule appends a rule for a domain
func (v *EventValidator) AddRule(d events.Domain, rule Rule) {
	v.rules[d] = append(v.rules[d], rule)
}

// Validate runs the common rules and then the domain rules
func (v *EventValidator) Validate(e events.ParsedEvent) Result {
	for _, rule := range v.common {
		if r := rule(e); !r.Valid {
			return r
		}
	}
	for _, rule := range v.rules[e.Domain] {
		if r := rule(e); !r.Valid {
			return r
		}
	}
	return ok()
}

// ValidatePayload validates an untyped payload, as proposed by a model
func (v *EventValidator) ValidatePayload(domain, eventType string, fields map[string]interface{}) Result {
	d, err := events.ParseDomain(domain)
	if err != nil {
		return fail("Unknown domain %q. Available domains: %s", domain, events.DomainNames())
	}
	t := events.EventType(strings.ToUpper(strings.TrimSpace(eventType)))
	if !events.IsValidType(d, t) {
		return fail("Unknown event type %q for domain %s", eventType, d)
	}
	payload, err := events.PayloadFromMap(d, t, fields)
	if err != nil {
		return fail("Invalid payload: %v", err)
	}
	return v.Validate(events.NewParsedEvent(d, t, payload, 1))
}

// Filter splits events into those that pass and the results of those that fail
func (v *EventValidator) Filter(in []events.ParsedEvent) ([]events.ParsedEvent, []Result) {
	valid := make([]events.ParsedEvent, 0, len(in))
	var rejected []Result
	for _, e := range in {
		if r := v.Validate(e); r.Valid {
			valid = append(valid, e)
		} else {
			rejected = append(rejected, r)
		}
	}
	return valid, rejected
}

func knownDomainAndType(e events.ParsedEvent) Result {
	if !e.Domain.IsValid() {
		return fail("Unknown domain %q. Available domains: %s", e.Domain, events.DomainNames())
	}
	if !events.IsValidType(e.Domain, e.Type) {
		return fail("Unknown event type %q for domain %s", e.Type, e.Domain)
	}
	return ok()
}

func confidenceInRange(e events.ParsedEvent) Result {
	if math.IsNaN(e.Confidence) || e.Confidence < 0 || e.Confidence > 1 {
		return fail("Confidence must be between 0 and 1, got %v", e.Confidence)
	}
	return ok()
}

func payloadPresent(e events.ParsedEvent) Result {
	if e.Payload == nil {
		return fail("Event %s/%s has no payload", e.Domain, e.Type)
	}
	return ok()
}

func habitRule(e events.ParsedEvent) Result {
	p, isHabit := e.Payload.(*events.HabitPayload)
	if !isHabit {
		return fail("Habit event carries a %T payload", e.Payload)
	}
	if strings.TrimSpace(p.Habit) == "" {
		return fail("Habit name is required")
	}
	if !IsValidHabitName(p.Habit) {
		return fail(`Invalid habit name: "%s". Habit names must be descriptive text (e.g., "quit smoking", "drink water"), not timestamps, dates, or placeholders.`, p.Habit)
	}
	return ok()
}

func jobRule(e events.ParsedEvent) Result {
	p, isJob := e.Payload.(*events.JobPayload)
	if !isJob {
		return fail("Job event carries a %T payload", e.Payload)
	}

	role := p.RoleOrPosition()
	switch e.Type {
	case events.JobApplied:
		if !IsValidCompanyName(p.Company) {
			return invalidCompany(p.Company)
		}
		if !IsValidRoleName(role) {
			return invalidRole(role)
		}
	case events.JobInterview, events.JobOffer:
		if !IsValidCompanyName(p.Company) {
			return invalidCompany(p.Company)
		}
		if strings.TrimSpace(role) != "" && !IsValidRoleName(role) {
			return invalidRole(role)
		}
	case events.JobFound:
		if p.Incomplete {
			return fail("Job lead is incomplete: company and role are needed")
		}
		if strings.TrimSpace(p.Company) != "" && !IsValidCompanyName(p.Company) {
			return invalidCompany(p.Company)
		}
		if strings.TrimSpace(role) != "" && !IsValidRoleName(role) {
			return invalidRole(role)
		}
		if strings.TrimSpace(p.Company) == "" && p.Count.Float() < 1 {
			return fail("Job lead needs a company or a count of at least 1")
		}
	}
	return ok()
}

func invalidCompany(company string) Result {
	return fail(`Invalid company: "%s". Company must be a valid name, not "Unknown", timestamp, or placeholder.`, company)
}

func invalidRole(role string) Result {
	return fail(`Invalid role: "%s". Role must be a valid job title, not "Unknown", timestamp, date, or raw input.`, role)
}

func workoutRule(e events.ParsedEvent) Result {
	var (
		exercise string
		reps     *events.Number
		weight   *events.Number
	)
	switch p := e.Payload.(type) {
	case *events.SetPayload:
		exercise, reps, weight = p.Exercise, p.Reps, p.Weight
	case *events.WorkoutPayload:
		exercise, reps, weight = p.Exercise, p.Reps, p.Weight
	default:
		return fail("Workout event carries a %T payload", e.Payload)
	}

	if strings.TrimSpace(exercise) == "" {
		return fail("Exercise name is required")
	}
	if !IsValidExerciseName(exercise) {
		return fail(`Invalid exercise: "%s". Exercise must be a descriptive name (e.g., "squats", "running"), not a timestamp, URL, or placeholder.`, exercise)
	}
	if weight != nil && !IsValidMagnitude(weight) {
		return fail(`Invalid weight: "%s". Weight must be a number.`, weight.Raw)
	}
	if reps != nil && !IsValidMagnitude(reps) {
		return fail(`Invalid reps: "%s". Reps must be a number.`, reps.Raw)
	}
	if e.Type == events.SetCompleted && weight == nil {
		return fail("Weight is required for a completed set of %s", exercise)
	}
	return ok()
}

func waterRule(e events.ParsedEvent) Result {
	if e.Type != events.WaterLogged {
		return ok()
	}
	p, isWater := e.Payload.(*events.WaterPayload)
	if !isWater {
		return fail("Water event carries a %T payload", e.Payload)
	}
	if !IsValidMagnitude(p.Amount) || p.Amount.Float() <= 0 {
		return fail("Water amount must be a positive number")
	}
	return ok()
}

func financeRule(e events.ParsedEvent) Result {
	p, isFinance := e.Payload.(*events.FinancePayload)
	if !isFinance {
		return fail("Finance event carries a %T payload", e.Payload)
	}
	if !IsValidMagnitude(p.Amount) || p.Amount.Float() <= 0 {
		return fail("Amount must be a positive number")
	}
	return ok()
}

// IsBadValue reports placeholder text such as "Unknown" or "N/A"
func IsBadValue(s string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	for _, bad := range badValues {
		if trimmed == bad {
			return true
		}
	}
	return false
}

// isDescriptiveText applies the exclusions shared by all free-text fields
func isDescriptiveText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if IsBadValue(trimmed) {
		return false
	}
	if timestampPattern.MatchString(trimmed) || datePattern.MatchString(trimmed) {
		return false
	}
	if numericIDPattern.MatchString(trimmed) || urlPattern.MatchString(trimmed) {
		return false
	}
	return true
}

// IsValidHabitName checks a habit label
func IsValidHabitName(habit string) bool {
	trimmed := strings.TrimSpace(habit)
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 50 {
		return false
	}
	return isDescriptiveText(trimmed) && letterPattern.MatchString(trimmed)
}

// IsValidCompanyName checks a company label
func IsValidCompanyName(company string) bool {
	trimmed := strings.TrimSpace(company)
	if n := utf8.RuneCountInString(trimmed); n < 1 || n > 100 {
		return false
	}
	return isDescriptiveText(trimmed)
}

// IsValidRoleName checks a job title, rejecting echoes of the user's own prompt
func IsValidRoleName(role string) bool {
	trimmed := strings.TrimSpace(role)
	if n := utf8.RuneCountInString(trimmed); n < 1 || n > 100 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range rawInputPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return isDescriptiveText(trimmed)
}

// IsValidExerciseName checks an exercise label
func IsValidExerciseName(exercise string) bool {
	trimmed := strings.TrimSpace(exercise)
	if utf8.RuneCountInString(trimmed) > 100 {
		return false
	}
	return isDescriptiveText(trimmed) && letterPattern.MatchString(trimmed)
}

// IsValidMagnitude accepts finite numbers, including numeric strings
func IsValidMagnitude(n *events.Number) bool {
	if n == nil || !n.Numeric {
		return false
	}
	return !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
}
