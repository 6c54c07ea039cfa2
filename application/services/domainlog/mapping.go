package domainlog

import (
	"errors"
	"fmt"
	"strings"

	"lifelog/domain/core/entities"
	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
)

// Job application stages
const (
	StageApplied    = "Applied"
	StageInterested = "Interested"
	StageInterview  = "Interview"
	StageOffer      = "Offer"
	StageRejected   = "Rejected"
)

// row collects the non-empty fields of a domain log
type row map[string]interface{}

func (r row) text(key, value string) row {
	if v := strings.TrimSpace(value); v != "" {
		r[key] = v
	}
	return r
}

func (r row) number(key string, n *events.Number) row {
	switch {
	case n == nil:
	case n.IsNumeric():
		r[key] = n.Float()
	case strings.TrimSpace(n.Raw) != "":
		r[key] = n.Raw
	}
	return r
}

func (r row) extras(p events.Payload) row {
	ex := p.GetExtras()
	r.text("notes", ex.Notes)
	if len(ex.Meta) > 0 {
		r["meta"] = ex.Meta
	}
	return r
}

// errUnmapped means the event has no domain log
var errUnmapped = errors.New("no domain log mapping")

// mapEvent builds the domain log kind and fields for one event.
// skip is set for events that are stored but never get a log row.
func mapEvent(e events.ParsedEvent) (kind entities.LogKind, fields map[string]interface{}, skip bool, err error) {
	r := row{}
	switch p := e.Payload.(type) {
	case *events.WaterPayload:
		r.number("amount", p.Amount).text("unit", p.Unit)
		if ml, ok := valueobjects.WaterToMillilitres(p.Amount.Float(), p.Unit); ok && p.Amount.IsNumeric() {
			r["ml"] = ml
		}
		return entities.LogWater, r.extras(p), false, nil

	case *events.SleepPayload:
		r.number("hours", p.Hours).text("quality", p.Quality)
		r["unit"] = "hours"
		return entities.LogSleep, r.extras(p), false, nil

	case *events.MoodPayload:
		r.text("mood", p.Mood).number("value", p.Value)
		return entities.LogMood, r.extras(p), false, nil

	case *events.NutritionPayload:
		r.text("food", p.Food).number("calories", p.Calories)
		return entities.LogNutrition, r.extras(p), false, nil

	case *events.SetPayload:
		if e.Type == events.SetCompletedIncomplete {
			return "", nil, true, nil
		}
		unit := valueobjects.NormalizeWeightUnit(p.Unit)
		r.text("exercise", p.Exercise).number("reps", p.Reps).number("weight", p.Weight).text("unit", unit).number("rpe", p.RPE)
		if p.Weight.IsNumeric() {
			r["weightKg"] = valueobjects.WeightToKg(p.Weight.Float(), unit)
		}
		return entities.LogWorkoutSet, r.extras(p), false, nil

	case *events.WorkoutPayload:
		r.text("exercise", p.Exercise).number("reps", p.Reps).number("weight", p.Weight).number("distance", p.Distance).number("duration", p.Duration).text("unit", p.Unit)
		return entities.LogWorkoutSession, r.extras(p), false, nil

	case *events.HabitPayload:
		r.text("habit", p.Habit).text("habitId", p.HabitID)
		return entities.LogHabit, r.extras(p), false, nil

	case *events.JobPayload:
		return mapJob(e.Type, p, r)

	case *events.FinancePayload:
		kind := "EXPENSE"
		if e.Type == events.IncomeLogged {
			kind = "INCOME"
		}
		r.number("amount", p.Amount).text("currency", p.Currency).text("category", p.Category)
		r["type"] = kind
		return entities.LogFinance, r.extras(p), false, nil

	case *events.LearningPayload:
		kind := p.Kind
		if kind == "" {
			kind = "COURSE"
			if e.Type == events.BookRead {
				kind = "BOOK"
			}
		}
		title := p.Title
		if strings.TrimSpace(title) == "" {
			title = "Untitled"
		}
		r.text("type", strings.ToUpper(kind)).text("title", title).number("progress", p.Progress).number("pages", p.Pages)
		return entities.LogLearning, r.extras(p), false, nil

	case *events.ProductivityPayload:
		kind := p.Kind
		if kind == "" {
			kind = strings.TrimSuffix(strings.TrimSuffix(string(e.Type), "_COMPLETED"), "_SESSION")
		}
		r.text("type", kind).number("count", p.Count).number("duration", p.Duration).text("unit", p.Unit).text("description", p.Description)
		return entities.LogProductivity, r.extras(p), false, nil

	case *events.TaskPayload:
		r.text("type", "TASK").text("title", p.Title).text("status", p.Status)
		if len(p.Items) > 0 {
			r["items"] = p.Items
		}
		r["event"] = string(e.Type)
		return entities.LogProductivity, r.extras(p), false, nil

	case *events.HealthPayload:
		kind := p.Kind
		if kind == "" {
			kind = strings.TrimSuffix(strings.TrimSuffix(string(e.Type), "_LOGGED"), "_TAKEN")
		}
		r.text("type", kind).text("symptom", p.Symptom).text("medication", p.Medication).text("condition", p.Condition).number("value", p.Value).text("unit", p.Unit)
		return entities.LogHealth, r.extras(p), false, nil

	case *events.SobrietyPayload:
		r.text("substance", p.Substance).text("status", p.Status).number("days", p.Days).number("craving", p.Craving)
		return entities.LogSobriety, r.extras(p), false, nil

	case *events.RoutinePayload:
		r.text("routine", p.Routine).text("routineId", p.RoutineID).text("status", p.Status)
		return entities.LogRoutine, r.extras(p), false, nil
	}
	return "", nil, false, fmt.Errorf("%w for %s/%s", errUnmapped, e.Domain, e.Type)
}

func mapJob(t events.EventType, p *events.JobPayload, r row) (entities.LogKind, map[string]interface{}, bool, error) {
	switch t {
	case events.JobFound:
		// Unknown company and role are left out rather than stored as placeholders
		if p.Incomplete {
			return "", nil, true, nil
		}
		count := p.Count
		if !count.IsNumeric() || count.Float() < 1 {
			count = events.Num(1)
		}
		r.text("company", p.Company).text("role", p.RoleOrPosition()).text("url", p.URL).number("count", count)
		r["stage"] = StageInterested
		return entities.LogJobLead, r.extras(p), false, nil
	}

	stage := stageFor(t, p.Status)
	r.text("company", p.Company).text("role", p.RoleOrPosition()).text("url", p.URL).number("salary", p.Salary)
	r["stage"] = stage
	return entities.LogJobApplication, r.extras(p), false, nil
}

// stageFor maps the payload status onto the application pipeline
func stageFor(t events.EventType, status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "INTERESTED":
		return StageInterested
	case "REJECTED", "DECLINED":
		return StageRejected
	case "ACCEPTED", "PENDING":
		if t == events.JobOffer {
			return StageOffer
		}
	}
	switch t {
	case events.JobInterview:
		return StageInterview
	case events.JobOffer:
		return StageOffer
	}
	return StageApplied
}
