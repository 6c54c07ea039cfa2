package heuristics

import (
	"fmt"
	"strings"

	"lifelog/domain/events"
)

var domainEmojis = map[events.Domain]string{
	events.DomainWellness:     "💧",
	events.DomainWorkout:      "💪",
	events.DomainHabit:        "✅",
	events.DomainJobs:         "💼",
	events.DomainFinances:     "💰",
	events.DomainLearning:     "📚",
	events.DomainProductivity: "🎯",
	events.DomainHealth:       "🏥",
	events.DomainSobriety:     "🌱",
	events.DomainRoutine:      "🔄",
}

// Emoji returns the icon shown next to confirmations for a domain
func Emoji(d events.Domain) string {
	if e, ok := domainEmojis[d]; ok {
		return e
	}
	return "✨"
}

// Confirm renders the reply for a logged event
func Confirm(e events.ParsedEvent) string {
	emoji := Emoji(e.Domain)

	switch p := e.Payload.(type) {
	case *events.WaterPayload:
		return fmt.Sprintf("%s Got it! Logged %s %s of water. Keep it up!", emoji, p.Amount, p.Unit)
	case *events.SleepPayload:
		return fmt.Sprintf("%s Logged %s hours of sleep. Rest well!", emoji, p.Hours)
	case *events.MoodPayload:
		return fmt.Sprintf("%s Noted you're feeling %s. Thanks for sharing!", emoji, p.Mood)
	case *events.NutritionPayload:
		if p.Calories.IsNumeric() {
			return fmt.Sprintf("%s Logged %s (%s calories).", emoji, p.Food, p.Calories)
		}
		return fmt.Sprintf("%s Logged %s.", emoji, p.Food)
	case *events.SetPayload:
		if e.Type == events.SetCompletedIncomplete {
			return fmt.Sprintf("%s Logged %s reps of %s. What weight did you use?", emoji, p.Reps, p.Exercise)
		}
		return fmt.Sprintf("%s Nice! Logged %s reps of %s at %s%s.", emoji, p.Reps, p.Exercise, p.Weight, p.Unit)
	case *events.WorkoutPayload:
		switch {
		case p.Distance.IsNumeric():
			return fmt.Sprintf("%s Great workout! Logged %s %s of %s.", emoji, p.Distance, p.Unit, p.Exercise)
		case p.Duration.IsNumeric():
			return fmt.Sprintf("%s Good workout! Logged %s %s of %s.", emoji, p.Duration, p.Unit, p.Exercise)
		case p.Reps.IsNumeric():
			return fmt.Sprintf("%s Logged %s reps of %s.", emoji, p.Reps, p.Exercise)
		}
		if p.Exercise != "" {
			return fmt.Sprintf("%s Logged your %s session.", emoji, p.Exercise)
		}
		return fmt.Sprintf("%s Logged your workout.", emoji)
	case *events.HabitPayload:
		return fmt.Sprintf("%s Marked '%s' as complete. Keep it up!", emoji, p.Habit)
	case *events.JobPayload:
		return confirmJob(emoji, e.Type, p)
	case *events.FinancePayload:
		currency := p.Currency
		if currency == "" {
			currency = "USD"
		}
		if e.Type == events.IncomeLogged {
			return fmt.Sprintf("%s Logged income of %s %s.", emoji, currency, p.Amount)
		}
		if p.Category != "" {
			return fmt.Sprintf("%s Logged expense of %s %s for %s.", emoji, currency, p.Amount, p.Category)
		}
		return fmt.Sprintf("%s Logged expense of %s %s.", emoji, currency, p.Amount)
	case *events.LearningPayload:
		if e.Type == events.CourseStarted {
			return fmt.Sprintf("%s Started %s: %s. Keep learning!", emoji, strings.ToLower(p.Kind), p.Title)
		}
		verb := "Completed"
		if p.Kind == KindBook {
			verb = "Finished reading"
		}
		if p.Pages.IsNumeric() {
			return fmt.Sprintf("%s %s %s (%s pages). Well done!", emoji, verb, p.Title, p.Pages)
		}
		return fmt.Sprintf("%s %s %s. Well done!", emoji, verb, p.Title)
	case *events.ProductivityPayload:
		if e.Type == events.FocusSession {
			return fmt.Sprintf("%s Great focus session! Logged %s %s of deep work.", emoji, p.Duration, p.Unit)
		}
		kind := strings.ToLower(p.Kind)
		if kind == "" {
			kind = "tasks"
		}
		if p.Count.IsNumeric() {
			return fmt.Sprintf("%s Nice work! Logged %s %s.", emoji, p.Count, kind)
		}
		return fmt.Sprintf("%s Nice work! Logged %s.", emoji, kind)
	case *events.TaskPayload:
		switch e.Type {
		case events.TasksAdded:
			return fmt.Sprintf("%s Added %d items to your list.", emoji, len(p.Items))
		case events.TaskCompleted:
			return fmt.Sprintf("%s Checked off %s.", emoji, p.Title)
		}
		return fmt.Sprintf("%s Added %s to your list.", emoji, p.Title)
	case *events.HealthPayload:
		switch e.Type {
		case events.SymptomLogged:
			return fmt.Sprintf("%s Logged symptom: %s. Feel better soon!", emoji, p.Symptom)
		case events.MedicationTaken:
			if p.Condition != "" {
				return fmt.Sprintf("%s Logged medication: %s for %s.", emoji, p.Medication, p.Condition)
			}
			return fmt.Sprintf("%s Logged medication: %s.", emoji, p.Medication)
		}
		return fmt.Sprintf("%s Logged %s: %s %s.", emoji, p.Kind, p.Value, p.Unit)
	case *events.SobrietyPayload:
		days := ""
		if p.Days.IsNumeric() {
			days = fmt.Sprintf(" (Day %s)", p.Days)
		}
		switch p.Status {
		case SobrietySober:
			return fmt.Sprintf("%s Great job staying sober%s!", emoji, days)
		case SobrietyCraving:
			return fmt.Sprintf("%s Hang in there%s. You've got this!", emoji, days)
		}
		return fmt.Sprintf("%s Noted. Take care of yourself.", emoji)
	case *events.RoutinePayload:
		return fmt.Sprintf("%s Marked %s routine as %s.", emoji, p.Routine, p.Status)
	}
	return fmt.Sprintf("%s Got it! I've logged that for you.", emoji)
}

func confirmJob(emoji string, t events.EventType, p *events.JobPayload) string {
	role := p.RoleOrPosition()
	forRole := ""
	if role != "" {
		forRole = " for " + role
	}
	company := p.Company
	if company == "" {
		company = "Unknown company"
	}

	switch t {
	case events.JobApplied:
		if p.Status == JobStatusInterested {
			return fmt.Sprintf("%s Saved the job%s at %s to your list.", emoji, forRole, company)
		}
		return fmt.Sprintf("%s Logged job application%s at %s. Good luck!", emoji, forRole, company)
	case events.JobFound:
		if p.Incomplete {
			return fmt.Sprintf("%s I can help you track this job! Please share the company name, role, and a link if you have one.", emoji)
		}
		count := p.Count.Int()
		if count < 1 {
			count = 1
		}
		plural := ""
		if count > 1 {
			plural = "s"
		}
		return fmt.Sprintf("%s Logged %d job%s found.", emoji, count, plural)
	case events.JobInterview:
		return fmt.Sprintf("%s Logged interview%s at %s. Good luck!", emoji, forRole, company)
	case events.JobOffer:
		lead := "Logged offer"
		switch p.Status {
		case JobStatusAccepted:
			lead = "Congratulations!"
		case JobStatusDeclined:
			lead = "Noted."
		}
		salary := ""
		if p.Salary.IsNumeric() {
			salary = fmt.Sprintf(" (%s)", p.Salary)
		}
		return fmt.Sprintf("%s %s from %s%s.", emoji, lead, company, salary)
	}
	return fmt.Sprintf("%s Got it! I've logged that for you.", emoji)
}
