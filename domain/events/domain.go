package events

import (
	"fmt"
	"strings"
)

// Domain is a top-level life-tracking category
type Domain string

const (
	DomainWellness     Domain = "WELLNESS"
	DomainWorkout      Domain = "WORKOUT"
	DomainHabit        Domain = "HABIT"
	DomainJobs         Domain = "JOBS"
	DomainFinances     Domain = "FINANCES"
	DomainLearning     Domain = "LEARNING"
	DomainProductivity Domain = "PRODUCTIVITY"
	DomainHealth       Domain = "HEALTH"
	DomainSobriety     Domain = "SOBRIETY"
	DomainRoutine      Domain = "ROUTINE"
)

// EventType is the kind of occurrence within a domain
type EventType string

const (
	WaterLogged     EventType = "WATER_LOGGED"
	SleepLogged     EventType = "SLEEP_LOGGED"
	MoodLogged      EventType = "MOOD_LOGGED"
	NutritionLogged EventType = "NUTRITION_LOGGED"

	SetCompleted           EventType = "SET_COMPLETED"
	SetCompletedIncomplete EventType = "SET_COMPLETED_INCOMPLETE"
	WorkoutCompleted       EventType = "WORKOUT_COMPLETED"

	HabitCompleted EventType = "HABIT_COMPLETED"

	JobApplied   EventType = "JOB_APPLIED"
	JobFound     EventType = "JOB_FOUND"
	JobInterview EventType = "JOB_INTERVIEW"
	JobOffer     EventType = "JOB_OFFER"

	ExpenseLogged EventType = "EXPENSE_LOGGED"
	IncomeLogged  EventType = "INCOME_LOGGED"

	CourseStarted   EventType = "COURSE_STARTED"
	CourseCompleted EventType = "COURSE_COMPLETED"
	BookRead        EventType = "BOOK_READ"

	FocusSession     EventType = "FOCUS_SESSION"
	ProjectCompleted EventType = "PROJECT_COMPLETED"
	TaskCompleted    EventType = "TASK_COMPLETED"
	TaskAdded        EventType = "TASK_ADDED"
	TasksAdded       EventType = "TASKS_ADDED"

	SymptomLogged   EventType = "SYMPTOM_LOGGED"
	MedicationTaken EventType = "MEDICATION_TAKEN"
	VitalLogged     EventType = "VITAL_LOGGED"

	SobrietyLogged EventType = "SOBRIETY_LOGGED"

	RoutineChecked EventType = "ROUTINE_CHECKED"
)

var allDomains = []Domain{
	DomainWellness,
	DomainWorkout,
	DomainHabit,
	DomainJobs,
	DomainFinances,
	DomainLearning,
	DomainProductivity,
	DomainHealth,
	DomainSobriety,
	DomainRoutine,
}

var domainTypes = map[Domain][]EventType{
	DomainWellness:     {WaterLogged, SleepLogged, MoodLogged, NutritionLogged},
	DomainWorkout:      {SetCompleted, SetCompletedIncomplete, WorkoutCompleted},
	DomainHabit:        {HabitCompleted},
	DomainJobs:         {JobApplied, JobFound, JobInterview, JobOffer},
	DomainFinances:     {ExpenseLogged, IncomeLogged},
	DomainLearning:     {CourseStarted, CourseCompleted, BookRead},
	DomainProductivity: {FocusSession, ProjectCompleted, TaskCompleted, TaskAdded, TasksAdded},
	DomainHealth:       {SymptomLogged, MedicationTaken, VitalLogged},
	DomainSobriety:     {SobrietyLogged},
	DomainRoutine:      {RoutineChecked},
}

// AllDomains returns the closed domain enumeration in canonical order
func AllDomains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains)
	return out
}

// DomainNames returns the domain names joined for human-facing messages
func DomainNames() string {
	names := make([]string, len(allDomains))
	for i, d := range allDomains {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// ParseDomain resolves a case-insensitive domain name. FINANCE is accepted
// as an alias of FINANCES.
func ParseDomain(s string) (Domain, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "FINANCE" {
		name = string(DomainFinances)
	}
	d := Domain(name)
	if d.IsValid() {
		return d, nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// IsValid reports whether d belongs to the closed enumeration
func (d Domain) IsValid() bool {
	_, ok := domainTypes[d]
	return ok
}

func (d Domain) String() string { return string(d) }

func (t EventType) String() string { return string(t) }

// TypesFor returns the event types defined for a domain
func TypesFor(d Domain) []EventType {
	types := domainTypes[d]
	out := make([]EventType, len(types))
	copy(out, types)
	return out
}

// IsValidType reports whether t is an event type of domain d
func IsValidType(d Domain, t EventType) bool {
	for _, candidate := range domainTypes[d] {
		if candidate == t {
			return true
		}
	}
	return false
}
