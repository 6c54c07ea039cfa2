package events

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Payload is the typed body of a ParsedEvent. Each (domain, type) pair maps
// to exactly one variant; see NewPayload.
type Payload interface {
	GetExtras() *Extras
}

// Extras is the escape hatch carried by every payload variant.
// Meta holds wire keys the variant does not declare.
type Extras struct {
	Notes string                 `json:"notes,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// GetExtras exposes the notes/meta bag
func (e *Extras) GetExtras() *Extras { return e }

// SetMeta stores an undeclared key
func (e *Extras) SetMeta(key string, value interface{}) {
	if e.Meta == nil {
		e.Meta = make(map[string]interface{})
	}
	e.Meta[key] = value
}

type WaterPayload struct {
	Amount *Number `json:"amount,omitempty"`
	Unit   string  `json:"unit,omitempty"`
	Extras
}

type SleepPayload struct {
	Hours   *Number `json:"hours,omitempty"`
	Quality string  `json:"quality,omitempty"`
	Extras
}

type MoodPayload struct {
	Mood  string  `json:"mood,omitempty"`
	Value *Number `json:"value,omitempty"`
	Extras
}

type NutritionPayload struct {
	Food     string  `json:"food,omitempty"`
	Calories *Number `json:"calories,omitempty"`
	Extras
}

// SetPayload backs SET_COMPLETED and SET_COMPLETED_INCOMPLETE
type SetPayload struct {
	Exercise string  `json:"exercise,omitempty"`
	Reps     *Number `json:"reps,omitempty"`
	Weight   *Number `json:"weight,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	RPE      *Number `json:"rpe,omitempty"`
	Extras
}

type WorkoutPayload struct {
	Exercise string  `json:"exercise,omitempty"`
	Reps     *Number `json:"reps,omitempty"`
	Weight   *Number `json:"weight,omitempty"`
	Distance *Number `json:"distance,omitempty"`
	Duration *Number `json:"duration,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Extras
}

type HabitPayload struct {
	Habit   string `json:"habit,omitempty"`
	HabitID string `json:"habitId,omitempty"`
	Extras
}

type JobPayload struct {
	Company    string  `json:"company,omitempty"`
	Role       string  `json:"role,omitempty"`
	Position   string  `json:"position,omitempty"`
	URL        string  `json:"url,omitempty"`
	Status     string  `json:"status,omitempty"`
	Salary     *Number `json:"salary,omitempty"`
	Count      *Number `json:"count,omitempty"`
	Incomplete bool    `json:"incomplete,omitempty"`
	Extras
}

// RoleOrPosition returns whichever title field is set
func (p *JobPayload) RoleOrPosition() string {
	if strings.TrimSpace(p.Role) != "" {
		return p.Role
	}
	return p.Position
}

type FinancePayload struct {
	Amount   *Number `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Category string  `json:"category,omitempty"`
	Extras
}

type LearningPayload struct {
	Kind     string  `json:"type,omitempty"`
	Title    string  `json:"title,omitempty"`
	Progress *Number `json:"progress,omitempty"`
	Pages    *Number `json:"pages,omitempty"`
	Extras
}

type ProductivityPayload struct {
	Kind        string  `json:"type,omitempty"`
	Count       *Number `json:"count,omitempty"`
	Duration    *Number `json:"duration,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description,omitempty"`
	Extras
}

type TaskPayload struct {
	Title  string   `json:"title,omitempty"`
	Status string   `json:"status,omitempty"`
	Items  []string `json:"items,omitempty"`
	Extras
}

type HealthPayload struct {
	Symptom    string  `json:"symptom,omitempty"`
	Medication string  `json:"medication,omitempty"`
	Condition  string  `json:"condition,omitempty"`
	Kind       string  `json:"type,omitempty"`
	Value      *Number `json:"value,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Extras
}

type SobrietyPayload struct {
	Substance string  `json:"substance,omitempty"`
	Status    string  `json:"status,omitempty"`
	Days      *Number `json:"days,omitempty"`
	Craving   *Number `json:"craving,omitempty"`
	Extras
}

type RoutinePayload struct {
	Routine   string `json:"routine,omitempty"`
	RoutineID string `json:"routineId,omitempty"`
	Status    string `json:"status,omitempty"`
	Extras
}

type payloadKey struct {
	domain    Domain
	eventType EventType
}

var payloadFactories = map[payloadKey]func() Payload{
	{DomainWellness, WaterLogged}:     func() Payload { return &WaterPayload{} },
	{DomainWellness, SleepLogged}:     func() Payload { return &SleepPayload{} },
	{DomainWellness, MoodLogged}:      func() Payload { return &MoodPayload{} },
	{DomainWellness, NutritionLogged}: func() Payload { return &NutritionPayload{} },

	{DomainWorkout, SetCompleted}:           func() Payload { return &SetPayload{} },
	{DomainWorkout, SetCompletedIncomplete}: func() Payload { return &SetPayload{} },
	{DomainWorkout, WorkoutCompleted}:       func() Payload { return &WorkoutPayload{} },

	{DomainHabit, HabitCompleted}: func() Payload { return &HabitPayload{} },

	{DomainJobs, JobApplied}:   func() Payload { return &JobPayload{} },
	{DomainJobs, JobFound}:     func() Payload { return &JobPayload{} },
	{DomainJobs, JobInterview}: func() Payload { return &JobPayload{} },
	{DomainJobs, JobOffer}:     func() Payload { return &JobPayload{} },

	{DomainFinances, ExpenseLogged}: func() Payload { return &FinancePayload{} },
	{DomainFinances, IncomeLogged}:  func() Payload { return &FinancePayload{} },

	{DomainLearning, CourseStarted}:   func() Payload { return &LearningPayload{} },
	{DomainLearning, CourseCompleted}: func() Payload { return &LearningPayload{} },
	{DomainLearning, BookRead}:        func() Payload { return &LearningPayload{} },

	{DomainProductivity, FocusSession}:     func() Payload { return &ProductivityPayload{} },
	{DomainProductivity, ProjectCompleted}: func() Payload { return &ProductivityPayload{} },
	{DomainProductivity, TaskCompleted}:    func() Payload { return &TaskPayload{} },
	{DomainProductivity, TaskAdded}:        func() Payload { return &TaskPayload{} },
	{DomainProductivity, TasksAdded}:       func() Payload { return &TaskPayload{} },

	{DomainHealth, SymptomLogged}:   func() Payload { return &HealthPayload{} },
	{DomainHealth, MedicationTaken}: func() Payload { return &HealthPayload{} },
	{DomainHealth, VitalLogged}:     func() Payload { return &HealthPayload{} },

	{DomainSobriety, SobrietyLogged}: func() Payload { return &SobrietyPayload{} },

	{DomainRoutine, RoutineChecked}: func() Payload { return &RoutinePayload{} },
}

// NewPayload returns an empty payload variant for (domain, type)
func NewPayload(d Domain, t EventType) (Payload, error) {
	factory, ok := payloadFactories[payloadKey{d, t}]
	if !ok {
		return nil, fmt.Errorf("no payload variant for %s/%s", d, t)
	}
	return factory(), nil
}

// DecodePayload builds the variant for (domain, type) from a flat JSON object.
// Keys that fail to decode into their declared field, and keys the variant
// does not declare, are kept in Meta.
func DecodePayload(d Domain, t EventType, raw []byte) (Payload, error) {
	p, err := NewPayload(d, t)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return p, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("payload for %s/%s must be an object: %w", d, t, err)
	}

	known := declaredKeys(reflect.TypeOf(p).Elem())
	extras := p.GetExtras()
	for key, value := range fields {
		switch {
		case key == "meta":
			var bag map[string]interface{}
			if err := json.Unmarshal(value, &bag); err == nil {
				for k, v := range bag {
					extras.SetMeta(k, v)
				}
				continue
			}
			extras.SetMeta(key, decodeLoose(value))
		case key == "notes":
			var notes string
			if err := json.Unmarshal(value, &notes); err == nil {
				extras.Notes = notes
				continue
			}
			extras.SetMeta(key, decodeLoose(value))
		case known[key]:
			single := map[string]json.RawMessage{key: value}
			buf, _ := json.Marshal(single)
			if err := json.Unmarshal(buf, p); err != nil {
				extras.SetMeta(key, decodeLoose(value))
			}
		default:
			extras.SetMeta(key, decodeLoose(value))
		}
	}
	return p, nil
}

// PayloadFromMap is DecodePayload for an already-decoded object
func PayloadFromMap(d Domain, t EventType, fields map[string]interface{}) (Payload, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return DecodePayload(d, t, raw)
}

// Fields flattens a payload back to its wire object
func Fields(p Payload) map[string]interface{} {
	out := make(map[string]interface{})
	if p == nil {
		return out
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func decodeLoose(raw json.RawMessage) interface{} {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

var keyCache sync.Map

func declaredKeys(t reflect.Type) map[string]bool {
	if cached, ok := keyCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	keys := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		keys[name] = true
	}
	keyCache.Store(t, keys)
	return keys
}
