package validators

import (
	"encoding/json"
	"strings"
	"testing"

	"lifelog/domain/events"
	pkgerrors "lifelog/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func habit(name string) events.ParsedEvent {
	return events.NewParsedEvent(events.DomainHabit, events.HabitCompleted, &events.HabitPayload{Habit: name}, 0.9)
}

func job(t events.EventType, company, role string) events.ParsedEvent {
	return events.NewParsedEvent(events.DomainJobs, t, &events.JobPayload{Company: company, Role: role}, 0.9)
}

func set(exercise string, weight *events.Number) events.ParsedEvent {
	return events.NewParsedEvent(events.DomainWorkout, events.SetCompleted,
		&events.SetPayload{Exercise: exercise, Reps: events.Num(5), Weight: weight, Unit: "kg"}, 0.85)
}

func TestValidate_RejectsPlaceholdersAndMachineValues(t *testing.T) {
	v := NewEventValidator()

	tests := []struct {
		name  string
		event events.ParsedEvent
	}{
		{name: "habit timestamp", event: habit("2024-01-01T10:00:00Z")},
		{name: "habit timestamp with millis", event: habit("2024-01-01T10:00:00.123Z")},
		{name: "habit date", event: habit("2024-01-01")},
		{name: "habit slash date", event: habit("01/02/2024")},
		{name: "habit numeric id", event: habit("1712345678901")},
		{name: "habit url", event: habit("https://example.com/habit")},
		{name: "habit unknown", event: habit("Unknown")},
		{name: "habit too short", event: habit("a")},
		{name: "habit empty", event: habit("  ")},
		{name: "company unknown", event: job(events.JobApplied, "Unknown", "Engineer")},
		{name: "company tbd lower case", event: job(events.JobApplied, "tbd", "Engineer")},
		{name: "company timestamp", event: job(events.JobApplied, "2024-01-01T10:00:00Z", "Engineer")},
		{name: "company url", event: job(events.JobApplied, "https://vercel.com", "Engineer")},
		{name: "role n/a", event: job(events.JobApplied, "Vercel", "N/A")},
		{name: "role raw prompt echo", event: job(events.JobApplied, "Vercel", "I want to apply for this")},
		{name: "role missing on application", event: job(events.JobApplied, "Vercel", "")},
		{name: "exercise timestamp", event: set("2024-01-01T10:00:00Z", events.Num(100))},
		{name: "exercise url", event: set("http://lifts.example/squat", events.Num(100))},
		{name: "exercise unknown", event: set("undefined", events.Num(100))},
		{name: "weight timestamp string", event: set("squats", events.NumString("2024-01-01T10:00:00Z"))},
		{name: "set without weight", event: set("squats", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Validate(tt.event)
			assert.False(t, r.Valid)
			assert.NotEmpty(t, r.Error)
		})
	}
}

func TestValidate_AcceptsWellFormedEvents(t *testing.T) {
	v := NewEventValidator()

	tests := []struct {
		name  string
		event events.ParsedEvent
	}{
		{name: "habit", event: habit("quit smoking")},
		{name: "application", event: job(events.JobApplied, "Vercel", "Product Engineer V0")},
		{name: "interview without role", event: job(events.JobInterview, "Google", "")},
		{name: "set with numeric string weight", event: set("squats", events.NumString("100"))},
		{name: "set", event: set("deadlifts", events.Num(5))},
		{
			name: "found jobs count",
			event: events.NewParsedEvent(events.DomainJobs, events.JobFound,
				&events.JobPayload{Count: events.Num(3)}, 0.85),
		},
		{
			name: "incomplete set",
			event: events.NewParsedEvent(events.DomainWorkout, events.SetCompletedIncomplete,
				&events.SetPayload{Exercise: "deadlifts", Reps: events.Num(50)}, 0.85),
		},
		{
			name: "water",
			event: events.NewParsedEvent(events.DomainWellness, events.WaterLogged,
				&events.WaterPayload{Amount: events.Num(2), Unit: "cups"}, 0.9),
		},
		{
			name: "mood has no extra rules",
			event: events.NewParsedEvent(events.DomainWellness, events.MoodLogged,
				&events.MoodPayload{Mood: "happy", Value: events.Num(8)}, 0.8),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Validate(tt.event)
			assert.True(t, r.Valid, r.Error)
		})
	}
}

func TestValidate_WorkoutSessionWeight(t *testing.T) {
	v := NewEventValidator()

	tests := []struct {
		name      string
		raw       string
		wantValid bool
	}{
		{
			name:      "timestamp weight",
			raw:       `{"domain":"WORKOUT","type":"WORKOUT_COMPLETED","payload":{"exercise":"squats","reps":5,"weight":"2024-01-01T10:00:00Z"}}`,
			wantValid: false,
		},
		{
			name:      "numeric weight",
			raw:       `{"domain":"WORKOUT","type":"WORKOUT_COMPLETED","payload":{"exercise":"squats","reps":5,"weight":100}}`,
			wantValid: true,
		},
		{
			name:      "numeric string weight",
			raw:       `{"domain":"WORKOUT","type":"WORKOUT_COMPLETED","payload":{"exercise":"squats","weight":"80"}}`,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var event events.ParsedEvent
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &event))

			// Act
			r := v.Validate(event)

			// Assert
			assert.Equal(t, tt.wantValid, r.Valid, r.Error)
			payload := event.Payload.(*events.WorkoutPayload)
			assert.NotNil(t, payload.Weight)
			assert.NotContains(t, payload.GetExtras().Meta, "weight")
		})
	}
}

func TestValidate_IncompleteJobLeadRejected(t *testing.T) {
	v := NewEventValidator()
	event := events.NewParsedEvent(events.DomainJobs, events.JobFound,
		&events.JobPayload{Count: events.Num(1), Incomplete: true}, 0.6)

	assert.False(t, v.Validate(event).Valid)
}

func TestValidate_UnknownTypeAndConfidence(t *testing.T) {
	v := NewEventValidator()

	wrongType := events.ParsedEvent{Domain: events.DomainHabit, Type: events.WaterLogged, Payload: &events.WaterPayload{}, Confidence: 0.9}
	assert.False(t, v.Validate(wrongType).Valid)

	badConfidence := habit("read")
	badConfidence.Confidence = 1.5
	assert.False(t, v.Validate(badConfidence).Valid)
}

func TestValidatePayload(t *testing.T) {
	v := NewEventValidator()

	r := v.ValidatePayload("habit", "HABIT_COMPLETED", map[string]interface{}{"habit": "2024-01-01T10:00:00Z"})
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "Invalid habit name")

	r = v.ValidatePayload("WORKOUT", "SET_COMPLETED", map[string]interface{}{"exercise": "bench press", "reps": 8, "weight": "60", "unit": "kg"})
	assert.True(t, r.Valid, r.Error)

	r = v.ValidatePayload("LISTS", "TASK_ADDED", map[string]interface{}{})
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "Available domains")
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Result{Valid: true}.Err())

	err := Result{Valid: false, Error: "bad"}.Err()
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestFilter(t *testing.T) {
	v := NewEventValidator()

	valid, rejected := v.Filter([]events.ParsedEvent{habit("read"), habit("Unknown"), habit("meditate")})

	assert.Len(t, valid, 2)
	assert.Len(t, rejected, 1)
}

func TestNameLimitsCountCharacters(t *testing.T) {
	cjkHabit := strings.Repeat("冥想", 10)

	tests := []struct {
		name  string
		check func(string) bool
		value string
		want  bool
	}{
		{name: "habit of 20 cjk characters", check: IsValidHabitName, value: cjkHabit, want: true},
		{name: "habit of 51 cjk characters", check: IsValidHabitName, value: strings.Repeat("冥", 51), want: false},
		{name: "habit with accents", check: IsValidHabitName, value: "méditation quotidienne", want: true},
		{name: "company of 40 cjk characters", check: IsValidCompanyName, value: strings.Repeat("株式会社", 10), want: true},
		{name: "role of 100 cjk characters", check: IsValidRoleName, value: strings.Repeat("工", 100), want: true},
		{name: "role of 101 cjk characters", check: IsValidRoleName, value: strings.Repeat("工", 101), want: false},
		{name: "exercise of 30 cjk characters", check: IsValidExerciseName, value: strings.Repeat("深蹲", 15), want: true},
		{name: "habit of digits only", check: IsValidHabitName, value: "12345", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.value))
		})
	}

	assert.True(t, NewEventValidator().Validate(habit(cjkHabit)).Valid)
}
