package heuristics

import (
	"regexp"
	"testing"

	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_StrengthSet(t *testing.T) {
	// Arrange
	m := NewMatcher()

	// Act
	event := m.Match("did 5 squats at 100kg")

	// Assert
	require.NotNil(t, event)
	assert.Equal(t, events.DomainWorkout, event.Domain)
	assert.Equal(t, events.SetCompleted, event.Type)
	assert.GreaterOrEqual(t, event.Confidence, 0.8)

	set, ok := event.Payload.(*events.SetPayload)
	require.True(t, ok)
	assert.Equal(t, "squats", set.Exercise)
	assert.Equal(t, 5.0, set.Reps.Float())
	assert.Equal(t, 100.0, set.Weight.Float())
	assert.Equal(t, "kg", set.Unit)
	assert.Contains(t, Confirm(*event), "squats")
}

func TestMatch_Catalogue(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantDomain events.Domain
		wantType   events.EventType
		check      func(t *testing.T, p events.Payload)
	}{
		{
			name:       "water in cups",
			text:       "drank 2 cups of water",
			wantDomain: events.DomainWellness,
			wantType:   events.WaterLogged,
			check: func(t *testing.T, p events.Payload) {
				w := p.(*events.WaterPayload)
				assert.Equal(t, 2.0, w.Amount.Float())
				assert.Equal(t, "cups", w.Unit)
			},
		},
		{
			name:       "bare large number is millilitres",
			text:       "drank 500",
			wantDomain: events.DomainWellness,
			wantType:   events.WaterLogged,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, "ml", p.(*events.WaterPayload).Unit)
			},
		},
		{
			name:       "bare small number is cups",
			text:       "drank 3",
			wantDomain: events.DomainWellness,
			wantType:   events.WaterLogged,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, "cups", p.(*events.WaterPayload).Unit)
			},
		},
		{
			name:       "sleep",
			text:       "slept 7 hours",
			wantDomain: events.DomainWellness,
			wantType:   events.SleepLogged,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, 7.0, p.(*events.SleepPayload).Hours.Float())
			},
		},
		{
			name:       "mood",
			text:       "feeling really happy today",
			wantDomain: events.DomainWellness,
			wantType:   events.MoodLogged,
			check: func(t *testing.T, p events.Payload) {
				mood := p.(*events.MoodPayload)
				assert.Equal(t, "happy", mood.Mood)
				assert.Equal(t, 8.0, mood.Value.Float())
			},
		},
		{
			name:       "nutrition",
			text:       "ate a sandwich with 500 calories",
			wantDomain: events.DomainWellness,
			wantType:   events.NutritionLogged,
			check: func(t *testing.T, p events.Payload) {
				n := p.(*events.NutritionPayload)
				assert.Equal(t, "sandwich", n.Food)
				assert.Equal(t, 500.0, n.Calories.Float())
			},
		},
		{
			name:       "reps without weight",
			text:       "50 russian dead lifts",
			wantDomain: events.DomainWorkout,
			wantType:   events.SetCompletedIncomplete,
			check: func(t *testing.T, p events.Payload) {
				set := p.(*events.SetPayload)
				assert.Equal(t, "russian dead lifts", set.Exercise)
				assert.Equal(t, 50.0, set.Reps.Float())
				assert.Nil(t, set.Weight)
			},
		},
		{
			name:       "running distance",
			text:       "ran 5km this morning",
			wantDomain: events.DomainWorkout,
			wantType:   events.WorkoutCompleted,
			check: func(t *testing.T, p events.Payload) {
				w := p.(*events.WorkoutPayload)
				assert.Equal(t, "running", w.Exercise)
				assert.Equal(t, 5.0, w.Distance.Float())
				assert.Equal(t, "km", w.Unit)
			},
		},
		{
			name:       "habit",
			text:       "quit smoking today",
			wantDomain: events.DomainHabit,
			wantType:   events.HabitCompleted,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, "quit smoking", p.(*events.HabitPayload).Habit)
			},
		},
		{
			name:       "habit normalised from capture",
			text:       "did my meditation",
			wantDomain: events.DomainHabit,
			wantType:   events.HabitCompleted,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, "meditate", p.(*events.HabitPayload).Habit)
			},
		},
		{
			name:       "interview",
			text:       "Interview at Google tomorrow",
			wantDomain: events.DomainJobs,
			wantType:   events.JobInterview,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, "Google", p.(*events.JobPayload).Company)
			},
		},
		{
			name:       "application with role",
			text:       "I applied to Stripe as a backend engineer",
			wantDomain: events.DomainJobs,
			wantType:   events.JobApplied,
			check: func(t *testing.T, p events.Payload) {
				job := p.(*events.JobPayload)
				assert.Equal(t, "Stripe", job.Company)
				assert.Equal(t, "backend engineer", job.Role)
				assert.Equal(t, JobStatusApplied, job.Status)
			},
		},
		{
			name:       "application role before company",
			text:       "Applied to the backend engineer role at Stripe",
			wantDomain: events.DomainJobs,
			wantType:   events.JobApplied,
			check: func(t *testing.T, p events.Payload) {
				job := p.(*events.JobPayload)
				assert.Equal(t, "Stripe", job.Company)
				assert.Equal(t, "backend engineer", job.Role)
			},
		},
		{
			name:       "job count",
			text:       "found 5 jobs to apply to",
			wantDomain: events.DomainJobs,
			wantType:   events.JobFound,
			check: func(t *testing.T, p events.Payload) {
				job := p.(*events.JobPayload)
				assert.Equal(t, 5.0, job.Count.Float())
				assert.False(t, job.Incomplete)
			},
		},
		{
			name:       "project count",
			text:       "worked on 3 coding projects",
			wantDomain: events.DomainProductivity,
			wantType:   events.ProjectCompleted,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, 3.0, p.(*events.ProductivityPayload).Count.Float())
			},
		},
		{
			name:       "focus session",
			text:       "pomodoro for 25 minutes",
			wantDomain: events.DomainProductivity,
			wantType:   events.FocusSession,
			check: func(t *testing.T, p events.Payload) {
				focus := p.(*events.ProductivityPayload)
				assert.Equal(t, 25.0, focus.Duration.Float())
				assert.Equal(t, "minutes", focus.Unit)
			},
		},
		{
			name:       "expense",
			text:       "spent $50 on groceries",
			wantDomain: events.DomainFinances,
			wantType:   events.ExpenseLogged,
			check: func(t *testing.T, p events.Payload) {
				f := p.(*events.FinancePayload)
				assert.Equal(t, 50.0, f.Amount.Float())
				assert.Equal(t, valueobjects.CurrencyUSD, f.Currency)
				assert.Equal(t, "groceries", f.Category)
			},
		},
		{
			name:       "expense in pounds",
			text:       "spent £20 on lunch",
			wantDomain: events.DomainFinances,
			wantType:   events.ExpenseLogged,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, valueobjects.CurrencyGBP, p.(*events.FinancePayload).Currency)
			},
		},
		{
			name:       "income with thousands separator",
			text:       "earned $1,500 from freelancing",
			wantDomain: events.DomainFinances,
			wantType:   events.IncomeLogged,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, 1500.0, p.(*events.FinancePayload).Amount.Float())
			},
		},
		{
			name:       "course started keeps title case",
			text:       "Started a course on Machine Learning",
			wantDomain: events.DomainLearning,
			wantType:   events.CourseStarted,
			check: func(t *testing.T, p events.Payload) {
				l := p.(*events.LearningPayload)
				assert.Equal(t, KindCourse, l.Kind)
				assert.Equal(t, "Machine Learning", l.Title)
			},
		},
		{
			name:       "pages read",
			text:       "read 50 pages of Atomic Habits",
			wantDomain: events.DomainLearning,
			wantType:   events.BookRead,
			check: func(t *testing.T, p events.Payload) {
				l := p.(*events.LearningPayload)
				assert.Equal(t, "Atomic Habits", l.Title)
				assert.Equal(t, 50.0, l.Pages.Float())
			},
		},
		{
			name:       "medication",
			text:       "took ibuprofen for a headache",
			wantDomain: events.DomainHealth,
			wantType:   events.MedicationTaken,
			check: func(t *testing.T, p events.Payload) {
				h := p.(*events.HealthPayload)
				assert.Equal(t, "ibuprofen", h.Medication)
				assert.Equal(t, "headache", h.Condition)
			},
		},
		{
			name:       "blood pressure keeps the reading",
			text:       "blood pressure is 120/80",
			wantDomain: events.DomainHealth,
			wantType:   events.VitalLogged,
			check: func(t *testing.T, p events.Payload) {
				h := p.(*events.HealthPayload)
				assert.Equal(t, "blood_pressure", h.Kind)
				assert.Equal(t, "120/80", h.Value.String())
				assert.Equal(t, "mmHg", h.Unit)
			},
		},
		{
			name:       "sobriety",
			text:       "day 30 sober",
			wantDomain: events.DomainSobriety,
			wantType:   events.SobrietyLogged,
			check: func(t *testing.T, p events.Payload) {
				s := p.(*events.SobrietyPayload)
				assert.Equal(t, SobrietySober, s.Status)
				assert.Equal(t, 30.0, s.Days.Float())
			},
		},
		{
			name:       "routine",
			text:       "completed my morning routine",
			wantDomain: events.DomainRoutine,
			wantType:   events.RoutineChecked,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, "morning", p.(*events.RoutinePayload).Routine)
			},
		},
		{
			name:       "todo list",
			text:       "todo: buy milk, call mom",
			wantDomain: events.DomainProductivity,
			wantType:   events.TasksAdded,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, []string{"buy milk", "call mom"}, p.(*events.TaskPayload).Items)
			},
		},
		{
			name:       "todo completed",
			text:       "mark buy milk as done",
			wantDomain: events.DomainProductivity,
			wantType:   events.TaskCompleted,
			check: func(t *testing.T, p events.Payload) {
				assert.Equal(t, "buy milk", p.(*events.TaskPayload).Title)
			},
		},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			event := m.Match(tt.text)

			// Assert
			require.NotNil(t, event)
			assert.Equal(t, tt.wantDomain, event.Domain)
			assert.Equal(t, tt.wantType, event.Type)
			if tt.check != nil {
				tt.check(t, event.Payload)
			}
		})
	}
}

func TestMatch_WaterUnitsAreEquivalent(t *testing.T) {
	m := NewMatcher()

	cups := m.Match("drank 2 cups of water")
	ml := m.Match("drank 480ml of water")
	require.NotNil(t, cups)
	require.NotNil(t, ml)

	cupsPayload := cups.Payload.(*events.WaterPayload)
	mlPayload := ml.Payload.(*events.WaterPayload)
	assert.Equal(t, "ml", mlPayload.Unit)

	fromCups, ok := valueobjects.WaterToMillilitres(cupsPayload.Amount.Float(), cupsPayload.Unit)
	require.True(t, ok)
	fromMl, ok := valueobjects.WaterToMillilitres(mlPayload.Amount.Float(), mlPayload.Unit)
	require.True(t, ok)
	assert.InDelta(t, fromMl, fromCups, 0.001)
}

func TestMatch_ExerciseDropsRepFiller(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		text         string
		wantExercise string
	}{
		{text: "lifted 5 reps of bench at 100kg", wantExercise: "bench"},
		{text: "5 reps of deadlifts at 120kg", wantExercise: "deadlifts"},
		{text: "did 8 x squats at 60kg", wantExercise: "squats"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			event := m.Match(tt.text)

			require.NotNil(t, event)
			require.Equal(t, events.SetCompleted, event.Type)
			set := event.Payload.(*events.SetPayload)
			assert.Equal(t, tt.wantExercise, set.Exercise)
			assert.True(t, set.Weight.IsNumeric())
		})
	}
}

func TestMatch_WaterThousandsSeparator(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name       string
		text       string
		wantAmount float64
		wantUnit   string
	}{
		{name: "verb with unit", text: "drank 1,500ml of water", wantAmount: 1500, wantUnit: "ml"},
		{name: "amount of water", text: "2,000 ml of water today", wantAmount: 2000, wantUnit: "ml"},
		{name: "bare number", text: "drank 1,200", wantAmount: 1200, wantUnit: "ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			event := m.Match(tt.text)

			// Assert
			require.NotNil(t, event)
			require.Equal(t, events.WaterLogged, event.Type)
			payload := event.Payload.(*events.WaterPayload)
			assert.Equal(t, tt.wantAmount, payload.Amount.Float())
			assert.Equal(t, tt.wantUnit, payload.Unit)
		})
	}
}

func TestMatch_JobsAreExclusive(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name           string
		text           string
		wantConfidence float64
	}{
		{name: "vague lead with job noun", text: "I found a job to apply to", wantConfidence: 0.6},
		{name: "job work is not productivity", text: "worked on my job applications", wantConfidence: 0.6},
		{name: "interview without company", text: "had 3 interviews", wantConfidence: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := m.Match(tt.text)

			require.NotNil(t, event)
			assert.Equal(t, events.DomainJobs, event.Domain)
			assert.Equal(t, events.JobFound, event.Type)
			assert.True(t, event.Payload.(*events.JobPayload).Incomplete)
			assert.InDelta(t, tt.wantConfidence, event.Confidence, 0.0001)
		})
	}
}

func TestMatch_NoMatch(t *testing.T) {
	m := NewMatcher()

	assert.Nil(t, m.Match(""))
	assert.Nil(t, m.Match("   "))
	assert.Nil(t, m.Match("hello there"))
}

func TestMatch_Idempotent(t *testing.T) {
	m := NewMatcher()
	inputs := []string{"did 5 squats at 100kg", "I found a job to apply to", "spent $50 on groceries", "hello"}

	for _, text := range inputs {
		first := m.Match(text)
		second := m.Match(text)
		assert.Equal(t, first, second, text)
	}
}

func TestMatch_RecoversFromPanickingRule(t *testing.T) {
	// Arrange
	m := NewMatcherWithFamilies([]Family{{
		Domain: events.DomainHabit,
		Rules: []Rule{{
			Name:    "boom",
			Pattern: regexp.MustCompile(`.`),
			Extract: func(in Input, m []string) (events.EventType, events.Payload, bool) {
				panic("bad rule")
			},
		}},
	}})

	// Act & Assert
	assert.NotPanics(t, func() {
		assert.Nil(t, m.Match("anything"))
	})
}

func TestMatch_RejectsMalformedNumbers(t *testing.T) {
	_, ok := parseNumber("1.2.3")
	assert.False(t, ok)

	v, ok := parseNumber("1,500.50")
	assert.True(t, ok)
	assert.Equal(t, 1500.5, v)
}

func TestNormalizeHabit(t *testing.T) {
	tests := map[string]string{
		"quitting smoking": "quit smoking",
		"Eating Healthier": "eat healthy",
		"journaled":        "journal",
		"learn guitar":     "learn guitar",
		"  ":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHabit(in), in)
	}
}

func TestConfirm(t *testing.T) {
	set := events.NewParsedEvent(events.DomainWorkout, events.SetCompleted,
		&events.SetPayload{Exercise: "squats", Reps: events.Num(5), Weight: events.Num(100), Unit: "kg"}, 0.85)
	assert.Equal(t, "💪 Nice! Logged 5 reps of squats at 100kg.", Confirm(set))

	water := events.NewParsedEvent(events.DomainWellness, events.WaterLogged,
		&events.WaterPayload{Amount: events.Num(2), Unit: "cups"}, 0.9)
	assert.Equal(t, "💧 Got it! Logged 2 cups of water. Keep it up!", Confirm(water))

	incomplete := events.NewParsedEvent(events.DomainWorkout, events.SetCompletedIncomplete,
		&events.SetPayload{Exercise: "deadlifts", Reps: events.Num(50)}, 0.85)
	assert.Contains(t, Confirm(incomplete), "What weight")

	offer := events.NewParsedEvent(events.DomainJobs, events.JobOffer,
		&events.JobPayload{Company: "Vercel", Status: JobStatusAccepted, Salary: events.Num(150000)}, 0.85)
	assert.Equal(t, "💼 Congratulations! from Vercel (150000).", Confirm(offer))
}

func TestSuggestCategory(t *testing.T) {
	s := SuggestCategory("had a few meetings")
	require.NotNil(t, s)
	assert.Equal(t, "WORK", s.Name)

	s = SuggestCategory("built apps all weekend")
	require.NotNil(t, s)
	assert.Equal(t, "PROJECTS", s.Name)

	s = SuggestCategory("painted some art")
	require.NotNil(t, s)
	assert.Equal(t, "CREATIVE", s.Name)

	assert.Nil(t, SuggestCategory("hello"))
}
