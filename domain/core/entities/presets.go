package entities

import (
	"strings"
)

// DefaultEnabledPresets is how many presets, by order, start enabled for a new user
const DefaultEnabledPresets = 3

func float(v float64) *float64 { return &v }

func text(id, name string, required bool) FieldDefinition {
	return FieldDefinition{ID: id, Name: name, Type: "text", Required: required}
}

func number(id, name string, required bool) FieldDefinition {
	return FieldDefinition{ID: id, Name: name, Type: "number", Required: required}
}

func choice(id, name string, required bool, options ...string) FieldDefinition {
	return FieldDefinition{ID: id, Name: name, Type: "select", Required: required, Options: options}
}

func notes() FieldDefinition {
	return FieldDefinition{ID: "notes", Name: "Notes", Type: "text", Multiline: true}
}

// PresetSchemas returns the built-in schema of every domain, ordered.
// The result is freshly allocated on every call.
func PresetSchemas() []*DomainSchema {
	rpe := number("rpe", "RPE", false)
	rpe.Min, rpe.Max = float(1), float(10)
	craving := number("craving", "Craving Level", false)
	craving.Min, craving.Max = float(1), float(10)
	progress := number("progress", "Progress", false)
	progress.Min, progress.Max = float(0), float(100)

	schemas := []*DomainSchema{
		{
			Name: "HABIT", Order: 0, Icon: "check-circle", Color: "#3b82f6",
			Fields: []FieldDefinition{text("habit_id", "Habit", true), number("value", "Value", false), text("unit", "Unit", false)},
		},
		{
			Name: "WELLNESS", Order: 1, Icon: "heart", Color: "#10b981", GroupBy: "kind",
			Fields: []FieldDefinition{
				choice("kind", "Type", true, "WATER", "SLEEP", "MOOD", "NUTRITION"),
				number("value", "Value", false),
				text("unit", "Unit", false),
			},
		},
		{
			Name: "WORKOUT", Order: 2, Icon: "dumbbell", Color: "#f59e0b", GroupBy: "exercise",
			Fields: []FieldDefinition{text("exercise", "Exercise", true), number("weight_kg", "Weight (kg)", false), number("reps", "Reps", false), rpe},
		},
		{
			Name: "JOBS", Order: 3, Icon: "briefcase", Color: "#8b5cf6", GroupBy: "stage",
			Fields: []FieldDefinition{
				text("company", "Company", true),
				text("role", "Role", true),
				choice("stage", "Stage", true, "Applied", "Screen", "Interview", "Offer", "Rejected", "Hold"),
				number("salary", "Salary", false),
				notes(),
			},
		},
		{
			Name: "SOBRIETY", Order: 4, Icon: "shield", Color: "#ef4444",
			Fields: []FieldDefinition{
				text("substance", "Substance", false),
				choice("status", "Status", true, "sober", "craving", "relapsed"),
				craving,
				notes(),
			},
		},
		{
			Name: "ROUTINE", Order: 5, Icon: "repeat", Color: "#06b6d4", GroupBy: "routine_id",
			Fields: []FieldDefinition{
				text("routine_id", "Routine", true),
				choice("status", "Status", true, "completed", "skipped", "partial"),
				notes(),
			},
		},
		{
			Name: "FINANCES", Order: 6, Icon: "dollar-sign", Color: "#22c55e", GroupBy: "type",
			Fields: []FieldDefinition{
				text("category", "Category", false),
				number("amount", "Amount", true),
				choice("type", "Type", true, "INCOME", "EXPENSE"),
				notes(),
			},
		},
		{
			Name: "LEARNING", Order: 7, Icon: "book", Color: "#a855f7", GroupBy: "type",
			Fields: []FieldDefinition{
				choice("type", "Type", true, "COURSE", "BOOK", "SKILL"),
				text("title", "Title", true),
				progress,
				notes(),
			},
		},
		{
			Name: "PRODUCTIVITY", Order: 8, Icon: "zap", Color: "#eab308", GroupBy: "type",
			Fields: []FieldDefinition{
				choice("type", "Type", true, "TASK", "POMODORO", "FOCUS"),
				number("duration", "Duration (min)", false),
				notes(),
			},
		},
		{
			Name: "HEALTH", Order: 9, Icon: "activity", Color: "#ec4899", GroupBy: "type",
			Fields: []FieldDefinition{
				choice("type", "Type", true, "SYMPTOM", "MEDICATION", "VITAL"),
				number("value", "Value", false),
				text("unit", "Unit", false),
				notes(),
			},
		},
	}

	for _, s := range schemas {
		s.Kind = DomainKindPreset
		s.Enabled = s.Order < DefaultEnabledPresets
	}
	return schemas
}

// PresetSchema returns the built-in schema with the given name, case-insensitively
func PresetSchema(name string) (*DomainSchema, bool) {
	for _, s := range PresetSchemas() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return nil, false
}
