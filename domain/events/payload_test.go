package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Domain
		wantErr bool
	}{
		{name: "exact", input: "WORKOUT", want: DomainWorkout},
		{name: "lower case", input: "jobs", want: DomainJobs},
		{name: "finance alias", input: "finance", want: DomainFinances},
		{name: "padded", input: "  habit ", want: DomainHabit},
		{name: "unknown", input: "LISTS", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDomain(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidType(t *testing.T) {
	assert.True(t, IsValidType(DomainWorkout, SetCompletedIncomplete))
	assert.True(t, IsValidType(DomainProductivity, TasksAdded))
	assert.False(t, IsValidType(DomainWellness, SetCompleted))
	assert.False(t, IsValidType(Domain("NOPE"), WaterLogged))
	assert.Len(t, AllDomains(), 10)
}

func TestDecodePayload_TypedFieldsAndExtras(t *testing.T) {
	// Arrange
	raw := []byte(`{"exercise":"squats","reps":"5","weight":100,"unit":"kg","notes":"felt heavy","tempo":"3-1-1","meta":{"gym":"home"}}`)

	// Act
	p, err := DecodePayload(DomainWorkout, SetCompleted, raw)

	// Assert
	require.NoError(t, err)
	set, ok := p.(*SetPayload)
	require.True(t, ok)
	assert.Equal(t, "squats", set.Exercise)
	assert.Equal(t, 5, set.Reps.Int())
	assert.Equal(t, 100.0, set.Weight.Float())
	assert.Equal(t, "kg", set.Unit)
	assert.Equal(t, "felt heavy", set.Notes)
	assert.Equal(t, "3-1-1", set.Meta["tempo"])
	assert.Equal(t, "home", set.Meta["gym"])
}

func TestDecodePayload_MistypedFieldMovesToMeta(t *testing.T) {
	p, err := DecodePayload(DomainJobs, JobApplied, []byte(`{"company":42,"role":"Engineer"}`))

	require.NoError(t, err)
	job := p.(*JobPayload)
	assert.Empty(t, job.Company)
	assert.Equal(t, "Engineer", job.Role)
	assert.Equal(t, float64(42), job.Meta["company"])
}

func TestDecodePayload_RejectsNonObject(t *testing.T) {
	_, err := DecodePayload(DomainHabit, HabitCompleted, []byte(`"quit smoking"`))
	assert.Error(t, err)

	_, err = DecodePayload(DomainHabit, JobApplied, []byte(`{}`))
	assert.Error(t, err)
}

func TestNumber_KeepsRawText(t *testing.T) {
	var n Number
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-01T10:00:00Z"`), &n))
	assert.False(t, n.Numeric)
	assert.Equal(t, "2024-01-01T10:00:00Z", n.Raw)

	require.NoError(t, json.Unmarshal([]byte(`"12.5"`), &n))
	assert.True(t, n.Numeric)
	assert.Equal(t, 12.5, n.Value)

	out, err := json.Marshal(NumString("NaN"))
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, string(out))
}

func TestParsedEvent_JSONRoundTrip(t *testing.T) {
	// Arrange
	event := NewParsedEvent(DomainWellness, WaterLogged, &WaterPayload{Amount: Num(2), Unit: "cups"}, 0.9)

	// Act
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	var decoded ParsedEvent
	err = json.Unmarshal(raw, &decoded)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, DomainWellness, decoded.Domain)
	assert.Equal(t, WaterLogged, decoded.Type)
	assert.Equal(t, 0.9, decoded.Confidence)
	water := decoded.Payload.(*WaterPayload)
	assert.Equal(t, 2.0, water.Amount.Float())
	assert.Equal(t, "cups", water.Unit)
}

func TestParsedEvent_UnmarshalRejectsUnknownType(t *testing.T) {
	var e ParsedEvent
	err := json.Unmarshal([]byte(`{"domain":"WORKOUT","type":"WATER_LOGGED","payload":{}}`), &e)
	assert.Error(t, err)
}

func TestNewParsedEvent_ClampsConfidence(t *testing.T) {
	assert.Equal(t, 1.0, NewParsedEvent(DomainHabit, HabitCompleted, &HabitPayload{}, 1.7).Confidence)
	assert.Equal(t, 0.0, NewParsedEvent(DomainHabit, HabitCompleted, &HabitPayload{}, -1).Confidence)
}

func TestFields_FlattensVariant(t *testing.T) {
	p := &LearningPayload{Kind: "BOOK", Title: "Dune", Pages: Num(50)}

	fields := Fields(p)

	assert.Equal(t, "BOOK", fields["type"])
	assert.Equal(t, "Dune", fields["title"])
	assert.Equal(t, 50.0, fields["pages"])
	assert.NotContains(t, fields, "progress")
}
