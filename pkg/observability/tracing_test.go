package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracer_DisabledRunsFunction(t *testing.T) {
	tests := []struct {
		name   string
		tracer *Tracer
	}{
		{name: "nil tracer", tracer: nil},
		{name: "disabled tracer", tracer: NewTracer("lifelog", false)},
		{name: "enabled without parent segment", tracer: NewTracer("lifelog", true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			boom := errors.New("boom")

			err := tt.tracer.TraceFunction(context.Background(), "parse", func(ctx context.Context) error {
				called = true
				return boom
			})

			assert.True(t, called)
			assert.ErrorIs(t, err, boom)
			tt.tracer.AddAnnotation(context.Background(), "domain", "WORKOUT")
			tt.tracer.RecordError(context.Background(), err)
		})
	}
}
