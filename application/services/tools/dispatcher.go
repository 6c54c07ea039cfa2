package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lifelog/application/ports"
	"lifelog/pkg/observability"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher executes the tool calls of one model turn
type Dispatcher struct {
	registry *Registry
	metrics  ports.Metrics
	tracer   *observability.Tracer
	logger   *zap.Logger
}

// NewDispatcher creates a new tool dispatcher
func NewDispatcher(registry *Registry, metrics ports.Metrics, tracer *observability.Tracer, logger *zap.Logger) *Dispatcher {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Dispatcher{
		registry: registry,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// Definitions exposes the registry's tool schemas
func (d *Dispatcher) Definitions() []ports.ToolDefinition {
	return d.registry.Definitions()
}

// Dispatch runs all calls concurrently. Result i belongs to call i, and a
// failing call never affects its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, calls []ports.ToolCall) []Result {
	results := make([]Result, len(calls))

	var g errgroup.Group
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			results[i] = d.execute(ctx, userID, call)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) execute(ctx context.Context, userID string, call ports.ToolCall) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Tool panicked", zap.String("tool", call.Name), zap.Any("panic", r))
			result = failed(fmt.Sprintf("Tool %s failed", call.Name))
		}
		d.metrics.RecordToolCall(call.Name, result.Success, time.Since(start))
	}()

	tool, ok := d.registry.Lookup(call.Name)
	if !ok {
		return failed(fmt.Sprintf("Unknown function: %s", call.Name))
	}

	args := strings.TrimSpace(call.Arguments)
	if args == "" {
		args = "{}"
	}
	if !json.Valid([]byte(args)) {
		d.logger.Debug("Invalid tool arguments", zap.String("tool", call.Name), zap.String("arguments", call.Arguments))
		return failed("Invalid function arguments")
	}
	if err := d.registry.ValidateArgs(call.Name, json.RawMessage(args)); err != nil {
		d.logger.Debug("Tool arguments do not match schema", zap.String("tool", call.Name), zap.Error(err))
		return failed("Invalid function arguments")
	}

	var data interface{}
	err := d.tracer.TraceFunction(ctx, "tool."+call.Name, func(ctx context.Context) error {
		var execErr error
		data, execErr = tool.Execute(ctx, userID, json.RawMessage(args))
		return execErr
	})
	if err != nil {
		d.logger.Debug("Tool call failed",
			zap.String("tool", call.Name),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return failed(toolErrorMessage(err))
	}
	return succeed(data)
}
