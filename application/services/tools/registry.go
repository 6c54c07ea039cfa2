package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"lifelog/application/ports"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Tool is a function the agent may call while parsing
type Tool interface {
	Definition() ports.ToolDefinition
	Execute(ctx context.Context, userID string, args json.RawMessage) (interface{}, error)
}

// Result is the envelope returned to the model for one call
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON encodes the result as tool message content
func (r Result) JSON() string {
	raw, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"Failed to encode result"}`
	}
	return string(raw)
}

func succeed(data interface{}) Result {
	return Result{Success: true, Data: data}
}

func failed(message string) Result {
	return Result{Success: false, Error: message}
}

// Registry holds the tools by name together with their compiled parameter
// schemas
type Registry struct {
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema
	order   []string
}

// NewRegistry creates a registry of the given tools. It panics if a tool's
// parameter schema does not compile.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		schemas: make(map[string]*jsonschema.Schema, len(tools)),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds or replaces a tool. Tools without parameters accept any
// JSON object.
func (r *Registry) Register(t Tool) error {
	def := t.Definition()
	schema, err := compileParameters(def)
	if err != nil {
		return err
	}

	if _, exists := r.tools[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = t
	if schema != nil {
		r.schemas[def.Name] = schema
	} else {
		delete(r.schemas, def.Name)
	}
	return nil
}

// ValidateArgs checks raw call arguments against the tool's declared schema
func (r *Registry) ValidateArgs(name string, args json.RawMessage) error {
	schema, ok := r.schemas[name]
	if !ok {
		return nil
	}

	var value interface{}
	if err := json.Unmarshal(args, &value); err != nil {
		return fmt.Errorf("invalid JSON arguments for tool %q: %w", name, err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("tool arguments validation failed for %q: %w", name, err)
	}
	return nil
}

func compileParameters(def ports.ToolDefinition) (*jsonschema.Schema, error) {
	if len(def.Parameters) == 0 {
		return nil, nil
	}

	// round trip so the compiler sees plain JSON values ([]interface{}, float64)
	raw, err := json.Marshal(def.Parameters)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON schema for tool %q: %w", def.Name, err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON schema for tool %q: %w", def.Name, err)
	}

	url := def.Name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("invalid JSON schema for tool %q: %w", def.Name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile JSON schema for tool %q: %w", def.Name, err)
	}
	return schema, nil
}

// Lookup finds a tool by name
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions lists the tool schemas in registration order
func (r *Registry) Definitions() []ports.ToolDefinition {
	defs := make([]ports.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Names returns the registered tool names, sorted
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}
