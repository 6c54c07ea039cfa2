package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lifelog/application/ports"
	"lifelog/application/services/conversation"
	"lifelog/domain/core/entities"
	"lifelog/domain/core/validators"
	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
	apperrors "lifelog/pkg/errors"
)

// Tool names as the model sees them
const (
	GetDomainSchemaTool    = "getDomainSchema"
	GetUserDomainsTool     = "getUserDomains"
	GetRecentContextTool   = "getRecentContext"
	ValidateEventDataTool  = "validateEventData"
	ExtractJobInfoTool     = "extractJobInfo"
	NormalizeHabitNameTool = "normalizeHabitName"
)

// SchemaLookup is the slice of the knowledge provider the tools need
type SchemaLookup interface {
	GetDomainSchema(ctx context.Context, userID, name string) (*entities.DomainSchema, error)
	GetUserDomains(ctx context.Context, userID string) ([]entities.DomainSummary, error)
}

// ContextLookup is the slice of the context resolver the tools need
type ContextLookup interface {
	GetRecentContext(ctx context.Context, userID string, domain *events.Domain, limit int) ([]conversation.Entry, error)
}

var errInvalidArguments = errors.New("Invalid function arguments")

func decodeArgs(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidArguments
	}
	return nil
}

func toolErrorMessage(err error) string {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}

func domainEnum() []string {
	domains := events.AllDomains()
	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = string(d)
	}
	return names
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// NewDefaultRegistry wires the six standard tools
func NewDefaultRegistry(schemas SchemaLookup, recent ContextLookup, validator *validators.EventValidator) *Registry {
	return NewRegistry(
		&domainSchemaTool{schemas: schemas},
		&userDomainsTool{schemas: schemas},
		&recentContextTool{recent: recent},
		&validateEventTool{validator: validator},
		jobInfoTool{},
		habitNameTool{},
	)
}

type domainSchemaTool struct {
	schemas SchemaLookup
}

func (t *domainSchemaTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        GetDomainSchemaTool,
		Description: "Get the field schema of one of the user's domains. Call this before extracting an event so the payload matches the domain.",
		Parameters: objectSchema(map[string]interface{}{
			"domainName": map[string]interface{}{
				"type":        "string",
				"enum":        domainEnum(),
				"description": "The domain to describe",
			},
		}, "domainName"),
	}
}

func (t *domainSchemaTool) Execute(ctx context.Context, userID string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		DomainName string `json:"domainName"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.DomainName) == "" {
		return nil, errInvalidArguments
	}

	schema, err := t.schemas.GetDomainSchema(ctx, userID, args.DomainName)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"name":    schema.Name,
		"enabled": schema.Enabled,
		"fields":  schema.Fields,
	}, nil
}

type userDomainsTool struct {
	schemas SchemaLookup
}

func (t *userDomainsTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        GetUserDomainsTool,
		Description: "List the domains the user tracks and whether each is enabled.",
		Parameters:  objectSchema(map[string]interface{}{}),
	}
}

func (t *userDomainsTool) Execute(ctx context.Context, userID string, _ json.RawMessage) (interface{}, error) {
	domains, err := t.schemas.GetUserDomains(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"domains": domains}, nil
}

type recentContextTool struct {
	recent ContextLookup
}

func (t *recentContextTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        GetRecentContextTool,
		Description: "Get events the user logged in the last 10 minutes, newest first. Use it to resolve follow-ups such as \"5kg\" after a workout.",
		Parameters: objectSchema(map[string]interface{}{
			"domain": map[string]interface{}{
				"type":        "string",
				"enum":        domainEnum(),
				"description": "Only return events of this domain",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of events (default 5)",
				"default":     5,
			},
		}),
	}
}

type recentEvent struct {
	Domain    events.Domain          `json:"domain"`
	Type      events.EventType       `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	InputText string                 `json:"inputText"`
	Timestamp string                 `json:"timestamp"`
}

func (t *recentContextTool) Execute(ctx context.Context, userID string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Domain string `json:"domain"`
		Limit  int    `json:"limit"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Limit <= 0 {
		args.Limit = 5
	}

	var domain *events.Domain
	if strings.TrimSpace(args.Domain) != "" {
		d, err := events.ParseDomain(args.Domain)
		if err != nil {
			return nil, fmt.Errorf("Unknown domain %q. Available domains: %s", args.Domain, events.DomainNames())
		}
		domain = &d
	}

	entries, err := t.recent.GetRecentContext(ctx, userID, domain, args.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]recentEvent, 0, len(entries))
	for _, e := range entries {
		out = append(out, recentEvent{
			Domain:    e.Domain,
			Type:      e.Type,
			Payload:   events.Fields(e.Payload),
			InputText: e.Text,
			Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
	return map[string]interface{}{"events": out}, nil
}

type validateEventTool struct {
	validator *validators.EventValidator
}

func (t *validateEventTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        ValidateEventDataTool,
		Description: "Check an event before returning it. Rejects placeholders such as \"Unknown\", timestamps used as names, and missing required fields.",
		Parameters: objectSchema(map[string]interface{}{
			"domain":  map[string]interface{}{"type": "string", "enum": domainEnum()},
			"type":    map[string]interface{}{"type": "string", "description": "Event type, e.g. HABIT_COMPLETED"},
			"payload": map[string]interface{}{"type": "object", "description": "Event payload"},
		}, "domain", "type", "payload"),
	}
}

func (t *validateEventTool) Execute(_ context.Context, _ string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Domain  string                 `json:"domain"`
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	result := t.validator.ValidatePayload(args.Domain, args.Type, args.Payload)
	if !result.Valid {
		return nil, errors.New(result.Error)
	}
	return map[string]interface{}{"valid": true}, nil
}

type jobInfoTool struct{}

func (jobInfoTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        ExtractJobInfoTool,
		Description: "Infer company and role from a job posting URL.",
		Parameters: objectSchema(map[string]interface{}{
			"url": map[string]interface{}{"type": "string", "minLength": 1, "description": "The posting URL"},
		}, "url"),
	}
}

func (jobInfoTool) Execute(_ context.Context, _ string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	posting, err := valueobjects.ParseJobURL(args.URL)
	if err != nil {
		return nil, err
	}
	return posting, nil
}

// habitNames are the canonical spellings the model is steered towards
var habitNames = map[string]string{
	"quitting smoking":  "quit smoking",
	"stopping smoking":  "quit smoking",
	"no smoking":        "quit smoking",
	"quitting drinking": "quit drinking",
	"stopping drinking": "quit drinking",
	"no alcohol":        "quit drinking",
	"healthy eating":    "eat healthy",
	"eating healthy":    "eat healthy",
	"drinking water":    "drink water",
	"staying hydrated":  "drink water",
}

// NormalizeHabitName folds common phrasings onto one habit name
func NormalizeHabitName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if normalized, ok := habitNames[lower]; ok {
		return normalized
	}
	return lower
}

type habitNameTool struct{}

func (habitNameTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        NormalizeHabitNameTool,
		Description: "Normalize a habit name, e.g. \"quitting smoking\" becomes \"quit smoking\".",
		Parameters: objectSchema(map[string]interface{}{
			"name": map[string]interface{}{"type": "string", "minLength": 1},
		}, "name"),
	}
}

func (habitNameTool) Execute(_ context.Context, _ string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return map[string]string{
		"original":   args.Name,
		"normalized": NormalizeHabitName(args.Name),
	}, nil
}
