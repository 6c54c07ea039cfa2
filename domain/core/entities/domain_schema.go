package entities

import (
	"sort"
	"strings"

	"lifelog/domain/events"
)

// DomainKind distinguishes shipped domains from user-defined ones
type DomainKind string

const (
	DomainKindPreset DomainKind = "PRESET"
	DomainKindCustom DomainKind = "CUSTOM"
)

// FieldDefinition describes one column of a domain log
type FieldDefinition struct {
	ID        string   `json:"id" yaml:"id" dynamodbav:"id"`
	Name      string   `json:"name" yaml:"name" dynamodbav:"name"`
	Type      string   `json:"type" yaml:"type" dynamodbav:"type"`
	Required  bool     `json:"required" yaml:"required" dynamodbav:"required"`
	Options   []string `json:"options,omitempty" yaml:"options,omitempty" dynamodbav:"options,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty" dynamodbav:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty" dynamodbav:"max,omitempty"`
	Multiline bool     `json:"multiline,omitempty" yaml:"multiline,omitempty" dynamodbav:"multiline,omitempty"`
}

// DomainSchema is a user's configuration of one domain
type DomainSchema struct {
	Name    string            `json:"name" yaml:"name" dynamodbav:"name"`
	Kind    DomainKind        `json:"kind" yaml:"kind" dynamodbav:"kind"`
	Enabled bool              `json:"enabled" yaml:"enabled" dynamodbav:"enabled"`
	Order   int               `json:"order" yaml:"order" dynamodbav:"order"`
	Icon    string            `json:"icon,omitempty" yaml:"icon,omitempty" dynamodbav:"icon,omitempty"`
	Color   string            `json:"color,omitempty" yaml:"color,omitempty" dynamodbav:"color,omitempty"`
	GroupBy string            `json:"groupBy,omitempty" yaml:"group_by,omitempty" dynamodbav:"groupBy,omitempty"`
	Fields  []FieldDefinition `json:"fields" yaml:"fields" dynamodbav:"fields"`
}

// DomainSummary is the compact listing form returned by getUserDomains
type DomainSummary struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Field looks up a field definition by id
func (s *DomainSchema) Field(id string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// RequiredFields lists the ids of mandatory fields
func (s *DomainSchema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.ID)
		}
	}
	return out
}

// IsPresetFor reports whether the schema describes a built-in domain
func (s *DomainSchema) IsPresetFor(d events.Domain) bool {
	return strings.EqualFold(s.Name, string(d))
}

// Summaries converts schemas to summaries ordered by Order
func Summaries(schemas []*DomainSchema) []DomainSummary {
	sorted := make([]*DomainSchema, len(schemas))
	copy(sorted, schemas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	out := make([]DomainSummary, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, DomainSummary{Name: s.Name, Enabled: s.Enabled})
	}
	return out
}

// Clone returns a deep copy so cached schemas are never shared mutably
func (s *DomainSchema) Clone() *DomainSchema {
	if s == nil {
		return nil
	}
	c := *s
	if s.Fields == nil {
		return &c
	}
	c.Fields = make([]FieldDefinition, len(s.Fields))
	for i, f := range s.Fields {
		fc := f
		if f.Options != nil {
			fc.Options = append([]string(nil), f.Options...)
		}
		c.Fields[i] = fc
	}
	return &c
}
