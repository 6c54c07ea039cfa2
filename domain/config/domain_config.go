package config

import (
	"fmt"
	"time"
)

// DomainConfig holds the tunable rules of the extraction pipeline
type DomainConfig struct {
	// Heuristic acceptance
	HeuristicConfidenceThreshold float64

	// Conversation window
	ContextWindow      time.Duration
	ContextLimit       int
	CallerContextTurns int

	// Agent loop
	AgentMaxIterations int
	AgentTemperature   float64
	AgentMaxTokens     int

	// Knowledge cache
	SchemaCacheTTL time.Duration

	// Input limits
	MaxInputLength int

	// Feature flags
	EnableAgent         bool
	EnableFollowUpMerge bool
	EnableCategoryHints bool
}

// DefaultDomainConfig returns the default pipeline configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		HeuristicConfidenceThreshold: 0.7,

		ContextWindow:      10 * time.Minute,
		ContextLimit:       5,
		CallerContextTurns: 3,

		AgentMaxIterations: 5,
		AgentTemperature:   0,
		AgentMaxTokens:     2000,

		SchemaCacheTTL: 5 * time.Minute,

		MaxInputLength: 5000,

		EnableAgent:         true,
		EnableFollowUpMerge: true,
		EnableCategoryHints: true,
	}
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Short cache so schema edits show up quickly
	config.SchemaCacheTTL = 30 * time.Second

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.HeuristicConfidenceThreshold < 0 || c.HeuristicConfidenceThreshold > 1 {
		return fmt.Errorf("heuristic confidence threshold must be within [0,1], got %v", c.HeuristicConfidenceThreshold)
	}
	if c.ContextLimit <= 0 {
		return fmt.Errorf("context limit must be positive")
	}
	if c.ContextWindow <= 0 {
		return fmt.Errorf("context window must be positive")
	}
	if c.AgentMaxIterations <= 0 {
		return fmt.Errorf("agent max iterations must be positive")
	}
	if c.AgentMaxTokens <= 0 {
		return fmt.Errorf("agent max tokens must be positive")
	}
	if c.SchemaCacheTTL <= 0 {
		return fmt.Errorf("schema cache TTL must be positive")
	}
	return nil
}
