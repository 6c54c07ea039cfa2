package llm

import (
	"fmt"
	"strings"
	"time"

	"lifelog/application/ports"

	"go.uber.org/zap"
)

// Settings selects and configures a provider
type Settings struct {
	Provider        string
	Model           string
	Timeout         time.Duration
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaURL       string
}

// NewProvider builds the configured provider wrapped in a circuit breaker.
// It returns nil for "none"; the parser then runs on heuristics alone.
func NewProvider(s Settings, logger *zap.Logger) (ports.LLMProvider, error) {
	var provider ports.LLMProvider

	switch strings.ToLower(s.Provider) {
	case "", "openai":
		provider = NewOpenAIProvider(OpenAIConfig{APIKey: s.OpenAIAPIKey, Model: s.Model, Timeout: s.Timeout})
	case "claude", "anthropic":
		provider = NewAnthropicProvider(AnthropicConfig{APIKey: s.AnthropicAPIKey, Model: s.Model, Timeout: s.Timeout})
	case "ollama":
		provider = NewOllamaProvider(OllamaConfig{BaseURL: s.OllamaURL, Model: s.Model, Timeout: s.Timeout})
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", s.Provider)
	}

	if !provider.IsAvailable() {
		logger.Warn("LLM provider is not configured, parsing will use heuristics only",
			zap.String("provider", provider.Name()),
		)
	}

	return NewBreakerProvider(provider, DefaultBreakerConfig(), logger), nil
}
