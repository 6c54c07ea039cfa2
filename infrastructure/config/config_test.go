package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, StorageDynamoDB, cfg.StorageBackend)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_OverlayThenEnv(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm_provider: ollama
llm_model: llama3
schema_cache_ttl: 2m
context_limit: 8
storage_backend: memory
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("CONTEXT_LIMIT", "3")
	t.Setenv("AGENT_MAX_TOKENS", "1000")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "llama3", cfg.LLMModel)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)

	pc := cfg.PipelineConfig()
	assert.Equal(t, 2*time.Minute, pc.SchemaCacheTTL)
	assert.Equal(t, 3, pc.ContextLimit)
	assert.Equal(t, 1000, pc.AgentMaxTokens)
	assert.Equal(t, 5, pc.AgentMaxIterations)
	assert.NoError(t, pc.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.LLMProvider = "gemini" }, wantErr: "unknown LLM_PROVIDER"},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageBackend = "sqlite" }, wantErr: "unknown STORAGE_BACKEND"},
		{name: "production needs secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: "JWT_SECRET"},
		{
			name: "production complete",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "s3cret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestPipelineConfig_ProviderNoneDisablesAgent(t *testing.T) {
	cfg := defaults()
	cfg.LLMProvider = ProviderNone

	assert.False(t, cfg.PipelineConfig().EnableAgent)
	assert.Equal(t, 30*time.Second, cfg.PipelineConfig().SchemaCacheTTL, "development keeps its short cache")
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DURATION", "90")
	assert.Equal(t, 90*time.Second, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("X_DURATION", time.Second))
}

func TestLoadConfig_CORSOrigins(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, ,http://localhost:5173")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
}
