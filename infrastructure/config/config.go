package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domainconfig "lifelog/domain/config"

	"gopkg.in/yaml.v3"
)

// LLM provider names
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

// Storage backends
const (
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	IndexName     string `yaml:"index_name"` // GSI1 - user + domain + time
	EventBusName  string `yaml:"event_bus_name"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"lambda_function_name"`

	// Storage
	StorageBackend string `yaml:"storage_backend"`
	PresetsFile    string `yaml:"presets_file"`

	// LLM
	LLMProvider     string        `yaml:"llm_provider"`
	LLMModel        string        `yaml:"llm_model"`
	LLMTimeout      time.Duration `yaml:"llm_timeout"`
	OpenAIAPIKey    string        `yaml:"-"`
	AnthropicAPIKey string        `yaml:"-"`
	OllamaURL       string        `yaml:"ollama_url"`

	// Pipeline knobs
	SchemaCacheTTL     time.Duration `yaml:"schema_cache_ttl"`
	ContextWindow      time.Duration `yaml:"context_window"`
	ContextLimit       int           `yaml:"context_limit"`
	AgentMaxIterations int           `yaml:"agent_max_iterations"`
	AgentMaxTokens     int           `yaml:"agent_max_tokens"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret string `yaml:"-"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Feature flags
	EnableMetrics    bool `yaml:"enable_metrics"`
	EnableCloudWatch bool `yaml:"enable_cloudwatch"`
	EnableTracing    bool `yaml:"enable_tracing"`
	EnableCORS       bool `yaml:"enable_cors"`

	CORSOrigins []string `yaml:"cors_origins"`
}

// defaults returns the configuration used when neither the overlay file nor
// the environment set a key
func defaults() *Config {
	return &Config{
		ServerAddress:  ":8080",
		Environment:    "development",
		AWSRegion:      "us-west-2",
		DynamoDBTable:  "lifelog",
		IndexName:      "GSI1",
		EventBusName:   "lifelog-events",
		StorageBackend: StorageDynamoDB,
		LLMProvider:    ProviderOpenAI,
		LLMTimeout:     30 * time.Second,
		OllamaURL:      "http://localhost:11434",
		LogLevel:       "info",
		JWTIssuer:      "lifelog",
		EnableCORS:     true,
		CORSOrigins:    []string{"http://localhost:3000"},
	}
}

// LoadConfig loads configuration from the optional CONFIG_FILE overlay and
// then from environment variables
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", cfg.DynamoDBTable))
	cfg.IndexName = getEnv("INDEX_NAME", cfg.IndexName)
	cfg.EventBusName = getEnv("EVENT_BUS_NAME", cfg.EventBusName)

	cfg.IsLambda = getEnvBool("IS_LAMBDA", cfg.IsLambda)
	cfg.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", cfg.LambdaFunctionName)
	if cfg.LambdaFunctionName != "" {
		cfg.IsLambda = true
	}

	cfg.StorageBackend = getEnv("STORAGE_BACKEND", cfg.StorageBackend)
	cfg.PresetsFile = getEnv("PRESETS_FILE", cfg.PresetsFile)

	cfg.LLMProvider = getEnv("LLM_PROVIDER", cfg.LLMProvider)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.LLMTimeout = getEnvDuration("LLM_TIMEOUT", cfg.LLMTimeout)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", "")
	cfg.OllamaURL = getEnv("OLLAMA_URL", cfg.OllamaURL)

	cfg.SchemaCacheTTL = getEnvDuration("SCHEMA_CACHE_TTL", cfg.SchemaCacheTTL)
	cfg.ContextWindow = getEnvDuration("CONTEXT_WINDOW", cfg.ContextWindow)
	cfg.ContextLimit = getEnvInt("CONTEXT_LIMIT", cfg.ContextLimit)
	cfg.AgentMaxIterations = getEnvInt("AGENT_MAX_ITERATIONS", cfg.AgentMaxIterations)
	cfg.AgentMaxTokens = getEnvInt("AGENT_MAX_TOKENS", cfg.AgentMaxTokens)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)

	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableCloudWatch = getEnvBool("ENABLE_CLOUDWATCH", cfg.EnableCloudWatch)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderClaude, ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StorageBackend {
	case StorageDynamoDB, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StorageBackend == StorageDynamoDB && c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PipelineConfig returns the environment's pipeline configuration with any
// explicitly configured knobs applied on top
func (c *Config) PipelineConfig() *domainconfig.DomainConfig {
	pc := domainconfig.LoadDomainConfig(c.Environment)
	if c.SchemaCacheTTL > 0 {
		pc.SchemaCacheTTL = c.SchemaCacheTTL
	}
	if c.ContextWindow > 0 {
		pc.ContextWindow = c.ContextWindow
	}
	if c.ContextLimit > 0 {
		pc.ContextLimit = c.ContextLimit
	}
	if c.AgentMaxIterations > 0 {
		pc.AgentMaxIterations = c.AgentMaxIterations
	}
	if c.AgentMaxTokens > 0 {
		pc.AgentMaxTokens = c.AgentMaxTokens
	}
	if c.LLMProvider == ProviderNone {
		pc.EnableAgent = false
	}
	return pc
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("5m") or whole seconds ("300")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
