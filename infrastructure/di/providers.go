package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lifelog/application/commands"
	"lifelog/application/commands/bus"
	"lifelog/application/ports"
	"lifelog/application/queries"
	querybus "lifelog/application/queries/bus"
	queryhandlers "lifelog/application/queries/handlers"
	"lifelog/application/services/agent"
	"lifelog/application/services/conversation"
	"lifelog/application/services/domainlog"
	"lifelog/application/services/heuristics"
	"lifelog/application/services/knowledge"
	"lifelog/application/services/parser"
	"lifelog/application/services/tools"
	domainconfig "lifelog/domain/config"
	"lifelog/domain/core/entities"
	"lifelog/domain/core/validators"
	"lifelog/infrastructure/cache"
	"lifelog/infrastructure/config"
	"lifelog/infrastructure/llm"
	"lifelog/infrastructure/messaging/eventbridge"
	"lifelog/infrastructure/persistence/dynamodb"
	"lifelog/infrastructure/persistence/memory"
	"lifelog/infrastructure/persistence/presets"
	"lifelog/interfaces/http/rest"
	"lifelog/interfaces/http/rest/middleware"
	"lifelog/pkg/auth"
	"lifelog/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// developmentJWTSecret is only used outside production when JWT_SECRET is unset
const developmentJWTSecret = "development-secret-change-in-production"

// Rate limits per minute
const (
	ipRequestsPerMinute   = 100
	userRequestsPerMinute = 200
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = level
	}

	return zcfg.Build()
}

// ProvidePipelineConfig derives the pipeline rules from the service config
func ProvidePipelineConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.PipelineConfig()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// Stores groups the persistence ports of the selected backend
type Stores struct {
	Schemas ports.SchemaStore
	Events  ports.EventRepository
	Logs    ports.DomainLogRepository
	// Counters backs the distributed rate limiter; nil for the memory backend
	Counters auth.CounterAPI
}

// ProvideStores selects the storage backend
func ProvideStores(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) *Stores {
	if cfg.StorageBackend == config.StorageMemory {
		logger.Info("Using in-memory storage")
		store := memory.NewStore()
		return &Stores{Schemas: store, Events: store, Logs: store}
	}

	return &Stores{
		Schemas:  dynamodb.NewSchemaStore(client, cfg.DynamoDBTable, logger),
		Events:   dynamodb.NewEventRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger),
		Logs:     dynamodb.NewDomainLogRepository(client, cfg.DynamoDBTable),
		Counters: client,
	}
}

// ProvideEventPublisher announces stored events on EventBridge, or nowhere
// when no bus is configured
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" || cfg.StorageBackend == config.StorageMemory {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// MetricsBundle holds the metric sinks and the scrape registry
type MetricsBundle struct {
	Metrics    ports.Metrics
	Registry   *prometheus.Registry
	CloudWatch *observability.CloudWatchMetrics
}

// ProvideMetrics builds the Prometheus sink and, when enabled, the buffered
// CloudWatch sink
func ProvideMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *MetricsBundle {
	bundle := &MetricsBundle{}
	var sinks observability.MultiMetrics

	if cfg.EnableMetrics {
		bundle.Registry = prometheus.NewRegistry()
		bundle.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sinks = append(sinks, observability.NewPrometheusMetrics(bundle.Registry))
	}

	if cfg.EnableCloudWatch {
		namespace := fmt.Sprintf("Lifelog/%s", cfg.Environment)
		bundle.CloudWatch = observability.NewCloudWatchMetrics(namespace, client, logger)
		sinks = append(sinks, bundle.CloudWatch)
	}

	switch len(sinks) {
	case 0:
		bundle.Metrics = ports.NopMetrics{}
	case 1:
		bundle.Metrics = sinks[0]
	default:
		bundle.Metrics = sinks
	}
	return bundle
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("lifelog", cfg.EnableTracing)
}

// ProvideCache creates the in-process knowledge cache
func ProvideCache() *cache.InMemoryCache {
	return cache.NewInMemoryCache(ports.SystemClock{}, time.Minute)
}

// ProvidePresets loads the preset domain catalogue
func ProvidePresets(cfg *config.Config, logger *zap.Logger) (*presets.Loader, error) {
	return presets.NewLoader(cfg.PresetsFile, logger)
}

// ProvideKnowledge creates the knowledge provider. Preset reloads drop the
// whole cache, since cached listings merge presets in.
func ProvideKnowledge(
	stores *Stores,
	loader *presets.Loader,
	c *cache.InMemoryCache,
	pipeline *domainconfig.DomainConfig,
	m *MetricsBundle,
	logger *zap.Logger,
) *knowledge.Provider {
	loader.OnChange(func([]*entities.DomainSchema) {
		if err := c.Clear(context.Background()); err != nil {
			logger.Warn("Failed to clear knowledge cache", zap.Error(err))
		}
	})
	return knowledge.NewProvider(stores.Schemas, loader, c, pipeline.SchemaCacheTTL, m.Metrics, logger)
}

// ProvideValidator creates the event validation gate
func ProvideValidator() *validators.EventValidator {
	return validators.NewEventValidator()
}

// ProvideMatcher creates the heuristic matcher
func ProvideMatcher() *heuristics.Matcher {
	return heuristics.NewMatcher()
}

// ProvideResolver creates the conversation context resolver
func ProvideResolver(
	stores *Stores,
	matcher *heuristics.Matcher,
	pipeline *domainconfig.DomainConfig,
	logger *zap.Logger,
) *conversation.Resolver {
	return conversation.NewResolver(stores.Events, matcher, ports.SystemClock{}, pipeline, logger)
}

// ProvideToolDispatcher registers the built-in tools
func ProvideToolDispatcher(
	k *knowledge.Provider,
	resolver *conversation.Resolver,
	validator *validators.EventValidator,
	m *MetricsBundle,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *tools.Dispatcher {
	registry := tools.NewDefaultRegistry(k, resolver, validator)
	return tools.NewDispatcher(registry, m.Metrics, tracer, logger)
}

// ProvideLLMProvider builds the configured model provider; nil when disabled
func ProvideLLMProvider(cfg *config.Config, logger *zap.Logger) (ports.LLMProvider, error) {
	return llm.NewProvider(llm.Settings{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		Timeout:         cfg.LLMTimeout,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OllamaURL:       cfg.OllamaURL,
	}, logger)
}

// ProvideAgent creates the function-calling loop. The result is a nil
// interface when no provider is configured or the agent is disabled.
func ProvideAgent(
	provider ports.LLMProvider,
	dispatcher *tools.Dispatcher,
	pipeline *domainconfig.DomainConfig,
	m *MetricsBundle,
	tracer *observability.Tracer,
	logger *zap.Logger,
) parser.Agent {
	if provider == nil || !pipeline.EnableAgent {
		return nil
	}
	return agent.NewLoop(provider, dispatcher, pipeline, m.Metrics, tracer, logger)
}

// ProvideOrchestrator creates the parse orchestrator
func ProvideOrchestrator(
	agentPath parser.Agent,
	matcher *heuristics.Matcher,
	resolver *conversation.Resolver,
	validator *validators.EventValidator,
	pipeline *domainconfig.DomainConfig,
	m *MetricsBundle,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *parser.Orchestrator {
	return parser.NewOrchestrator(agentPath, matcher, resolver, validator, pipeline, m.Metrics, tracer, logger)
}

// ProvideLogDispatcher creates the per-domain log writer
func ProvideLogDispatcher(
	stores *Stores,
	validator *validators.EventValidator,
	m *MetricsBundle,
	logger *zap.Logger,
) *domainlog.Dispatcher {
	return domainlog.NewDispatcher(stores.Logs, validator, ports.SystemClock{}, m.Metrics, logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	orchestrator *parser.Orchestrator,
	stores *Stores,
	logs *domainlog.Dispatcher,
	publisher ports.EventPublisher,
	loader *presets.Loader,
	k *knowledge.Provider,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.RecoveryMiddleware(logger),
		bus.LoggingMiddleware(logger),
	)

	ingest := commands.NewIngestTextHandler(orchestrator, stores.Events, logs, publisher, ports.SystemClock{}, logger)
	if err := commandBus.Register(commands.IngestTextCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			ingestCmd, ok := cmd.(commands.IngestTextCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type %T", cmd)
			}
			return ingest.Handle(ctx, ingestCmd)
		})); err != nil {
		return nil, err
	}

	ensure := commands.NewEnsurePresetDomainsHandler(stores.Schemas, loader, k, logger)
	if err := commandBus.Register(commands.EnsurePresetDomainsCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			ensureCmd, ok := cmd.(commands.EnsurePresetDomainsCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type %T", cmd)
			}
			return ensure.Handle(ctx, ensureCmd)
		})); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	resolver *conversation.Resolver,
	k *knowledge.Provider,
	m *MetricsBundle,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.MetricsMiddleware(m.Metrics),
		querybus.LoggingMiddleware(logger),
	)

	recent := queryhandlers.NewGetRecentEventsHandler(resolver, logger)
	domains := queryhandlers.NewDomainQueryHandler(k, logger)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandlerFunc
	}{
		{queries.GetRecentEventsQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			query, ok := q.(queries.GetRecentEventsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", q)
			}
			return recent.Handle(ctx, query)
		}},
		{queries.ListUserDomainsQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			query, ok := q.(queries.ListUserDomainsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", q)
			}
			return domains.HandleList(ctx, query)
		}},
		{queries.GetDomainSchemaQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			query, ok := q.(queries.GetDomainSchemaQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", q)
			}
			return domains.HandleSchema(ctx, query)
		}},
	}

	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}

// ProvideAuthenticator builds the API authentication middleware. Behind API
// Gateway the authorizer's headers are trusted and limits are shared through
// DynamoDB.
func ProvideAuthenticator(cfg *config.Config, stores *Stores, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = developmentJWTSecret
	}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
	})
	if err != nil {
		return nil, err
	}

	authCfg := middleware.AuthConfig{
		Validator:    validator,
		TrustGateway: cfg.IsLambda,
		IPLimiter:    auth.NewIPRateLimiter(ipRequestsPerMinute),
		UserLimiter:  auth.NewUserRateLimiter(userRequestsPerMinute),
		Logger:       logger,
	}
	if cfg.IsLambda && stores.Counters != nil {
		authCfg.IPLimiter = auth.NewDistributedIPRateLimiter(stores.Counters, cfg.DynamoDBTable, ipRequestsPerMinute)
		authCfg.UserLimiter = auth.NewDistributedUserRateLimiter(stores.Counters, cfg.DynamoDBTable, userRequestsPerMinute)
	}

	return middleware.Authenticate(authCfg), nil
}

// ProvideReadinessChecks probes the schema store and the model provider
func ProvideReadinessChecks(stores *Stores, provider ports.LLMProvider) []rest.ReadinessCheck {
	checks := []rest.ReadinessCheck{{
		Name:     "storage",
		Critical: true,
		Check: func(ctx context.Context) error {
			_, err := stores.Schemas.ListUserDomains(ctx, "readiness-probe")
			return err
		},
	}}

	if provider != nil {
		checks = append(checks, rest.ReadinessCheck{
			Name: "llm:" + provider.Name(),
			Check: func(ctx context.Context) error {
				if b, ok := provider.(*llm.BreakerProvider); ok && b.State() == gobreaker.StateOpen {
					return errors.New("circuit open")
				}
				if !provider.IsAvailable() {
					return errors.New("not configured")
				}
				return nil
			},
		})
	}
	return checks
}

// ProvideRouter assembles the HTTP surface
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	orchestrator *parser.Orchestrator,
	k *knowledge.Provider,
	authenticate func(http.Handler) http.Handler,
	checks []rest.ReadinessCheck,
	m *MetricsBundle,
	logger *zap.Logger,
) *rest.Router {
	opts := rest.RouterOptions{
		Authenticate: authenticate,
		Checks:       checks,
		Debug:        cfg.IsDevelopment(),
	}
	if cfg.EnableCORS {
		opts.CORSOrigins = cfg.CORSOrigins
	}
	if m.Registry != nil {
		opts.MetricsHandler = promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
	}
	return rest.NewRouter(commandBus, queryBus, orchestrator, k, opts, logger)
}
