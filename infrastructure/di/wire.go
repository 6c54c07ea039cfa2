//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"lifelog/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvidePipelineConfig,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideStores,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideTracer,
	ProvideCache,
	ProvidePresets,
	ProvideKnowledge,
	ProvideValidator,
	ProvideMatcher,
	ProvideResolver,
	ProvideToolDispatcher,
	ProvideLLMProvider,
	ProvideAgent,
	ProvideOrchestrator,
	ProvideLogDispatcher,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideAuthenticator,
	ProvideReadinessChecks,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
