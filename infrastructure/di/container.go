package di

import (
	"context"
	"time"

	"lifelog/application/commands/bus"
	querybus "lifelog/application/queries/bus"
	"lifelog/application/services/parser"
	"lifelog/infrastructure/cache"
	"lifelog/infrastructure/config"
	"lifelog/infrastructure/persistence/presets"
	"lifelog/interfaces/http/rest"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *MetricsBundle
	Cache      *cache.InMemoryCache
	Presets    *presets.Loader
	Parser     *parser.Orchestrator
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Router     *rest.Router
}

// FlushMetrics pushes buffered CloudWatch data points
func (c *Container) FlushMetrics(ctx context.Context) {
	if c.Metrics != nil && c.Metrics.CloudWatch != nil {
		c.Metrics.CloudWatch.Flush(ctx)
	}
}

// Close releases background resources
func (c *Container) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.FlushMetrics(ctx)
	if c.Cache != nil {
		c.Cache.Close()
	}
	_ = c.Logger.Sync()
}
