package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"
	"lifelog/domain/events"
	"lifelog/pkg/errors"

	"go.uber.org/zap"
)

// DefaultTTL is how long schema lookups stay cached
const DefaultTTL = 5 * time.Minute

// Provider answers "what does domain X look like for this user" with a
// read-through cache in front of the schema store. Presets fill in for
// domains the user has never customised.
type Provider struct {
	store   ports.SchemaStore
	presets ports.PresetSource
	cache   ports.Cache
	ttl     time.Duration
	metrics ports.Metrics
	logger  *zap.Logger
}

// NewProvider creates a new knowledge provider
func NewProvider(
	store ports.SchemaStore,
	presets ports.PresetSource,
	cache ports.Cache,
	ttl time.Duration,
	metrics ports.Metrics,
	logger *zap.Logger,
) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Provider{
		store:   store,
		presets: presets,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func schemaKey(userID, name string) string {
	return fmt.Sprintf("user:%s:domain:%s", userID, strings.ToUpper(name))
}

func domainsKey(userID string) string {
	return fmt.Sprintf("user:%s:domains", userID)
}

func userPrefix(userID string) string {
	return fmt.Sprintf("user:%s:", userID)
}

// GetDomainSchema returns the user's schema for a domain
func (p *Provider) GetDomainSchema(ctx context.Context, userID, name string) (*entities.DomainSchema, error) {
	key := schemaKey(userID, name)
	if cached, ok := p.cache.Get(ctx, key); ok {
		if schema, ok := cached.(*entities.DomainSchema); ok {
			p.metrics.RecordCacheLookup(true)
			return schema.Clone(), nil
		}
	}
	p.metrics.RecordCacheLookup(false)

	schema, err := p.store.FindDomainSchema(ctx, userID, strings.ToUpper(name))
	if err != nil {
		p.logger.Warn("Failed to load domain schema",
			zap.String("user_id", userID),
			zap.String("domain", name),
			zap.Error(err),
		)
		return nil, errors.NewUnavailableError("schema store").
			WithCode("SCHEMA_STORE_UNAVAILABLE").
			WithCause(err).
			WithDetails(map[string]interface{}{"available_domains": events.DomainNames()})
	}
	if schema == nil {
		schema = p.preset(name)
	}
	if schema == nil {
		return nil, notFound(name)
	}

	if err := p.cache.Set(ctx, key, schema.Clone(), p.ttl); err != nil {
		p.logger.Debug("Failed to cache domain schema", zap.String("key", key), zap.Error(err))
	}
	return schema, nil
}

// GetUserDomains lists the user's domains ordered by their display order
func (p *Provider) GetUserDomains(ctx context.Context, userID string) ([]entities.DomainSummary, error) {
	key := domainsKey(userID)
	if cached, ok := p.cache.Get(ctx, key); ok {
		if summaries, ok := cached.([]entities.DomainSummary); ok {
			p.metrics.RecordCacheLookup(true)
			return append([]entities.DomainSummary(nil), summaries...), nil
		}
	}
	p.metrics.RecordCacheLookup(false)

	schemas, err := p.store.ListUserDomains(ctx, userID)
	if err != nil {
		p.logger.Warn("Failed to list user domains", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.NewUnavailableError("schema store").
			WithCode("SCHEMA_STORE_UNAVAILABLE").
			WithCause(err).
			WithDetails(map[string]interface{}{"available_domains": events.DomainNames()})
	}
	if len(schemas) == 0 && p.presets != nil {
		schemas = p.presets.Presets()
	}

	summaries := entities.Summaries(schemas)
	if err := p.cache.Set(ctx, key, summaries, p.ttl); err != nil {
		p.logger.Debug("Failed to cache user domains", zap.String("key", key), zap.Error(err))
	}
	return append([]entities.DomainSummary(nil), summaries...), nil
}

// ClearUser drops every cached entry of one user, typically after a domain edit
func (p *Provider) ClearUser(ctx context.Context, userID string) int {
	removed := p.cache.ClearByPrefix(ctx, userPrefix(userID))
	p.logger.Debug("Cleared knowledge cache", zap.String("user_id", userID), zap.Int("entries", removed))
	return removed
}

func (p *Provider) preset(name string) *entities.DomainSchema {
	if p.presets == nil {
		return nil
	}
	for _, s := range p.presets.Presets() {
		if strings.EqualFold(s.Name, name) {
			return s.Clone()
		}
	}
	return nil
}

func notFound(name string) error {
	return &errors.AppError{
		Type:       errors.ErrorTypeNotFound,
		Message:    fmt.Sprintf("Domain %q not found. Available domains: %s", name, events.DomainNames()),
		Code:       "DOMAIN_NOT_FOUND",
		HTTPStatus: 404,
	}
}
