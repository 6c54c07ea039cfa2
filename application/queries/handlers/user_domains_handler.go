package handlers

import (
	"context"

	"lifelog/application/queries"
	"lifelog/domain/core/entities"

	"go.uber.org/zap"
)

// DomainKnowledge is the slice of the knowledge provider the handlers need
type DomainKnowledge interface {
	GetDomainSchema(ctx context.Context, userID, name string) (*entities.DomainSchema, error)
	GetUserDomains(ctx context.Context, userID string) ([]entities.DomainSummary, error)
}

// DomainQueryHandler answers domain listing and schema queries
type DomainQueryHandler struct {
	knowledge DomainKnowledge
	logger    *zap.Logger
}

// NewDomainQueryHandler creates a new domain query handler
func NewDomainQueryHandler(knowledge DomainKnowledge, logger *zap.Logger) *DomainQueryHandler {
	return &DomainQueryHandler{
		knowledge: knowledge,
		logger:    logger,
	}
}

// HandleList executes the user domains query
func (h *DomainQueryHandler) HandleList(ctx context.Context, query queries.ListUserDomainsQuery) (*queries.ListUserDomainsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	domains, err := h.knowledge.GetUserDomains(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	return &queries.ListUserDomainsResult{Domains: domains}, nil
}

// HandleSchema executes the domain schema query
func (h *DomainQueryHandler) HandleSchema(ctx context.Context, query queries.GetDomainSchemaQuery) (*entities.DomainSchema, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.knowledge.GetDomainSchema(ctx, query.UserID, query.Name)
}
