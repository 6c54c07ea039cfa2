package queries

import (
	"lifelog/domain/core/entities"
	apperrors "lifelog/pkg/errors"
)

// ListUserDomainsQuery lists the domains a user tracks
type ListUserDomainsQuery struct {
	UserID string
}

// Validate validates the query
func (q ListUserDomainsQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.NewValidationError("user ID is required")
	}
	return nil
}

// ListUserDomainsResult holds the user's domains, sorted by name
type ListUserDomainsResult struct {
	Domains []entities.DomainSummary `json:"domains"`
}

// GetDomainSchemaQuery fetches the field schema of one domain
type GetDomainSchemaQuery struct {
	UserID string
	Name   string
}

// Validate validates the query
func (q GetDomainSchemaQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.NewValidationError("user ID is required")
	}
	if q.Name == "" {
		return apperrors.NewValidationError("domain name is required")
	}
	return nil
}
