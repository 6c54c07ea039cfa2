// Package memory keeps schemas, events and domain logs in process memory.
// It backs local development and STORAGE_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"
)

// Store implements the schema, event and domain log ports
type Store struct {
	mu      sync.RWMutex
	domains map[string]map[string]*entities.DomainSchema
	events  map[string][]*entities.EventRecord
	logs    map[string][]*entities.DomainLog
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		domains: make(map[string]map[string]*entities.DomainSchema),
		events:  make(map[string][]*entities.EventRecord),
		logs:    make(map[string][]*entities.DomainLog),
	}
}

var (
	_ ports.SchemaStore         = (*Store)(nil)
	_ ports.EventRepository     = (*Store)(nil)
	_ ports.DomainLogRepository = (*Store)(nil)
)

// FindDomainSchema implements ports.SchemaStore
func (s *Store) FindDomainSchema(ctx context.Context, userID, name string) (*entities.DomainSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, ok := s.domains[userID][strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return schema.Clone(), nil
}

// ListUserDomains implements ports.SchemaStore
func (s *Store) ListUserDomains(ctx context.Context, userID string) ([]*entities.DomainSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.DomainSchema, 0, len(s.domains[userID]))
	for _, schema := range s.domains[userID] {
		out = append(out, schema.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// SaveDomainSchemas implements ports.SchemaStore
func (s *Store) SaveDomainSchemas(ctx context.Context, userID string, schemas []*entities.DomainSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.domains[userID] == nil {
		s.domains[userID] = make(map[string]*entities.DomainSchema)
	}
	for _, schema := range schemas {
		s.domains[userID][strings.ToLower(schema.Name)] = schema.Clone()
	}
	return nil
}

// CreateEvent implements ports.EventRepository
func (s *Store) CreateEvent(ctx context.Context, record *entities.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	s.events[record.UserID] = append(s.events[record.UserID], &stored)
	return nil
}

// FindRecentEvents implements ports.EventRepository
func (s *Store) FindRecentEvents(ctx context.Context, q ports.RecentEventsQuery) ([]*entities.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entities.EventRecord
	for _, r := range s.events[q.UserID] {
		if !r.CreatedAt.After(q.Since) {
			continue
		}
		if q.Domain != nil && r.Domain != *q.Domain {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// CreateDomainLog implements ports.DomainLogRepository
func (s *Store) CreateDomainLog(ctx context.Context, log *entities.DomainLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *log
	s.logs[log.UserID] = append(s.logs[log.UserID], &stored)
	return nil
}

// DomainLogs returns the user's domain logs in write order
func (s *Store) DomainLogs(userID string) []*entities.DomainLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.DomainLog, len(s.logs[userID]))
	copy(out, s.logs[userID])
	return out
}
