package conversation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"lifelog/application/ports"
	"lifelog/application/services/heuristics"
	"lifelog/domain/config"
	"lifelog/domain/events"

	"go.uber.org/zap"
)

// Entry is one recent event shown to the parser as conversation context
type Entry = events.ContextEntry

// Message is a chat turn supplied by the client
type Message struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}

// Resolver assembles the recent conversation for a user
type Resolver struct {
	repo        ports.EventRepository
	matcher     *heuristics.Matcher
	clock       ports.Clock
	window      time.Duration
	limit       int
	callerTurns int
	logger      *zap.Logger
}

// NewResolver creates a new context resolver
func NewResolver(
	repo ports.EventRepository,
	matcher *heuristics.Matcher,
	clock ports.Clock,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Resolver {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Resolver{
		repo:        repo,
		matcher:     matcher,
		clock:       clock,
		window:      cfg.ContextWindow,
		limit:       cfg.ContextLimit,
		callerTurns: cfg.CallerContextTurns,
		logger:      logger,
	}
}

// GetRecentContext returns the user's events from the last window, newest
// first. limit is clamped to the configured maximum.
func (r *Resolver) GetRecentContext(ctx context.Context, userID string, domain *events.Domain, limit int) ([]Entry, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}
	now := r.clock.Now()

	records, err := r.repo.FindRecentEvents(ctx, ports.RecentEventsQuery{
		UserID: userID,
		Domain: domain,
		Since:  now.Add(-r.window),
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent events: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.CreatedAt.Before(now.Add(-r.window)) {
			continue
		}
		if domain != nil && rec.Domain != *domain {
			continue
		}
		entries = append(entries, rec.ContextEntry())
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Resolve picks the context for one parse. History supplied by the caller
// wins over the stored window.
func (r *Resolver) Resolve(ctx context.Context, userID string, supplied []Message) ([]Entry, error) {
	if entries := r.fromMessages(supplied); len(entries) > 0 {
		r.logger.Debug("Using caller supplied context",
			zap.String("user_id", userID),
			zap.Int("entries", len(entries)),
		)
		return entries, nil
	}
	return r.GetRecentContext(ctx, userID, nil, r.limit)
}

// fromMessages re-derives entries from the caller's most recent user turns
func (r *Resolver) fromMessages(messages []Message) []Entry {
	now := r.clock.Now()
	var entries []Entry
	for i := len(messages) - 1; i >= 0 && len(entries) < r.callerTurns; i-- {
		msg := messages[i]
		text := strings.TrimSpace(msg.Text)
		if !msg.IsUser || text == "" {
			continue
		}

		entry := Entry{Text: text, Timestamp: now}
		if r.matcher != nil {
			if e := r.matcher.Match(text); e != nil {
				entry.Domain = e.Domain
				entry.Type = e.Type
				entry.Payload = e.Payload
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// Summarize renders entries oldest first for a model prompt
func Summarize(entries []Entry, max int) string {
	if max > 0 && len(entries) > max {
		entries = entries[:max]
	}

	lines := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Domain == "" || e.Type == "" {
			lines = append(lines, fmt.Sprintf("Previous: %q", e.Text))
			continue
		}
		lines = append(lines, fmt.Sprintf("Previous: %q -> %s/%s (%s)", e.Text, e.Domain, e.Type, payloadSummary(e.Payload)))
	}
	return strings.Join(lines, "\n")
}

func payloadSummary(p events.Payload) string {
	fields := events.Fields(p)
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == "incomplete" || v == nil || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, fields[k])
	}
	return strings.Join(parts, ", ")
}
