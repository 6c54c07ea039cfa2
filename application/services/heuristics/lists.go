package heuristics

import (
	"strings"

	"lifelog/domain/events"
)

// Task statuses
const (
	TaskStatusTodo      = "todo"
	TaskStatusCompleted = "completed"
)

// listsFamily logs to-do items. Lists live under PRODUCTIVITY.
func listsFamily() Family {
	return Family{
		Domain: events.DomainProductivity,
		Rules: []Rule{
			{
				Name:       "list-prefixed",
				Pattern:    re(`(?i)^(?:todo|todos|to-do|list|tasks)\s*:\s*(.+)$`),
				Original:   true,
				Extract:    extractTodoItems,
				Confidence: 0.85,
			},
			{
				Name:       "list-add",
				Pattern:    re(`(?i)(?:add|create|new)\s+(?:a\s+)?(?:todo|task|item|list\s+item)\s*:?\s*(.+)$`),
				Original:   true,
				Extract:    extractTodoItems,
				Confidence: 0.85,
			},
			{
				Name:       "list-mark-done",
				Pattern:    re(`(?i)(?:mark|check|tick)\s+(?:off\s+)?(.+?)\s+(?:as\s+)?(?:done|completed|complete|finished)[.!]?\s*$`),
				Original:   true,
				Extract:    extractTodoDone,
				Confidence: 0.8,
			},
			{
				Name:       "list-check-off",
				Pattern:    re(`(?i)(?:check|tick|cross)\s+off\s+(.+?)[.!]?\s*$`),
				Original:   true,
				Extract:    extractTodoDone,
				Confidence: 0.8,
			},
			{
				Name:       "list-is-done",
				Pattern:    re(`(?i)^(.+?)\s+(?:is|was)\s+(?:done|completed|finished)[.!]?\s*$`),
				Original:   true,
				Extract:    extractTodoDone,
				Confidence: 0.8,
			},
		},
	}
}

func extractTodoItems(in Input, m []string) (events.EventType, events.Payload, bool) {
	text := strings.TrimSpace(group(m, 1))
	if text == "" {
		return "", nil, false
	}
	if strings.Contains(text, ",") {
		var items []string
		for _, item := range strings.Split(text, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) > 1 {
			return events.TasksAdded, &events.TaskPayload{Items: items, Status: TaskStatusTodo}, true
		}
		if len(items) == 1 {
			text = items[0]
		}
	}
	return events.TaskAdded, &events.TaskPayload{Title: text, Status: TaskStatusTodo}, true
}

func extractTodoDone(in Input, m []string) (events.EventType, events.Payload, bool) {
	title := strings.TrimSpace(group(m, 1))
	if title == "" {
		return "", nil, false
	}
	return events.TaskCompleted, &events.TaskPayload{Title: title, Status: TaskStatusCompleted}, true
}
