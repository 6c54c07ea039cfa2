package agent

import (
	"encoding/json"
	"strings"

	"lifelog/domain/events"
)

type finalAnswer struct {
	IsQuery           bool                      `json:"isQuery"`
	QueryType         *string                   `json:"queryType"`
	QueryDomain       *string                   `json:"queryDomain"`
	Events            []json.RawMessage         `json:"events"`
	Response          string                    `json:"response"`
	SuggestedCategory *events.SuggestedCategory `json:"suggestedCategory"`
}

// stripFences removes a surrounding markdown code block
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeAnswer turns the model's final content into a parse result.
// Content that is not JSON becomes the response verbatim. Events naming an
// unknown domain or type are dropped; the count is returned.
func decodeAnswer(content string) (*events.ParseResult, int) {
	body := stripFences(content)

	var answer finalAnswer
	if err := json.Unmarshal([]byte(body), &answer); err != nil {
		start, end := strings.IndexByte(body, '{'), strings.LastIndexByte(body, '}')
		if start < 0 || end <= start || json.Unmarshal([]byte(body[start:end+1]), &answer) != nil {
			return &events.ParseResult{Events: []events.ParsedEvent{}, Response: content}, 0
		}
	}

	result := &events.ParseResult{
		IsQuery:           answer.IsQuery,
		Events:            make([]events.ParsedEvent, 0, len(answer.Events)),
		Response:          answer.Response,
		SuggestedCategory: answer.SuggestedCategory,
	}
	if answer.QueryType != nil {
		if q := events.QueryType(strings.ToLower(*answer.QueryType)); q.IsValid() {
			result.QueryType = q
		}
	}
	if answer.QueryDomain != nil {
		if d, err := events.ParseDomain(*answer.QueryDomain); err == nil {
			result.QueryDomain = d
		}
	}
	if result.SuggestedCategory != nil && strings.TrimSpace(result.SuggestedCategory.Name) == "" {
		result.SuggestedCategory = nil
	}

	dropped := 0
	for _, raw := range answer.Events {
		var e events.ParsedEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			dropped++
			continue
		}
		result.Events = append(result.Events, events.NewParsedEvent(e.Domain, e.Type, e.Payload, e.Confidence))
	}
	return result, dropped
}
