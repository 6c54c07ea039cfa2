package heuristics

import (
	"strings"

	"lifelog/domain/events"
)

// Learning material kinds
const (
	KindCourse  = "COURSE"
	KindBook    = "BOOK"
	KindArticle = "ARTICLE"
	KindVideo   = "VIDEO"
	KindPodcast = "PODCAST"
)

var (
	bookWords    = re(`book|read|reading|chapter|pages`)
	articleWords = re(`article|blog|post`)
	videoWords   = re(`video|tutorial|youtube`)
)

const learningTitle = `["']?([^"']+?)["']?[.!]?\s*$`

func learningFamily() Family {
	return Family{
		Domain: events.DomainLearning,
		Rules: []Rule{
			{
				Name:       "learning-started",
				Pattern:    re(`(?i)(?:started|began|starting)\s+(?:a\s+|the\s+)?(?:new\s+)?(course|class|tutorial|video|book|article|podcast)\s+(?:on|about|called)\s+` + learningTitle),
				Original:   true,
				Extract:    extractLearningStarted,
				Confidence: 0.8,
			},
			{
				Name:       "learning-finished",
				Pattern:    re(`(?i)(?:finished\s+reading|finished|completed|read)\s+(?:a\s+|the\s+)?(course|class|tutorial|book|article|chapter|section|podcast)\s+(?:on|about|called)\s+` + learningTitle),
				Original:   true,
				Extract:    extractLearningFinished,
				Confidence: 0.8,
			},
			{
				Name:       "learning-pages",
				Pattern:    re(`(?i)(?:read|reading)\s+(\d+)\s*(?:pages?|chapters?|sections?)\s+(?:of\s+)?` + learningTitle),
				Original:   true,
				Extract:    extractPagesRead,
				Confidence: 0.8,
			},
			{
				Name:       "learning-studied",
				Pattern:    re(`(?i)(?:learned|learnt|learning|studied|studying)\s+(?:about|how\s+to)\s+` + learningTitle),
				Original:   true,
				Extract:    extractStudied,
				Confidence: 0.8,
			},
		},
	}
}

func kindOfNoun(noun string) string {
	switch strings.ToLower(noun) {
	case "book", "chapter", "section":
		return KindBook
	case "article":
		return KindArticle
	case "tutorial", "video":
		return KindVideo
	case "podcast":
		return KindPodcast
	}
	return KindCourse
}

// inferKind guesses the material kind from the whole sentence
func inferKind(lower string) string {
	switch {
	case bookWords.MatchString(lower):
		return KindBook
	case articleWords.MatchString(lower):
		return KindArticle
	case videoWords.MatchString(lower):
		return KindVideo
	case strings.Contains(lower, "podcast"):
		return KindPodcast
	}
	return KindCourse
}

func extractLearningStarted(in Input, m []string) (events.EventType, events.Payload, bool) {
	title := strings.TrimSpace(group(m, 2))
	if title == "" {
		return "", nil, false
	}
	return events.CourseStarted, &events.LearningPayload{
		Kind:     kindOfNoun(group(m, 1)),
		Title:    title,
		Progress: events.Num(0),
	}, true
}

func extractLearningFinished(in Input, m []string) (events.EventType, events.Payload, bool) {
	return finishedLearning(kindOfNoun(group(m, 1)), group(m, 2))
}

func extractStudied(in Input, m []string) (events.EventType, events.Payload, bool) {
	return finishedLearning(inferKind(in.Lower), group(m, 1))
}

func finishedLearning(kind, title string) (events.EventType, events.Payload, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", nil, false
	}
	payload := &events.LearningPayload{Kind: kind, Title: title, Progress: events.Num(100)}
	if kind == KindCourse {
		return events.CourseCompleted, payload, true
	}
	return events.BookRead, payload, true
}

func extractPagesRead(in Input, m []string) (events.EventType, events.Payload, bool) {
	pages, ok := parseNumber(group(m, 1))
	if !ok || pages <= 0 {
		return "", nil, false
	}
	title := strings.TrimSpace(group(m, 2))
	if title == "" {
		return "", nil, false
	}
	return events.BookRead, &events.LearningPayload{
		Kind:     KindBook,
		Title:    title,
		Pages:    events.Num(pages),
		Progress: events.Num(pages),
	}, true
}
