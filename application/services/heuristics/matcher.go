// Package heuristics extracts a single event from free text with an ordered
// table of regular-expression rules. It is the offline fallback for the
// agent and the source of follow-up context for caller-supplied history.
package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"lifelog/domain/events"
)

// Input is the text a rule sees, in original and lower-cased form
type Input struct {
	Original string
	Lower    string
}

// Extractor turns a pattern match into a payload.
// Returning ok=false lets the next rule try.
type Extractor func(in Input, m []string) (t events.EventType, p events.Payload, ok bool)

// Rule is one row of the catalogue: a pattern, how to read it, and how sure we are
type Rule struct {
	Name       string
	Pattern    *regexp.Regexp
	Original   bool // match against the original text instead of the lower-cased one
	Extract    Extractor
	Confidence float64
	// Score overrides Confidence when set
	Score func(p events.Payload) float64
}

// Family groups the rules of one domain.
// When Gate is set the family only runs if the gate matches the lower-cased text.
// An Exclusive family stops the scan once its gate matched, returning Fallback.
type Family struct {
	Domain    events.Domain
	Gate      *regexp.Regexp
	Exclusive bool
	Rules     []Rule
	Fallback  func(in Input) *events.ParsedEvent
}

// Matcher runs the rule catalogue
type Matcher struct {
	families []Family
}

// NewMatcher creates a matcher with the standard catalogue
func NewMatcher() *Matcher {
	return &Matcher{families: Catalogue()}
}

// NewMatcherWithFamilies creates a matcher over a custom catalogue
func NewMatcherWithFamilies(families []Family) *Matcher {
	return &Matcher{families: families}
}

// Catalogue returns the standard rule families in evaluation order
func Catalogue() []Family {
	return []Family{
		wellnessFamily(),
		workoutFamily(),
		habitFamily(),
		jobsFamily(),
		productivityFamily(),
		financeFamily(),
		learningFamily(),
		healthFamily(),
		sobrietyFamily(),
		routineFamily(),
		listsFamily(),
	}
}

// Match returns the first event a rule can extract, or nil.
// It is pure: the same text always yields the same result.
func (m *Matcher) Match(text string) (result *events.ParsedEvent) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
		}
	}()

	original := strings.TrimSpace(text)
	if original == "" {
		return nil
	}
	in := Input{Original: original, Lower: strings.ToLower(original)}

	for _, family := range m.families {
		if family.Gate != nil && !family.Gate.MatchString(in.Lower) {
			continue
		}
		if event := family.run(in); event != nil {
			return event
		}
		if family.Exclusive {
			if family.Fallback != nil {
				return family.Fallback(in)
			}
			return nil
		}
	}
	return nil
}

func (f Family) run(in Input) *events.ParsedEvent {
	for _, rule := range f.Rules {
		subject := in.Lower
		if rule.Original {
			subject = in.Original
		}
		match := rule.Pattern.FindStringSubmatch(subject)
		if match == nil {
			continue
		}
		eventType, payload, ok := rule.Extract(in, match)
		if !ok {
			continue
		}
		confidence := rule.Confidence
		if rule.Score != nil {
			confidence = rule.Score(payload)
		}
		event := events.NewParsedEvent(f.Domain, eventType, payload, confidence)
		return &event
	}
	return nil
}

// parseNumber reads a captured number, stripping thousands separators.
// Malformed input yields ok=false rather than zero.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func group(m []string, i int) string {
	if i < len(m) {
		return strings.TrimSpace(m[i])
	}
	return ""
}

func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}
