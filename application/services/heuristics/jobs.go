package heuristics

import (
	"strings"

	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
)

// Job application statuses
const (
	JobStatusApplied    = "APPLIED"
	JobStatusInterested = "INTERESTED"
	JobStatusPending    = "PENDING"
	JobStatusAccepted   = "ACCEPTED"
	JobStatusDeclined   = "DECLINED"
)

const companyName = `([A-Z][\w&.-]*(?:\s+[A-Z][\w&.-]*)?)`

var (
	// JobGate routes a sentence exclusively into the jobs family
	JobGate = re(`\b(?:jobs?|positions?|opportunit(?:y|ies)|apply|applying|applied|applications?|careers?|hiring|roles?|interview\w*|offers?|rejection|rejected|accepted|declined)\b`)

	jobNoun            = re(`\b(?:jobs?|positions?|opportunit(?:y|ies)|roles?|openings?|postings?)\b`)
	interviewCompany   = re(`(?i:interview|meeting|call)\s+(?i:with|at|for)\s+` + companyName)
	offerCompany       = re(`(?i:offer)\s+(?i:from|at|with)\s+` + companyName)
	prepositionCompany = re(`\b(?:at|for|with|to)\s+` + companyName)
	roleAfterAs        = re(`(?i)\bas\s+(?:an?\s+)?([a-z][a-z ]{1,40}?)(?:\s+(?:at|with|for|in)\b|[,.!?]|$)`)
	roleBeforeNoun     = re(`(?i)\b(?:for|the|a|an)\s+([a-z][a-z ]{1,40}?)\s+(?:role|position)\b`)
	salaryPattern      = re(`(?i)(?:salary|pay|compensation)\s+(?:of\s+)?(?:[$£€¥]|usd|gbp|eur)?\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)
	appliedWord        = re(`\bapplied\b`)
)

var genericRoles = map[string]bool{
	"job": true, "position": true, "role": true, "opening": true, "posting": true, "it": true, "this": true, "this job": true,
}

func stripArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(strings.ToLower(s), article) {
			return strings.TrimSpace(s[len(article):])
		}
	}
	return s
}

// cleanCompany drops punctuation picked up at the end of a sentence
func cleanCompany(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".,-&")
}

type jobInfo struct {
	company string
	role    string
	url     string
}

// extractJobInfo pulls a company, role and posting URL out of free text
func extractJobInfo(original string) jobInfo {
	info := jobInfo{url: valueobjects.FindURL(original)}
	if m := prepositionCompany.FindStringSubmatch(original); m != nil {
		info.company = cleanCompany(m[1])
	}
	if m := roleAfterAs.FindStringSubmatch(original); m != nil {
		info.role = strings.TrimSpace(m[1])
	} else if m := roleBeforeNoun.FindStringSubmatch(original); m != nil {
		info.role = stripArticle(m[1])
	}
	return info
}

func jobsFamily() Family {
	return Family{
		Domain:    events.DomainJobs,
		Gate:      JobGate,
		Exclusive: true,
		Rules: []Rule{
			{
				Name:       "job-interview",
				Pattern:    re(`\binterview`),
				Extract:    extractInterview,
				Confidence: 0.85,
			},
			{
				Name:       "job-offer",
				Pattern:    re(`\b(?:offers?|accepted|declined)\b`),
				Extract:    extractOffer,
				Confidence: 0.85,
			},
			{
				// "finding jobs to apply to, i have 5 i need to apply to"
				Name:       "job-count-trailing",
				Pattern:    re(`(?:finding|found|have|need|discovered)\s+(?:jobs?|positions?|applications?|opportunities)\b.*?\b(?:have|need|found)\s+(\d+)`),
				Extract:    extractJobCount,
				Confidence: 0.85,
			},
			{
				Name:       "job-count",
				Pattern:    re(`(?:have|need|found|applying\s+to|got|discovered)\s+(\d+)\s+(?:new\s+)?(?:jobs?|positions?|applications?|opportunit(?:y|ies))\b`),
				Extract:    extractJobCount,
				Confidence: 0.85,
			},
			{
				Name:       "job-count-openings",
				Pattern:    re(`(?:found|have|discovered|saw|see|seeing)\s+(\d+)\s+(?:job\s+|new\s+)?(?:opportunit(?:y|ies)|openings?|roles?|postings?)\b`),
				Extract:    extractJobCount,
				Confidence: 0.85,
			},
			{
				// "applied to the backend engineer role at Stripe"
				Name:       "job-applied-role-at-company",
				Pattern:    re(`(?i:applied|submitted|sent|put\s+in)\s+(?i:an?\s+)?(?i:application\s+)?(?i:to|for)\s+(?i:(?:the|a|an)\s+)?([A-Za-z][\w/&+ -]*?)\s+(?i:(?:role|position)\s+)?(?i:at|with)\s+` + companyName),
				Original:   true,
				Extract:    extractAppliedRoleAtCompany,
				Confidence: 0.85,
			},
			{
				Name:       "job-applied-company",
				Pattern:    re(`(?i:applied|submitted|sent|put\s+in)\s+(?i:an?\s+)?(?i:application\s+)?(?i:to|for|at|with)\s+` + companyName),
				Original:   true,
				Extract:    extractAppliedCompany,
				Confidence: 0.85,
			},
			{
				Name:       "job-posting-url",
				Pattern:    re(`(?i)https?://\S+`),
				Original:   true,
				Extract:    extractPostingURL,
				Confidence: 0.75,
			},
			{
				Name:       "job-company-mention",
				Pattern:    prepositionCompany,
				Original:   true,
				Extract:    extractInterestedCompany,
				Confidence: 0.75,
			},
		},
		Fallback: incompleteJobLead,
	}
}

func extractInterview(in Input, m []string) (events.EventType, events.Payload, bool) {
	info := extractJobInfo(in.Original)
	company := info.company
	if cm := interviewCompany.FindStringSubmatch(in.Original); cm != nil {
		company = cleanCompany(cm[1])
	}
	if company == "" {
		return "", nil, false
	}
	payload := &events.JobPayload{Company: company, Role: info.role, URL: info.url}
	payload.Notes = in.Original
	return events.JobInterview, payload, true
}

func extractOffer(in Input, m []string) (events.EventType, events.Payload, bool) {
	info := extractJobInfo(in.Original)
	company := info.company
	if cm := offerCompany.FindStringSubmatch(in.Original); cm != nil {
		company = cleanCompany(cm[1])
	}
	if company == "" {
		return "", nil, false
	}

	payload := &events.JobPayload{
		Company: company,
		Role:    info.role,
		URL:     info.url,
		Status:  JobStatusPending,
	}
	switch {
	case strings.Contains(in.Lower, "accepted"):
		payload.Status = JobStatusAccepted
	case strings.Contains(in.Lower, "declined"):
		payload.Status = JobStatusDeclined
	}
	if sm := salaryPattern.FindStringSubmatch(in.Original); sm != nil {
		salary, ok := parseNumber(sm[1])
		if !ok {
			return "", nil, false
		}
		payload.Salary = events.Num(salary)
	}
	payload.Notes = in.Original
	return events.JobOffer, payload, true
}

func extractJobCount(in Input, m []string) (events.EventType, events.Payload, bool) {
	count, ok := parseNumber(group(m, 1))
	if !ok || count < 1 {
		return "", nil, false
	}
	payload := &events.JobPayload{Count: events.Num(count)}
	payload.Notes = in.Original
	return events.JobFound, payload, true
}

func extractAppliedRoleAtCompany(in Input, m []string) (events.EventType, events.Payload, bool) {
	role := strings.TrimSpace(group(m, 1))
	company := cleanCompany(group(m, 2))
	if role == "" || genericRoles[strings.ToLower(role)] || company == "" {
		return "", nil, false
	}
	return events.JobApplied, &events.JobPayload{
		Company: company,
		Role:    role,
		Status:  JobStatusApplied,
		URL:     valueobjects.FindURL(in.Original),
	}, true
}

func extractAppliedCompany(in Input, m []string) (events.EventType, events.Payload, bool) {
	company := cleanCompany(group(m, 1))
	if len(company) < 2 {
		return "", nil, false
	}
	info := extractJobInfo(in.Original)
	payload := &events.JobPayload{
		Company: company,
		Role:    info.role,
		Status:  JobStatusApplied,
		URL:     info.url,
	}
	if payload.Role == "" && info.url != "" {
		if posting, err := valueobjects.ParseJobURL(info.url); err == nil {
			payload.Role = posting.Role
		}
	}
	return events.JobApplied, payload, true
}

func extractPostingURL(in Input, m []string) (events.EventType, events.Payload, bool) {
	posting, err := valueobjects.ParseJobURL(valueobjects.FindURL(in.Original))
	if err != nil || posting.Company == "" || posting.Role == "" {
		return "", nil, false
	}
	status := JobStatusInterested
	if appliedWord.MatchString(in.Lower) {
		status = JobStatusApplied
	}
	return events.JobApplied, &events.JobPayload{
		Company: posting.Company,
		Role:    posting.Role,
		Status:  status,
		URL:     posting.URL,
	}, true
}

func extractInterestedCompany(in Input, m []string) (events.EventType, events.Payload, bool) {
	info := extractJobInfo(in.Original)
	if info.company == "" {
		return "", nil, false
	}
	payload := &events.JobPayload{
		Company: info.company,
		Role:    info.role,
		Status:  JobStatusInterested,
		URL:     info.url,
	}
	payload.Notes = in.Original
	return events.JobApplied, payload, true
}

// incompleteJobLead is returned when a sentence is clearly about jobs but
// carries too little to log. The gate rejects it and the caller asks for details.
func incompleteJobLead(in Input) *events.ParsedEvent {
	payload := &events.JobPayload{
		Count:      events.Num(1),
		Incomplete: true,
		URL:        valueobjects.FindURL(in.Original),
	}
	payload.Notes = in.Original
	confidence := 0.5
	if jobNoun.MatchString(in.Lower) {
		confidence = 0.6
	}
	event := events.NewParsedEvent(events.DomainJobs, events.JobFound, payload, confidence)
	return &event
}
