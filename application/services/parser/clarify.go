package parser

import (
	"fmt"
	"regexp"

	"lifelog/domain/events"
)

// Responses used when nothing could be logged
const (
	InvalidDataResponse = "I couldn't extract valid data from that. Could you provide more details? For example: 'quit smoking', 'drank 500ml water', or 'applied to Software Engineer at Google'"

	JobLinkResponse = "Great! I found a job link. I can help track this. What's the company name and role? Or paste the job posting link and I'll try to extract the details."
	JobResponse     = "I'd love to help you track this job! Can you share:\n• The company name\n• The job title/role\n• A link to the job posting (if you have one)\n\nI can use the link to automatically fill in details like company, title, and location."

	GenericResponse = "I'm not sure how to track that. Could you give me more details? For example:\n• \"drank 2 cups of water\"\n• \"did 5 squats at 100kg\"\n• \"worked on 3 projects\"\n• \"found a job to apply to\"\n• \"slept 7 hours\""

	StorageUnavailableResponse = "I couldn't save that right now. Please try again in a moment."
)

var (
	jobKeywords  = regexp.MustCompile(`(?i)\b(?:jobs?|apply|applying|applied|positions?|careers?|roles?)\b`)
	jobTrigger   = regexp.MustCompile(`job|position|opportunity|apply|application|career|hiring|role|interview|offer`)
	clarifyRules = []struct {
		trigger  *regexp.Regexp
		response string
	}{
		{
			trigger:  regexp.MustCompile(`drank|drink|water|hydrated|liquid`),
			response: "I heard something about water! How much did you drink? (e.g., '2 cups' or '500ml')",
		},
		{
			trigger:  regexp.MustCompile(`worked|work|building|built|project|app|code`),
			response: "Sounds like you did some work! What did you work on? (e.g., '3 coding projects' or 'built 2 apps')",
		},
		{
			trigger:  regexp.MustCompile(`exercise|workout|gym|squat|deadlift|bench|lift|run|ran`),
			response: "I heard something about exercise! What did you do? (e.g., 'did 5 squats at 100kg' or 'ran 5km')",
		},
		{
			trigger:  regexp.MustCompile(`slept|sleep|bed|rest`),
			response: "I heard something about sleep! How many hours did you sleep? (e.g., 'slept 7 hours')",
		},
		{
			trigger:  regexp.MustCompile(`read|reading|book|pages`),
			response: "I heard something about reading! What did you read? (e.g., 'read 50 pages' or 'finished a chapter')",
		},
		{
			trigger:  regexp.MustCompile(`spent|bought|purchase|expense|money|cost`),
			response: "I heard something about money! What did you spend? (e.g., 'spent $50 on groceries')",
		},
	}
)

// jobClarification asks for the details of a job the user mentioned
func jobClarification(hasURL bool) string {
	if hasURL {
		return JobLinkResponse
	}
	return JobResponse
}

// clarify picks a question from the vocabulary of lower, then a category
// suggestion, then the generic examples
func clarify(lower string, hasURL bool, suggestion *events.SuggestedCategory) string {
	if jobTrigger.MatchString(lower) {
		return jobClarification(hasURL)
	}
	for _, rule := range clarifyRules {
		if rule.trigger.MatchString(lower) {
			return rule.response
		}
	}
	if suggestion != nil {
		return fmt.Sprintf("I couldn't categorize that. Would you like to create a %q category? This sounds like it could track %s.", suggestion.Name, suggestion.Reason)
	}
	return GenericResponse
}
