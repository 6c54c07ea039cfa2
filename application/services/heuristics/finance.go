package heuristics

import (
	"strings"

	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
)

const (
	currencyPrefix = `(?:[$£€¥]|usd|gbp|eur|jpy)`
	currencyWord   = `(?:dollars?|bucks|pounds?|euros?|yen|usd|gbp|eur|jpy)`
	moneyAmount    = `(\d+(?:,\d{3})*(?:\.\d+)?)`
)

var incomeWords = re(`\b(?:income|salary|paycheck)\b`)

func financeFamily() Family {
	return Family{
		Domain: events.DomainFinances,
		Rules: []Rule{
			{
				Name:       "expense-spent-on",
				Pattern:    re(`(?:spent|spend|paid|bought|purchased|expensed)\s+(?:` + currencyPrefix + `\s*)?` + moneyAmount + `\s*(?:` + currencyWord + `)?\s+(?:on|for|at)\s+([a-z][a-z\s]*)`),
				Extract:    extractExpense(2),
				Confidence: 0.85,
			},
			{
				Name:       "income",
				Pattern:    re(`(?:earned|made|received|got|income|salary)\s+(?:of\s+)?(` + currencyPrefix + `)?\s*` + moneyAmount + `\s*(` + currencyWord + `|k)?\b`),
				Extract:    extractIncome,
				Confidence: 0.85,
			},
			{
				Name:       "expense-bill",
				Pattern:    re(`(bill|subscription|payment|invoice)\s+(?:of|for)\s+(?:` + currencyPrefix + `\s*)?` + moneyAmount),
				Extract:    extractBill,
				Confidence: 0.85,
			},
		},
	}
}

func extractExpense(categoryIdx int) Extractor {
	return func(in Input, m []string) (events.EventType, events.Payload, bool) {
		amount, ok := parseNumber(group(m, 1))
		if !ok || amount <= 0 {
			return "", nil, false
		}
		category := strings.Join(strings.Fields(group(m, categoryIdx)), " ")
		if category == "" {
			category = "Other"
		}
		payload := &events.FinancePayload{
			Amount:   events.Num(amount),
			Currency: valueobjects.DetectCurrency(in.Original),
			Category: category,
		}
		payload.Notes = in.Original
		return events.ExpenseLogged, payload, true
	}
}

func extractBill(in Input, m []string) (events.EventType, events.Payload, bool) {
	amount, ok := parseNumber(group(m, 2))
	if !ok || amount <= 0 {
		return "", nil, false
	}
	payload := &events.FinancePayload{
		Amount:   events.Num(amount),
		Currency: valueobjects.DetectCurrency(in.Original),
		Category: group(m, 1),
	}
	payload.Notes = in.Original
	return events.ExpenseLogged, payload, true
}

// extractIncome needs a currency marker or an income word, so that
// "got 2 new clients" is not money
func extractIncome(in Input, m []string) (events.EventType, events.Payload, bool) {
	if group(m, 1) == "" && group(m, 3) == "" && !incomeWords.MatchString(in.Lower) {
		return "", nil, false
	}
	amount, ok := parseNumber(group(m, 2))
	if !ok || amount <= 0 {
		return "", nil, false
	}
	if group(m, 3) == "k" {
		amount *= 1000
	}
	payload := &events.FinancePayload{
		Amount:   events.Num(amount),
		Currency: valueobjects.DetectCurrency(in.Original),
	}
	payload.Notes = in.Original
	return events.IncomeLogged, payload, true
}
