package heuristics

import (
	"strings"

	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
)

// waterAmount accepts thousands separators so "1,500ml" is not read as 500
const waterAmount = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

const waterUnits = `glasses|glass|cups?|liters?|litres?|l|ml|milliliters?|millilitres?|fl\s*oz|oz|ounces?|pints?|quarts?`

// Payload units as they are stored and shown back to the user
var waterPayloadUnits = map[string]string{
	"ml":    "ml",
	"cup":   "cups",
	"glass": "cups",
	"oz":    "oz",
	"liter": "liter",
	"pint":  "pints",
	"quart": "quarts",
}

var moodValues = map[string]float64{
	"happy": 8, "excited": 9, "grateful": 8, "calm": 7, "confident": 8,
	"energetic": 7, "peaceful": 8, "motivated": 8, "inspired": 9, "content": 7,
	"satisfied": 7, "proud": 8, "relieved": 7, "hopeful": 8, "connected": 8,
	"focused": 7, "productive": 8, "refreshed": 8, "energized": 8,
	"tired": 4, "sad": 3, "anxious": 4, "stressed": 3, "worried": 4,
	"depressed": 2, "frustrated": 3, "angry": 2, "overwhelmed": 3, "demotivated": 3,
	"unsatisfied": 4, "ashamed": 2, "guilty": 3, "disappointed": 3, "hopeless": 2,
	"lonely": 3, "isolated": 3, "scattered": 4, "lazy": 4, "burned out": 2,
	"exhausted": 2, "terrible": 1, "awful": 1, "bad": 3, "ok": 5, "okay": 5,
	"fine": 5, "good": 7, "great": 8, "amazing": 9,
}

const moodWords = `happy|sad|anxious|stressed|calm|energetic|tired|excited|depressed|grateful|worried|confident|frustrated|angry|peaceful|motivated|demotivated|overwhelmed|content|satisfied|unsatisfied|proud|ashamed|guilty|relieved|disappointed|hopeful|hopeless|lonely|connected|isolated|focused|scattered|productive|lazy|inspired|burned\s+out|exhausted|refreshed|energized`

func wellnessFamily() Family {
	return Family{
		Domain: events.DomainWellness,
		Rules: []Rule{
			{
				Name:    "water-verb-amount-unit",
				Pattern: re(`\b(?:drank|drunk|drink|had|consumed|took|downed)\s+` + waterAmount + `\s*(` + waterUnits + `)\b(?:\s*(?:of\s+)?(?:water|h2o))?`),
				Extract: extractWater,
				Score:   waterConfidence,
			},
			{
				Name:    "water-amount-unit-of-water",
				Pattern: re(`\b` + waterAmount + `\s*(` + waterUnits + `)\s*(?:of\s+)?(?:water|h2o)\b`),
				Extract: extractWater,
				Score:   waterConfidence,
			},
			{
				// "drank 500" with nothing after the number
				Name:    "water-bare-number",
				Pattern: re(`\b(?:drank|drink|had|consumed)\s+` + waterAmount + `\s*(?:of\s+(?:water|h2o))?\s*$`),
				Extract: extractWater,
				Score:   waterConfidence,
			},
			{
				Name:       "sleep-hours",
				Pattern:    re(`\b(?:slept|got|had|rested)\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)\b`),
				Extract:    extractSleep,
				Confidence: 0.85,
			},
			{
				Name:       "sleep-woke-after",
				Pattern:    re(`(?:woke\s+up|awake)\s+after\s+(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`),
				Extract:    extractSleep,
				Confidence: 0.85,
			},
			{
				Name:       "mood-feeling",
				Pattern:    re(`\b(?:feeling|feel|feels|am|i'm|mood\s+is)\s+(?:really\s+|very\s+|pretty\s+|quite\s+|super\s+)?(` + moodWords + `)\b`),
				Extract:    extractMood,
				Confidence: 0.8,
			},
			{
				Name:       "mood-rating",
				Pattern:    re(`(?:mood|feeling)\s+(?:is|was)\s+(?:really\s+|very\s+)?(good|bad|great|terrible|ok|okay|fine|amazing|awful)\b`),
				Extract:    extractMood,
				Confidence: 0.8,
			},
			{
				// the unit must follow a number or whitespace so "hot dog" is not grams
				Name:       "nutrition",
				Pattern:    re(`\b(?:ate|consumed|had|ingested)\s+(?:an?\s+)?([a-z][a-z\s]*?)\s+(?:with\s+)?(\d+(?:\.\d+)?)?\s*(?:calories|calorie|kcal|grams?|g|oz)\b`),
				Extract:    extractNutrition,
				Confidence: 0.75,
			},
		},
	}
}

func extractWater(in Input, m []string) (events.EventType, events.Payload, bool) {
	amount, ok := parseNumber(group(m, 1))
	if !ok || amount <= 0 || amount >= 50000 {
		return "", nil, false
	}
	return events.WaterLogged, &events.WaterPayload{
		Amount: events.Num(amount),
		Unit:   InferWaterUnit(group(m, 2), amount),
	}, true
}

// InferWaterUnit maps a spoken unit to its stored form. Without a unit a
// number above 100 is taken as millilitres, anything smaller as cups.
func InferWaterUnit(explicit string, amount float64) string {
	if explicit != "" {
		if unit, ok := waterPayloadUnits[valueobjects.NormalizeWaterUnit(strings.Join(strings.Fields(explicit), " "))]; ok {
			return unit
		}
	}
	if amount > 100 {
		return "ml"
	}
	return "cups"
}

func waterConfidence(p events.Payload) float64 {
	if w, ok := p.(*events.WaterPayload); ok && w.Amount.Float() < 10000 {
		return 0.9
	}
	return 0.7
}

func extractSleep(in Input, m []string) (events.EventType, events.Payload, bool) {
	if strings.Contains(in.Lower, "focus") || strings.Contains(in.Lower, "deep work") || strings.Contains(in.Lower, "pomodoro") {
		return "", nil, false
	}
	hours, ok := parseNumber(group(m, 1))
	if !ok || hours <= 0 || hours >= 24 {
		return "", nil, false
	}
	return events.SleepLogged, &events.SleepPayload{Hours: events.Num(hours)}, true
}

func extractMood(in Input, m []string) (events.EventType, events.Payload, bool) {
	mood := strings.Join(strings.Fields(group(m, 1)), " ")
	if mood == "" {
		return "", nil, false
	}
	value, known := moodValues[mood]
	if !known {
		value = 5
	}
	return events.MoodLogged, &events.MoodPayload{Mood: mood, Value: events.Num(value)}, true
}

func extractNutrition(in Input, m []string) (events.EventType, events.Payload, bool) {
	food := strings.TrimSpace(group(m, 1))
	if food == "" {
		return "", nil, false
	}
	payload := &events.NutritionPayload{Food: food}
	if raw := group(m, 2); raw != "" {
		calories, ok := parseNumber(raw)
		if !ok {
			return "", nil, false
		}
		payload.Calories = events.Num(calories)
	}
	return events.NutritionLogged, payload, true
}
