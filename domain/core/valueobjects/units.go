package valueobjects

import (
	"strings"
)

// PoundsToKg is the conversion factor used for every weight normalisation
const PoundsToKg = 0.453592

// Millilitre equivalents per water unit. A cup and a glass are both 240 ml.
var mlPerUnit = map[string]float64{
	"ml":    1,
	"cup":   240,
	"glass": 240,
	"oz":    29.5735,
	"liter": 1000,
	"pint":  473.176,
	"quart": 946.353,
}

// NormalizeWaterUnit folds spelling variants onto a canonical unit name.
// Unknown units come back unchanged and lower-cased.
func NormalizeWaterUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "ml", "milliliter", "milliliters", "millilitre", "millilitres":
		return "ml"
	case "cup", "cups":
		return "cup"
	case "glass", "glasses":
		return "glass"
	case "oz", "ounce", "ounces", "fl oz":
		return "oz"
	case "l", "liter", "liters", "litre", "litres":
		return "liter"
	case "pint", "pints":
		return "pint"
	case "quart", "quarts":
		return "quart"
	}
	return u
}

// WaterToMillilitres converts an amount of water to millilitres.
// The second return value is false for units with no known equivalent.
func WaterToMillilitres(amount float64, unit string) (float64, bool) {
	factor, ok := mlPerUnit[NormalizeWaterUnit(unit)]
	if !ok {
		return 0, false
	}
	return amount * factor, true
}

// NormalizeWeightUnit maps kilogram spellings to "kg" and everything else to "lbs"
func NormalizeWeightUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "kg" || u == "kgs" || strings.HasPrefix(u, "kilo") {
		return "kg"
	}
	return "lbs"
}

// WeightToKg converts a weight to kilograms
func WeightToKg(weight float64, unit string) float64 {
	if NormalizeWeightUnit(unit) == "kg" {
		return weight
	}
	return weight * PoundsToKg
}

// Currency codes recognised by DetectCurrency
const (
	CurrencyUSD = "USD"
	CurrencyGBP = "GBP"
	CurrencyEUR = "EUR"
	CurrencyJPY = "JPY"
)

// DetectCurrency picks a currency by the presence of a symbol or word
// anywhere in the text, defaulting to USD.
func DetectCurrency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "£", "gbp", "pound"):
		return CurrencyGBP
	case containsAny(lower, "€", "eur", "euro"):
		return CurrencyEUR
	case containsAny(lower, "¥", "jpy", "yen"):
		return CurrencyJPY
	}
	return CurrencyUSD
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
