package nlu

import (
	"regexp"
	"strings"

	"card_assistant/pkg"
)

const (
	paymentAmountConfidence   = 0.9
	requestedAmountConfidence = 0.85
	merchantConfidence        = 0.8
	monthConfidence           = 0.9
	actionConfidence          = 0.9
)

var (
	amountPattern   = regexp.MustCompile(`\d{1,3}(,\d{3})*(\.\d{2})?`)
	merchantPattern = regexp.MustCompile(`(at|from)\s+([A-Za-z\s]+)`)

	months = []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
)

// cardActions is scanned in order; the first group with a keyword hit wins.
var cardActions = []struct {
	keywords []string
	action   string
}{
	{[]string{"block", "lost", "stolen"}, "block"},
	{[]string{"replace", "new card"}, "replace"},
	{[]string{"activate"}, "activate"},
	{[]string{"cancel"}, "cancel"},
}

// Extract pulls entities of the given kind out of raw text. It never fails:
// no match yields an empty slice, except ACTION which falls back to "manage".
func Extract(kind pkg.EntityType, text string) []pkg.Entity {
	switch kind {
	case pkg.EntityAmount:
		return extractAmount(text, pkg.EntityAmount, paymentAmountConfidence)
	case pkg.EntityRequestedAmount:
		return extractAmount(text, pkg.EntityRequestedAmount, requestedAmountConfidence)
	case pkg.EntityMerchant:
		return extractMerchant(text)
	case pkg.EntityMonth:
		return extractMonth(text)
	case pkg.EntityAction:
		return []pkg.Entity{{Type: pkg.EntityAction, Value: extractAction(text), Confidence: actionConfidence}}
	default:
		return []pkg.Entity{}
	}
}

func extractAmount(text string, entityType pkg.EntityType, confidence float64) []pkg.Entity {
	match := amountPattern.FindString(strings.ToLower(text))
	if match == "" {
		return []pkg.Entity{}
	}
	return []pkg.Entity{{Type: entityType, Value: match, Confidence: confidence}}
}

func extractMerchant(text string) []pkg.Entity {
	match := merchantPattern.FindStringSubmatch(text)
	if match == nil {
		return []pkg.Entity{}
	}
	merchant := strings.TrimSpace(match[2])
	if merchant == "" {
		return []pkg.Entity{}
	}
	return []pkg.Entity{{Type: pkg.EntityMerchant, Value: merchant, Confidence: merchantConfidence}}
}

func extractMonth(text string) []pkg.Entity {
	lower := strings.ToLower(text)
	for _, month := range months {
		if strings.Contains(lower, strings.ToLower(month)) {
			return []pkg.Entity{{Type: pkg.EntityMonth, Value: month, Confidence: monthConfidence}}
		}
	}
	return []pkg.Entity{}
}

func extractAction(text string) string {
	lower := strings.ToLower(text)
	for _, group := range cardActions {
		if containsAny(lower, group.keywords) {
			return group.action
		}
	}
	return "manage"
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
