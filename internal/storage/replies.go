package storage

import "strings"

var (
	positiveReplies = []string{"yes", "ok", "okay", "sure", "yep", "yeah"}
	negativeReplies = []string{"no", "nope", "cancel", "not now", "later", "maybe later", "not sure", "maybe"}
	neutralReplies  = []string{"thanks", "thank you", "got it", "alright", "fine"}
)

func normalizeReply(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimRight(text, ".!?")
	return strings.TrimSpace(text)
}

func isOneOf(text string, set []string) bool {
	normalized := normalizeReply(text)
	for _, token := range set {
		if normalized == token {
			return true
		}
	}
	return false
}

// IsPositiveResponse reports whether text is an affirmative token such as "yes" or "ok"
func IsPositiveResponse(text string) bool {
	return isOneOf(text, positiveReplies)
}

// IsNegativeResponse reports whether text declines or defers, e.g. "no" or "maybe later"
func IsNegativeResponse(text string) bool {
	return isOneOf(text, negativeReplies)
}

// IsSimpleResponse reports whether text is short enough to answer a pending follow-up
func IsSimpleResponse(text string) bool {
	return IsPositiveResponse(text) || IsNegativeResponse(text) || isOneOf(text, neutralReplies)
}

// ExpectedReplies lists the tokens a pending follow-up accepts
func ExpectedReplies() []string {
	replies := make([]string, 0, len(positiveReplies)+len(negativeReplies))
	replies = append(replies, positiveReplies...)
	return append(replies, negativeReplies...)
}
