package nlu

import (
	"strings"

	"card_assistant/internal/logger"
	"card_assistant/pkg"
)

// Classifier maps an utterance to a ClassifiedIntent with ordered keyword rules.
// It is deterministic and only reads the account context it is given.
type Classifier struct {
	rules []rule
}

// NewClassifier creates a classifier with the built-in rule order
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Classify lower-cases and trims the utterance, then returns the intent of the
// first matching rule, or UNRECOGNIZED_INQUIRY when nothing matches.
func (c *Classifier) Classify(utterance string, account *pkg.UserAccountContext) pkg.ClassifiedIntent {
	trimmed := strings.TrimSpace(utterance)
	text := strings.ToLower(trimmed)
	if text == "" {
		return unrecognizedIntent()
	}

	for _, r := range c.rules {
		if !r.matches(text) {
			continue
		}
		intent := r.build(trimmed, account)
		logger.Debug().
			Str("intent", string(intent.IntentID)).
			Float64("confidence", intent.Confidence).
			Int("entities", len(intent.Entities)).
			Bool("account_context", account != nil).
			Msg("utterance classified")
		return intent
	}

	logger.Debug().Str("text", text).Msg("no intent rule matched")
	return unrecognizedIntent()
}

// Intents lists the rule intents in evaluation order
func (c *Classifier) Intents() []pkg.IntentID {
	ids := make([]pkg.IntentID, 0, len(c.rules))
	for _, r := range c.rules {
		ids = append(ids, r.intent)
	}
	return ids
}
