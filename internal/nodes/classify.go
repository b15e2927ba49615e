package nodes

import (
	"context"

	"card_assistant/internal/core"
	"card_assistant/internal/logger"
	"card_assistant/internal/nlu"
	"card_assistant/pkg"
)

// DefaultConfidenceThreshold is the confidence an intent must exceed to be answered directly
const DefaultConfidenceThreshold = 0.4

// ClassifyNode picks an account context and classifies the utterance
type ClassifyNode struct {
	classifier *nlu.Classifier
	accounts   nlu.AccountProvider
	threshold  float64
}

// NewClassifyNode creates a classify node
func NewClassifyNode(classifier *nlu.Classifier, accounts nlu.AccountProvider, threshold float64) *ClassifyNode {
	return &ClassifyNode{classifier: classifier, accounts: accounts, threshold: threshold}
}

// Execute classifies the utterance and reports whether it clears the threshold
func (c *ClassifyNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	var account *pkg.UserAccountContext
	if input.UserID != "" {
		account = &pkg.UserAccountContext{UserID: input.UserID}
	}
	account = nlu.EnhanceContext(ctx, c.accounts, account)

	intent := c.classifier.Classify(input.UserMessage, account)
	confident := intent.Confidence > c.threshold

	logger.Info().
		Str("session_id", input.SessionID).
		Str("intent", string(intent.IntentID)).
		Float64("confidence", intent.Confidence).
		Bool("confident", confident).
		Msg("intent classified")

	return core.NodeOutput{
		Data: map[string]any{
			core.KeyIntent:    &intent,
			core.KeyAccount:   account,
			core.KeyConfident: confident,
		},
	}, nil
}

// GetName returns the node name
func (c *ClassifyNode) GetName() string {
	return core.NodeClassify
}

// GetType returns the node type
func (c *ClassifyNode) GetType() core.NodeType {
	return core.NodeTypeClassify
}
