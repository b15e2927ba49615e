package nodes

import (
	"context"
	"fmt"

	"card_assistant/internal/core"
	"card_assistant/internal/response"
	"card_assistant/internal/storage"
	"card_assistant/pkg"
)

// pendingActions lists the intents whose reply asks a yes/no question
var pendingActions = map[pkg.IntentID]pkg.PendingAction{
	pkg.IntentPaymentInquiry:     pkg.ActionPaymentConfirmation,
	pkg.IntentCreditLimit:        pkg.ActionCreditLimitRequest,
	pkg.IntentTransactionDispute: pkg.ActionDuplicateReportConfirmation,
	pkg.IntentAccountSecurity:    pkg.ActionSecurityPhoneConfirmation,
}

// ResponseNode renders the reply for a confidently classified intent
type ResponseNode struct {
	generator *response.Generator
	store     storage.ContextStore
}

// NewResponseNode creates a new response generation node
func NewResponseNode(generator *response.Generator, store storage.ContextStore) *ResponseNode {
	return &ResponseNode{generator: generator, store: store}
}

// Execute generates the reply and, for question-asking intents, records the pending follow-up
func (r *ResponseNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if input.Intent == nil {
		return core.NodeOutput{}, fmt.Errorf("no classified intent available")
	}
	intent := *input.Intent

	reply := r.generator.Generate(intent, input.Account)

	if action, ok := pendingActions[intent.IntentID]; ok {
		userID := input.UserID
		if userID == "" && input.Account != nil {
			userID = input.Account.UserID
		}
		_, err := r.store.Set(ctx, input.SessionID, storage.Pending{
			UserID:      userID,
			Action:      action,
			IntentID:    intent.IntentID,
			ContextData: intent.Context,
		})
		if err != nil {
			return core.NodeOutput{}, fmt.Errorf("failed to set pending context: %w", err)
		}
	}

	return core.Reply(core.NodeResponse, reply), nil
}

// GetName returns the node name
func (r *ResponseNode) GetName() string {
	return core.NodeResponse
}

// GetType returns the node type
func (r *ResponseNode) GetType() core.NodeType {
	return core.NodeTypeResponse
}
