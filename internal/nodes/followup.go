package nodes

import (
	"context"
	"fmt"

	"card_assistant/internal/core"
	"card_assistant/internal/logger"
	"card_assistant/internal/storage"
	"card_assistant/pkg"
)

const anythingElse = " Is there anything else I can help you with?"

// UnknownFollowUpReply answers a pending context whose action tag is not recognized
const UnknownFollowUpReply = "I'm not sure how to handle that. Could you tell me a bit more about what you need?"

type followUpReplies struct {
	positive string
	negative string
	// offerMore sets a FURTHER_ASSISTANCE context after the negative reply
	offerMore bool
}

var followUps = map[pkg.PendingAction]followUpReplies{
	pkg.ActionPaymentConfirmation: {
		positive: "Great! To set up your payment, open the mobile app and go to Payments > Make a payment. " +
			"You can pay the full balance, the minimum payment or a custom amount, and payments made before 5 PM post the same day.",
		negative:  "No problem, you can make a payment any time before the due date." + anythingElse,
		offerMore: true,
	},
	pkg.ActionCreditLimitRequest: {
		positive:  "I've submitted your credit limit increase request. You'll receive a decision within 2 business days.",
		negative:  "Okay, I won't submit a credit limit request." + anythingElse,
		offerMore: true,
	},
	pkg.ActionDuplicateReportConfirmation: {
		positive:  "I've reported the charge to our disputes team. The disputed amount will be credited back within 3 to 5 business days.",
		negative:  "Understood, I won't report the charge." + anythingElse,
		offerMore: true,
	},
	pkg.ActionSecurityPhoneConfirmation: {
		positive:  "A verification code has been sent to the phone number on file. Please enter it in the app to confirm your identity.",
		negative:  "Okay. For your safety, please call the number on the back of your card to verify your identity." + anythingElse,
		offerMore: true,
	},
	pkg.ActionFurtherAssistance: {
		positive: "Sure! What else can I help you with?",
		negative: "Thank you for contacting us. Have a great day!",
	},
}

// FollowUpNode resolves a simple reply against the session's pending context
type FollowUpNode struct {
	store storage.ContextStore
}

// NewFollowUpNode creates a follow-up node
func NewFollowUpNode(store storage.ContextStore) *FollowUpNode {
	return &FollowUpNode{store: store}
}

// Execute answers only when a context is pending and the utterance is a simple response.
// The context is always consumed, whichever branch is taken.
func (f *FollowUpNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if !storage.IsSimpleResponse(input.UserMessage) {
		return core.Pass(), nil
	}

	pending, err := f.store.Get(ctx, input.SessionID)
	if err != nil {
		return core.NodeOutput{}, fmt.Errorf("failed to read context: %w", err)
	}
	if pending == nil {
		return core.Pass(), nil
	}

	if err := f.store.Clear(ctx, input.SessionID); err != nil {
		return core.NodeOutput{}, fmt.Errorf("failed to clear context: %w", err)
	}

	replies, known := followUps[pending.LastAction]
	if !known {
		logger.Warn().Str("session_id", input.SessionID).Str("action", string(pending.LastAction)).Msg("unknown pending action")
		return core.Reply(core.NodeFollowUp, UnknownFollowUpReply), nil
	}

	positive := storage.IsPositiveResponse(input.UserMessage)
	logger.Debug().
		Str("session_id", input.SessionID).
		Str("action", string(pending.LastAction)).
		Bool("positive", positive).
		Msg("follow-up resolved")

	if positive {
		return core.Reply(core.NodeFollowUp, replies.positive), nil
	}

	if replies.offerMore {
		_, err := f.store.Set(ctx, input.SessionID, storage.Pending{
			UserID:      pending.UserID,
			Action:      pkg.ActionFurtherAssistance,
			IntentID:    pending.LastIntentID,
			ContextData: "Offered further assistance after declined " + string(pending.LastAction),
		})
		if err != nil {
			return core.NodeOutput{}, fmt.Errorf("failed to set further assistance context: %w", err)
		}
	}
	return core.Reply(core.NodeFollowUp, replies.negative), nil
}

// GetName returns the node name
func (f *FollowUpNode) GetName() string {
	return core.NodeFollowUp
}

// GetType returns the node type
func (f *FollowUpNode) GetType() core.NodeType {
	return core.NodeTypeFollowUp
}
