package pkg

import (
	"time"
)

// Core types for the card support assistant

// IntentID identifies a classified customer intent
type IntentID string

const (
	IntentPaymentInquiry      IntentID = "PAYMENT_INQUIRY"
	IntentTransactionDispute  IntentID = "TRANSACTION_DISPUTE"
	IntentCardManagement      IntentID = "CARD_MANAGEMENT"
	IntentCreditLimit         IntentID = "CREDIT_LIMIT"
	IntentAccountSecurity     IntentID = "ACCOUNT_SECURITY"
	IntentStatementInquiry    IntentID = "STATEMENT_INQUIRY"
	IntentRewardPoints        IntentID = "REWARD_POINTS"
	IntentTechnicalSupport    IntentID = "TECHNICAL_SUPPORT"
	IntentUnrecognizedInquiry IntentID = "UNRECOGNIZED_INQUIRY"
	IntentGeneral             IntentID = "GENERAL"
)

// EntityType is the kind of fragment pulled out of an utterance or account data
type EntityType string

const (
	EntityAmount            EntityType = "AMOUNT"
	EntityMerchant          EntityType = "MERCHANT"
	EntityMonth             EntityType = "MONTH"
	EntityAction            EntityType = "ACTION"
	EntityCurrentBalance    EntityType = "CURRENT_BALANCE"
	EntityRequestedAmount   EntityType = "REQUESTED_AMOUNT"
	EntityRecentTransaction EntityType = "RECENT_TRANSACTION"
)

// Entity represents an extracted entity
type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
}

// ClassifiedIntent is the immutable result of one classification call
type ClassifiedIntent struct {
	IntentID         IntentID `json:"intent_id"`
	Category         string   `json:"category"`
	DisplayName      string   `json:"display_name"`
	Confidence       float64  `json:"confidence"`
	Entities         []Entity `json:"entities"`
	Context          string   `json:"context"`
	ResponseTemplate string   `json:"response_template"`
	FollowUpActions  []string `json:"follow_up_actions"`
}

// EntitiesOfType returns the entities matching entityType in extraction order
func (c *ClassifiedIntent) EntitiesOfType(entityType EntityType) []Entity {
	var result []Entity
	for _, entity := range c.Entities {
		if entity.Type == entityType {
			result = append(result, entity)
		}
	}
	return result
}

// FirstEntity returns the first entity of entityType, if any
func (c *ClassifiedIntent) FirstEntity(entityType EntityType) (Entity, bool) {
	for _, entity := range c.Entities {
		if entity.Type == entityType {
			return entity, true
		}
	}
	return Entity{}, false
}

// ----------------------------------------------------
// ================ Account data ================

// AccountStatus is the standing of a card account
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountOverdue   AccountStatus = "OVERDUE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

// TransactionType classifies a card transaction
type TransactionType string

const (
	TransactionPayment  TransactionType = "PAYMENT"
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionRefund   TransactionType = "REFUND"
)

// TransactionRecord is a single posted or pending card transaction
type TransactionRecord struct {
	ID          string          `json:"id" yaml:"id"`
	Amount      float64         `json:"amount" yaml:"amount"`
	Timestamp   time.Time       `json:"timestamp" yaml:"timestamp"`
	Type        TransactionType `json:"type" yaml:"type"`
	Status      string          `json:"status" yaml:"status"`
	Description string          `json:"description" yaml:"description"`
}

// UserAccountContext is read-only account data supplied by the account provider
type UserAccountContext struct {
	UserID                  string              `json:"user_id" yaml:"user_id"`
	OutstandingBalance      float64             `json:"outstanding_balance" yaml:"outstanding_balance"`
	DueDate                 string              `json:"due_date" yaml:"due_date"`
	AvailableCredit         float64             `json:"available_credit" yaml:"available_credit"`
	CreditLimit             float64             `json:"credit_limit" yaml:"credit_limit"`
	AccountStatus           AccountStatus       `json:"account_status" yaml:"account_status"`
	LastPaymentConfirmation string              `json:"last_payment_confirmation" yaml:"last_payment_confirmation"`
	RecentTransactions      []TransactionRecord `json:"recent_transactions" yaml:"recent_transactions"`
}

// HasDetail reports whether the context carries balance or transaction data
func (a *UserAccountContext) HasDetail() bool {
	if a == nil {
		return false
	}
	return len(a.RecentTransactions) > 0 || a.OutstandingBalance != 0 || a.CreditLimit != 0
}

// ----------------------------------------------------
// ================ Dialogue state ================

// PendingAction tags what kind of yes/no follow-up the assistant is waiting for
type PendingAction string

const (
	ActionPaymentConfirmation         PendingAction = "PAYMENT_CONFIRMATION"
	ActionCreditLimitRequest          PendingAction = "CREDIT_LIMIT_REQUEST"
	ActionDuplicateReportConfirmation PendingAction = "DUPLICATE_REPORT_CONFIRMATION"
	ActionSecurityPhoneConfirmation   PendingAction = "SECURITY_PHONE_CONFIRMATION"
	ActionFurtherAssistance           PendingAction = "FURTHER_ASSISTANCE"
)

// ConversationContext is the single pending follow-up for a session
type ConversationContext struct {
	UserID            string        `json:"user_id"`
	LastAction        PendingAction `json:"last_action"`
	LastIntentID      IntentID      `json:"last_intent_id"`
	ContextData       string        `json:"context_data"`
	ExpectedResponses []string      `json:"expected_responses"`
	CreatedAt         time.Time     `json:"created_at"`
}

// ----------------------------------------------------
// ================ Processor I/O ================

// ProcessorInput is one inbound utterance
type ProcessorInput struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id,omitempty"`
	UserMessage string `json:"user_message"`
}

// ProcessorOutput is the reply and resulting dialogue state for one utterance
type ProcessorOutput struct {
	Response       string               `json:"response"`
	Branch         string               `json:"branch"`
	Intent         *ClassifiedIntent    `json:"intent,omitempty"`
	UpdatedContext *ConversationContext `json:"updated_context,omitempty"`
	ProcessingTime int64                `json:"processing_time_ms"`
	Metadata       map[string]any       `json:"metadata"`
}
