package nlu

import (
	"fmt"
	"time"

	"card_assistant/pkg"
)

const (
	paymentBaseConfidence      = 0.90
	paymentBalanceConfidence   = 0.92
	paymentOverdueConfidence   = 0.95
	disputeBaseConfidence      = 0.95
	disputeDuplicateConfidence = 0.98
	cardManagementConfidence   = 0.92
	creditLimitConfidence      = 0.88
	accountSecurityConfidence  = 0.96
	statementConfidence        = 0.85
	rewardPointsConfidence     = 0.83
	technicalConfidence        = 0.80
	unrecognizedConfidence     = 0.3

	recentTransactionConfidence = 0.9
	maxRecentTransactions       = 3

	// DuplicateWindow is the largest gap between two identical charges that still counts as a duplicate
	DuplicateWindow = 30 * time.Minute
)

// rule pairs a keyword predicate with the builder for its intent
type rule struct {
	intent   pkg.IntentID
	keywords []string
	build    func(text string, account *pkg.UserAccountContext) pkg.ClassifiedIntent
}

func (r rule) matches(text string) bool {
	return containsAny(text, r.keywords)
}

// defaultRules is evaluated top to bottom and the first match wins. Keyword sets
// overlap ("report", "fraud", "activity", "balance"), so the order is part of the behavior.
func defaultRules() []rule {
	return []rule{
		{
			intent:   pkg.IntentRewardPoints,
			keywords: []string{"points", "rewards", "cashback", "cash back", "redeem", "points balance", "reward program", "miles", "loyalty"},
			build:    buildRewardPoints,
		},
		{
			intent: pkg.IntentTransactionDispute,
			keywords: []string{"dispute", "unauthorized", "fraud", "wrong charge", "didn't make", "did not make",
				"unknown transaction", "suspicious", "report", "charge back", "chargeback"},
			build: buildTransactionDispute,
		},
		{
			intent: pkg.IntentCardManagement,
			keywords: []string{"block card", "lost card", "stolen", "replace card", "new card", "activate",
				"deactivate", "cancel card", "card not working"},
			build: buildCardManagement,
		},
		{
			intent: pkg.IntentCreditLimit,
			keywords: []string{"credit limit", "increase limit", "raise limit", "available credit", "credit line",
				"spending limit", "limit increase"},
			build: buildCreditLimit,
		},
		{
			intent: pkg.IntentAccountSecurity,
			keywords: []string{"fraud alert", "security", "suspicious activity", "hacked", "compromised",
				"unusual activity", "security breach", "protect account"},
			build: buildAccountSecurity,
		},
		{
			intent: pkg.IntentStatementInquiry,
			keywords: []string{"statement", "transaction history", "monthly statement", "download", "transactions",
				"activity", "history", "past purchases"},
			build: buildStatementInquiry,
		},
		{
			intent: pkg.IntentPaymentInquiry,
			keywords: []string{"payment", "due date", "amount due", "outstanding balance", "minimum payment", "pay",
				"owe", "bill", "account balance", "check balance", "current balance", "balance"},
			build: buildPaymentInquiry,
		},
		{
			intent: pkg.IntentTechnicalSupport,
			keywords: []string{"app not working", "login", "password", "technical issue", "website", "mobile app",
				"can't access", "cannot access", "error", "bug", "system down"},
			build: buildTechnicalSupport,
		},
	}
}

// intentInfo is the static presentation data for an intent
type intentInfo struct {
	category    string
	displayName string
	followUps   []string
}

var intentCatalog = map[pkg.IntentID]intentInfo{
	pkg.IntentPaymentInquiry:      {"billing", "Payment Inquiry", []string{"make_payment", "setup_autopay", "view_statement"}},
	pkg.IntentTransactionDispute:  {"disputes", "Transaction Dispute", []string{"report_duplicate", "file_dispute", "view_transactions"}},
	pkg.IntentCardManagement:      {"card_services", "Card Management", []string{"block_card", "replace_card", "activate_card"}},
	pkg.IntentCreditLimit:         {"credit", "Credit Limit", []string{"request_increase", "view_available_credit"}},
	pkg.IntentAccountSecurity:     {"security", "Account Security", []string{"verify_phone", "freeze_account", "review_activity"}},
	pkg.IntentStatementInquiry:    {"statements", "Statement Inquiry", []string{"download_statement", "view_transactions"}},
	pkg.IntentRewardPoints:        {"rewards", "Reward Points", []string{"redeem_points", "view_rewards_catalog"}},
	pkg.IntentTechnicalSupport:    {"technical", "Technical Support", []string{"reset_password", "contact_support"}},
	pkg.IntentUnrecognizedInquiry: {"general", "Unrecognized Inquiry", []string{"show_menu"}},
}

func newIntent(id pkg.IntentID, confidence float64) pkg.ClassifiedIntent {
	info := intentCatalog[id]
	return pkg.ClassifiedIntent{
		IntentID:        id,
		Category:        info.category,
		DisplayName:     info.displayName,
		Confidence:      confidence,
		Entities:        []pkg.Entity{},
		FollowUpActions: append([]string(nil), info.followUps...),
	}
}

func unrecognizedIntent() pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentUnrecognizedInquiry, unrecognizedConfidence)
	intent.Context = "No keyword rule matched the message"
	intent.ResponseTemplate = "I'm not sure I understood. Could you rephrase your question?"
	return intent
}

func buildPaymentInquiry(text string, account *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentPaymentInquiry, paymentBaseConfidence)
	intent.Context = "User is asking about payment information"
	intent.ResponseTemplate = "I can help you with your payment amount, due date and payment options."

	switch {
	case account != nil && account.AccountStatus == pkg.AccountOverdue:
		intent.Confidence = paymentOverdueConfidence
		intent.Context = fmt.Sprintf("Account is OVERDUE with an outstanding balance of $%.2f that was due on %s",
			account.OutstandingBalance, account.DueDate)
		intent.ResponseTemplate = "Your account is overdue. Your balance of {balance} was due on {due_date}."
	case account != nil && account.OutstandingBalance > 0:
		intent.Confidence = paymentBalanceConfidence
		intent.Context = fmt.Sprintf("User has an outstanding balance of $%.2f due on %s",
			account.OutstandingBalance, account.DueDate)
		intent.ResponseTemplate = "Your current balance is {balance}, due on {due_date}."
	}

	intent.Entities = append(intent.Entities, Extract(pkg.EntityAmount, text)...)
	if account != nil {
		intent.Entities = append(intent.Entities, pkg.Entity{
			Type:       pkg.EntityCurrentBalance,
			Value:      fmt.Sprintf("%.2f", account.OutstandingBalance),
			Confidence: 1.0,
		})
	}
	return intent
}

func buildTransactionDispute(text string, account *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentTransactionDispute, disputeBaseConfidence)
	intent.Context = "User wants to dispute a transaction"
	intent.ResponseTemplate = "I'll help you dispute this transaction. Reference: {reference}."

	if account != nil {
		if first, second, ok := FindDuplicateTransactions(account.RecentTransactions); ok {
			intent.Confidence = disputeDuplicateConfidence
			intent.Context = fmt.Sprintf("Potential duplicate charge: %s and %s, $%.2f at %s",
				first.ID, second.ID, first.Amount, first.Description)
			intent.ResponseTemplate = "I found a possible duplicate charge of {amount} at {merchant}. Shall I report it?"
		}
	}

	intent.Entities = append(intent.Entities, Extract(pkg.EntityAmount, text)...)
	intent.Entities = append(intent.Entities, Extract(pkg.EntityMerchant, text)...)
	if account != nil {
		for i, tx := range account.RecentTransactions {
			if i >= maxRecentTransactions {
				break
			}
			intent.Entities = append(intent.Entities, pkg.Entity{
				Type:       pkg.EntityRecentTransaction,
				Value:      fmt.Sprintf("%s: $%.2f %s", tx.ID, tx.Amount, tx.Description),
				Confidence: recentTransactionConfidence,
			})
		}
	}
	return intent
}

func buildCardManagement(text string, _ *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentCardManagement, cardManagementConfidence)
	intent.Entities = append(intent.Entities, Extract(pkg.EntityAction, text)...)
	intent.Context = fmt.Sprintf("User wants to %s their card", intent.Entities[0].Value)
	intent.ResponseTemplate = "I can help you {action} your card."
	return intent
}

func buildCreditLimit(text string, account *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentCreditLimit, creditLimitConfidence)
	intent.Context = "User is asking about their credit limit"
	if account != nil {
		intent.Context = fmt.Sprintf("Credit limit $%.2f with $%.2f available", account.CreditLimit, account.AvailableCredit)
	}
	intent.ResponseTemplate = "Your credit limit is {credit_limit} with {available_credit} available."
	intent.Entities = append(intent.Entities, Extract(pkg.EntityRequestedAmount, text)...)
	return intent
}

func buildAccountSecurity(_ string, _ *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentAccountSecurity, accountSecurityConfidence)
	intent.Context = "User reports a possible security concern on the account"
	intent.ResponseTemplate = "Your account security is our priority. Reference: {reference}."
	return intent
}

func buildStatementInquiry(text string, _ *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentStatementInquiry, statementConfidence)
	intent.Context = "User wants statement or transaction history"
	intent.ResponseTemplate = "Here is your statement information for {month}."
	intent.Entities = append(intent.Entities, Extract(pkg.EntityMonth, text)...)
	return intent
}

func buildRewardPoints(_ string, _ *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentRewardPoints, rewardPointsConfidence)
	intent.Context = "User is asking about rewards"
	intent.ResponseTemplate = "You have {points} reward points available."
	return intent
}

func buildTechnicalSupport(_ string, _ *pkg.UserAccountContext) pkg.ClassifiedIntent {
	intent := newIntent(pkg.IntentTechnicalSupport, technicalConfidence)
	intent.Context = "User is having a technical problem with digital channels"
	intent.ResponseTemplate = "Let's get that fixed. Try these steps: {steps}."
	return intent
}

// FindDuplicateTransactions compares every pair of transactions and returns the first
// pair with identical amount and description posted within DuplicateWindow of each other.
func FindDuplicateTransactions(transactions []pkg.TransactionRecord) (pkg.TransactionRecord, pkg.TransactionRecord, bool) {
	for i := 0; i < len(transactions); i++ {
		for j := i + 1; j < len(transactions); j++ {
			a, b := transactions[i], transactions[j]
			if a.Amount != b.Amount || a.Description != b.Description {
				continue
			}
			gap := a.Timestamp.Sub(b.Timestamp)
			if gap < 0 {
				gap = -gap
			}
			if gap <= DuplicateWindow {
				return a, b, true
			}
		}
	}
	return pkg.TransactionRecord{}, pkg.TransactionRecord{}, false
}
