package nodes

import (
	"context"
	"fmt"

	"card_assistant/internal/nlu"
	"card_assistant/internal/response"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// Tool names
const (
	ToolBalanceLookup  = "balance_lookup"
	ToolCreditLookup   = "credit_lookup"
	ToolDuplicateCheck = "duplicate_check"
)

// AccountLookup is the argument shared by every lookup tool
type AccountLookup struct {
	UserID string `json:"user_id"`
}

// BalanceResult is returned by balance_lookup
type BalanceResult struct {
	UserID             string  `json:"user_id"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	MinimumPayment     float64 `json:"minimum_payment"`
	DueDate            string  `json:"due_date"`
	AccountStatus      string  `json:"account_status"`
}

// CreditResult is returned by credit_lookup
type CreditResult struct {
	UserID          string  `json:"user_id"`
	CreditLimit     float64 `json:"credit_limit"`
	AvailableCredit float64 `json:"available_credit"`
	UsedCredit      float64 `json:"used_credit"`
}

// DuplicateResult is returned by duplicate_check
type DuplicateResult struct {
	UserID      string  `json:"user_id"`
	Found       bool    `json:"found"`
	FirstID     string  `json:"first_id,omitempty"`
	SecondID    string  `json:"second_id,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Description string  `json:"description,omitempty"`
}

// NewBalanceLookupTool looks up balance and minimum payment for a user
func NewBalanceLookupTool(accounts nlu.AccountProvider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolBalanceLookup, "Look up the outstanding balance, minimum payment and due date of a card account",
		func(ctx context.Context, in AccountLookup) (BalanceResult, error) {
			account, err := accounts.GetAccountContext(ctx, in.UserID)
			if err != nil {
				return BalanceResult{}, err
			}
			return BalanceResult{
				UserID:             account.UserID,
				OutstandingBalance: account.OutstandingBalance,
				MinimumPayment:     response.MinimumPayment(account.OutstandingBalance),
				DueDate:            account.DueDate,
				AccountStatus:      string(account.AccountStatus),
			}, nil
		})
}

// NewCreditLookupTool looks up the credit line of a user
func NewCreditLookupTool(accounts nlu.AccountProvider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolCreditLookup, "Look up the credit limit and available credit of a card account",
		func(ctx context.Context, in AccountLookup) (CreditResult, error) {
			account, err := accounts.GetAccountContext(ctx, in.UserID)
			if err != nil {
				return CreditResult{}, err
			}
			return CreditResult{
				UserID:          account.UserID,
				CreditLimit:     account.CreditLimit,
				AvailableCredit: account.AvailableCredit,
				UsedCredit:      account.CreditLimit - account.AvailableCredit,
			}, nil
		})
}

// NewDuplicateCheckTool searches a user's recent transactions for a duplicate charge
func NewDuplicateCheckTool(accounts nlu.AccountProvider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolDuplicateCheck, "Check recent card transactions for a duplicate charge",
		func(ctx context.Context, in AccountLookup) (DuplicateResult, error) {
			account, err := accounts.GetAccountContext(ctx, in.UserID)
			if err != nil {
				return DuplicateResult{}, err
			}
			result := DuplicateResult{UserID: account.UserID}
			if first, second, ok := nlu.FindDuplicateTransactions(account.RecentTransactions); ok {
				result.Found = true
				result.FirstID = first.ID
				result.SecondID = second.ID
				result.Amount = first.Amount
				result.Description = first.Description
			}
			return result, nil
		})
}

// GetTools returns all lookup tools keyed by name
func GetTools(accounts nlu.AccountProvider) (map[string]tool.InvokableTool, error) {
	constructors := map[string]func(nlu.AccountProvider) (tool.InvokableTool, error){
		ToolBalanceLookup:  NewBalanceLookupTool,
		ToolCreditLookup:   NewCreditLookupTool,
		ToolDuplicateCheck: NewDuplicateCheckTool,
	}

	tools := make(map[string]tool.InvokableTool, len(constructors))
	for name, newTool := range constructors {
		t, err := newTool(accounts)
		if err != nil {
			return nil, fmt.Errorf("failed to create tool %s: %w", name, err)
		}
		tools[name] = t
	}
	return tools, nil
}

// invokeTool runs a tool with JSON arguments and decodes its JSON result into out
func invokeTool(ctx context.Context, t tool.InvokableTool, args any, out any) error {
	arguments, err := sonic.MarshalString(args)
	if err != nil {
		return fmt.Errorf("failed to marshal tool arguments: %w", err)
	}

	result, err := t.InvokableRun(ctx, arguments)
	if err != nil {
		return err
	}

	if err := sonic.UnmarshalString(result, out); err != nil {
		return fmt.Errorf("failed to decode tool result: %w", err)
	}
	return nil
}
