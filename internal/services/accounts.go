package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"card_assistant/pkg"

	"gopkg.in/yaml.v3"
)

// ErrAccountNotFound is returned when no account exists for a user id
var ErrAccountNotFound = errors.New("account not found")

// AccountService is a mock account-context provider backed by fixtures
type AccountService struct {
	mu          sync.RWMutex
	accounts    map[string]pkg.UserAccountContext
	defaultUser string
	pick        func(n int) int
}

// AccountOption configures an AccountService
type AccountOption func(*AccountService)

// WithDefaultUser sets the account returned when the caller does not know the user
func WithDefaultUser(userID string) AccountOption {
	return func(s *AccountService) {
		s.defaultUser = userID
	}
}

// WithAccounts replaces the built-in fixtures
func WithAccounts(accounts []pkg.UserAccountContext) AccountOption {
	return func(s *AccountService) {
		s.accounts = make(map[string]pkg.UserAccountContext, len(accounts))
		for _, account := range accounts {
			s.accounts[account.UserID] = account
		}
	}
}

// WithPicker overrides the random index source used when there is no default user
func WithPicker(pick func(n int) int) AccountOption {
	return func(s *AccountService) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// NewAccountService creates the service with mock accounts
func NewAccountService(opts ...AccountOption) *AccountService {
	s := &AccountService{pick: rand.Intn}
	WithAccounts(MockAccounts(time.Now()))(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAccountContext returns a copy of the user's account
func (s *AccountService) GetAccountContext(ctx context.Context, userID string) (*pkg.UserAccountContext, error) {
	s.mu.RLock()
	account, ok := s.accounts[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}
	return copyAccount(account), nil
}

// GetDefaultOrRandomAccountContext returns the default user's account, or a random one
func (s *AccountService) GetDefaultOrRandomAccountContext(ctx context.Context) (*pkg.UserAccountContext, error) {
	if s.defaultUser != "" {
		if account, err := s.GetAccountContext(ctx, s.defaultUser); err == nil {
			return account, nil
		}
	}

	ids := s.UserIDs()
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no accounts configured", ErrAccountNotFound)
	}
	return s.GetAccountContext(ctx, ids[s.pick(len(ids))])
}

// UserIDs lists known users in sorted order
func (s *AccountService) UserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyAccount(account pkg.UserAccountContext) *pkg.UserAccountContext {
	account.RecentTransactions = append([]pkg.TransactionRecord(nil), account.RecentTransactions...)
	return &account
}

// accountsFile is the on-disk fixture layout
type accountsFile struct {
	Accounts []pkg.UserAccountContext `yaml:"accounts"`
}

// LoadAccountsFile reads account fixtures from a YAML file
func LoadAccountsFile(path string) ([]pkg.UserAccountContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading accounts file: %w", err)
	}

	var file accountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing accounts file: %w", err)
	}
	for i, account := range file.Accounts {
		if account.UserID == "" {
			return nil, fmt.Errorf("account %d has no user_id", i)
		}
	}
	return file.Accounts, nil
}

// MockAccounts builds the demo fixtures with transactions relative to now.
// user_001 carries a duplicate charge pair so the duplicate flows can be exercised.
func MockAccounts(now time.Time) []pkg.UserAccountContext {
	return []pkg.UserAccountContext{
		{
			UserID:                  "user_001",
			OutstandingBalance:      35000.00,
			DueDate:                 now.AddDate(0, 0, 12).Format("2006-01-02"),
			AvailableCredit:         15000.00,
			CreditLimit:             50000.00,
			AccountStatus:           pkg.AccountActive,
			LastPaymentConfirmation: "PAY-48213",
			RecentTransactions: []pkg.TransactionRecord{
				{ID: "TXN-1001", Amount: 89.99, Timestamp: now.Add(-2 * time.Hour), Type: pkg.TransactionPurchase, Status: "POSTED", Description: "Amazon Marketplace"},
				{ID: "TXN-1002", Amount: 89.99, Timestamp: now.Add(-2*time.Hour + 8*time.Minute), Type: pkg.TransactionPurchase, Status: "POSTED", Description: "Amazon Marketplace"},
				{ID: "TXN-1003", Amount: 42.50, Timestamp: now.Add(-26 * time.Hour), Type: pkg.TransactionPurchase, Status: "POSTED", Description: "City Grocery"},
				{ID: "TXN-1004", Amount: 1000.00, Timestamp: now.Add(-72 * time.Hour), Type: pkg.TransactionPayment, Status: "POSTED", Description: "Online Payment"},
			},
		},
		{
			UserID:                  "user_002",
			OutstandingBalance:      1280.40,
			DueDate:                 now.AddDate(0, 0, -3).Format("2006-01-02"),
			AvailableCredit:         3719.60,
			CreditLimit:             5000.00,
			AccountStatus:           pkg.AccountOverdue,
			LastPaymentConfirmation: "PAY-31877",
			RecentTransactions: []pkg.TransactionRecord{
				{ID: "TXN-2001", Amount: 320.00, Timestamp: now.Add(-30 * time.Hour), Type: pkg.TransactionPurchase, Status: "POSTED", Description: "Electronics Hub"},
				{ID: "TXN-2002", Amount: 25.00, Timestamp: now.Add(-5 * time.Hour), Type: pkg.TransactionRefund, Status: "PENDING", Description: "Electronics Hub"},
			},
		},
		{
			UserID:             "user_003",
			OutstandingBalance: 0,
			DueDate:            now.AddDate(0, 0, 20).Format("2006-01-02"),
			AvailableCredit:    10000.00,
			CreditLimit:        10000.00,
			AccountStatus:      pkg.AccountActive,
		},
	}
}
