package nlu

import (
	"context"

	"card_assistant/internal/logger"
	"card_assistant/pkg"
)

// AccountProvider supplies account data for classification and replies
type AccountProvider interface {
	GetAccountContext(ctx context.Context, userID string) (*pkg.UserAccountContext, error)
	GetDefaultOrRandomAccountContext(ctx context.Context) (*pkg.UserAccountContext, error)
}

// EnhanceContext makes sure classification sees a detailed account context.
// A context that already has balance or transaction detail is returned as is.
// A thin context is refreshed by user id; a missing one (or a failed refresh)
// falls back to the provider's default account. Provider errors are never fatal:
// the best context available is returned, possibly nil.
func EnhanceContext(ctx context.Context, provider AccountProvider, account *pkg.UserAccountContext) *pkg.UserAccountContext {
	if account.HasDetail() || provider == nil {
		return account
	}

	if account != nil && account.UserID != "" {
		fuller, err := provider.GetAccountContext(ctx, account.UserID)
		if err == nil && fuller != nil {
			return fuller
		}
		logger.Warn().Err(err).Str("user_id", account.UserID).Msg("account refresh failed, using default account")
	}

	fallback, err := provider.GetDefaultOrRandomAccountContext(ctx)
	if err != nil || fallback == nil {
		logger.Warn().Err(err).Msg("no default account context available")
		return account
	}
	return fallback
}
