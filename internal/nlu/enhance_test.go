package nlu

import (
	"context"
	"errors"
	"testing"

	"card_assistant/pkg"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	accounts    map[string]*pkg.UserAccountContext
	fallback    *pkg.UserAccountContext
	lookups     int
	defaultHits int
}

func (s *stubProvider) GetAccountContext(_ context.Context, userID string) (*pkg.UserAccountContext, error) {
	s.lookups++
	if account, ok := s.accounts[userID]; ok {
		return account, nil
	}
	return nil, errors.New("account not found")
}

func (s *stubProvider) GetDefaultOrRandomAccountContext(_ context.Context) (*pkg.UserAccountContext, error) {
	s.defaultHits++
	if s.fallback == nil {
		return nil, errors.New("no accounts")
	}
	return s.fallback, nil
}

func TestEnhanceContextKeepsDetailedAccount(t *testing.T) {
	provider := &stubProvider{}
	account := activeAccount(100)

	assert.Same(t, account, EnhanceContext(context.Background(), provider, account))
	assert.Zero(t, provider.lookups)
	assert.Zero(t, provider.defaultHits)
}

func TestEnhanceContextRefreshesThinAccount(t *testing.T) {
	full := activeAccount(250)
	provider := &stubProvider{accounts: map[string]*pkg.UserAccountContext{"user_test": full}}

	got := EnhanceContext(context.Background(), provider, &pkg.UserAccountContext{UserID: "user_test"})

	assert.Same(t, full, got)
	assert.Equal(t, 1, provider.lookups)
}

func TestEnhanceContextFallsBackToDefault(t *testing.T) {
	fallback := activeAccount(35000)
	provider := &stubProvider{fallback: fallback}

	assert.Same(t, fallback, EnhanceContext(context.Background(), provider, nil))
	assert.Same(t, fallback, EnhanceContext(context.Background(), provider, &pkg.UserAccountContext{UserID: "missing"}))
	assert.Equal(t, 2, provider.defaultHits)
}

func TestEnhanceContextReturnsOriginalWhenNothingAvailable(t *testing.T) {
	thin := &pkg.UserAccountContext{UserID: "missing"}

	assert.Same(t, thin, EnhanceContext(context.Background(), &stubProvider{}, thin))
	assert.Nil(t, EnhanceContext(context.Background(), &stubProvider{}, nil))
	assert.Same(t, thin, EnhanceContext(context.Background(), nil, thin))
}
