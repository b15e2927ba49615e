package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"card_assistant/internal/core"
	"card_assistant/internal/services"
	"card_assistant/internal/storage"
	"card_assistant/pkg"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGreeting(t *testing.T) {
	for _, text := range []string{"hello", "Hi there", "HEY!", "Good morning team", "greetings", "Greeting from Bob"} {
		assert.True(t, IsGreeting(text), text)
	}
	for _, text := range []string{"say hello", "well, hi", "good night", ""} {
		assert.False(t, IsGreeting(text), text)
	}
	// prefix match: any message starting with a greeting word counts
	assert.True(t, IsGreeting("history of my payments"))
}

type fixedGreeter struct{}

func (fixedGreeter) TimeOfDay(time.Time) string { return "evening" }
func (fixedGreeter) WeatherPhrase(context.Context) string { return "It's a bit chilly today" }

func TestGreetingNodeUsesProvider(t *testing.T) {
	node := NewGreetingNode(storage.NewMemoryContextStore(), fixedGreeter{}, time.Now)

	output, err := node.Execute(context.Background(), core.NodeInput{SessionID: "s1", UserMessage: "good evening"})
	require.NoError(t, err)
	assert.True(t, output.Complete)
	assert.Equal(t, "Good evening! It's a bit chilly today. How can I help you with your card today?", output.Data[core.KeyResponse])

	passed, err := node.Execute(context.Background(), core.NodeInput{SessionID: "s1", UserMessage: "block my card"})
	require.NoError(t, err)
	assert.False(t, passed.Complete)
}

func TestGreetingNodeWithWeatherService(t *testing.T) {
	node := NewGreetingNode(storage.NewMemoryContextStore(), services.NewWeatherService(), func() time.Time {
		return time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	})

	output, err := node.Execute(context.Background(), core.NodeInput{SessionID: "s1", UserMessage: "hi"})
	require.NoError(t, err)
	assert.Contains(t, output.Data[core.KeyResponse], "Good afternoon! ")
}

func TestLookupTools(t *testing.T) {
	ctx := context.Background()
	tools, err := GetTools(services.NewAccountService())
	require.NoError(t, err)
	require.Len(t, tools, 3)

	for name, tl := range tools {
		info, err := tl.Info(ctx)
		require.NoError(t, err)
		assert.Equal(t, name, info.Name)
		assert.NotEmpty(t, info.Desc)
	}

	var balance BalanceResult
	require.NoError(t, invokeTool(ctx, tools[ToolBalanceLookup], AccountLookup{UserID: "user_002"}, &balance))
	assert.Equal(t, 1280.40, balance.OutstandingBalance)
	assert.Equal(t, 64.02, balance.MinimumPayment)
	assert.Equal(t, string(pkg.AccountOverdue), balance.AccountStatus)

	var credit CreditResult
	require.NoError(t, invokeTool(ctx, tools[ToolCreditLookup], AccountLookup{UserID: "user_003"}, &credit))
	assert.Equal(t, 10000.0, credit.AvailableCredit)
	assert.Zero(t, credit.UsedCredit)

	var duplicate DuplicateResult
	require.NoError(t, invokeTool(ctx, tools[ToolDuplicateCheck], AccountLookup{UserID: "user_002"}, &duplicate))
	assert.False(t, duplicate.Found)

	err = invokeTool(ctx, tools[ToolBalanceLookup], AccountLookup{UserID: "nobody"}, &balance)
	assert.Error(t, err)
}

func TestShortcutLookupFailureIsNonFatal(t *testing.T) {
	tools, err := GetTools(services.NewAccountService())
	require.NoError(t, err)
	delete(tools, ToolBalanceLookup)
	node := NewShortcutNode(tools, "user_001", time.Now)

	output, err := node.Execute(context.Background(), core.NodeInput{UserMessage: "check balance"})
	require.NoError(t, err)
	assert.True(t, output.Complete)
	assert.Equal(t, ShortcutUnavailableReply, output.Data[core.KeyResponse])
	assert.Error(t, output.Error)

	noTools := NewShortcutNode(map[string]tool.InvokableTool{}, "user_001", time.Now)
	output, err = noTools.Execute(context.Background(), core.NodeInput{UserMessage: "get updated credit balance"})
	require.NoError(t, err)
	assert.ErrorContains(t, output.Error, "not registered")
}

type brokenStore struct{ storage.ContextStore }

func (brokenStore) Get(context.Context, string) (*pkg.ConversationContext, error) {
	return nil, errors.New("redis down")
}

func (brokenStore) Clear(context.Context, string) error {
	return errors.New("redis down")
}

func TestNodesPropagateStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := brokenStore{}

	_, err := NewFollowUpNode(store).Execute(ctx, core.NodeInput{SessionID: "s1", UserMessage: "yes"})
	assert.ErrorContains(t, err, "redis down")

	_, err = NewGreetingNode(store, fixedGreeter{}, time.Now).Execute(ctx, core.NodeInput{SessionID: "s1", UserMessage: "hello"})
	assert.ErrorContains(t, err, "redis down")

	_, err = NewFallbackNode(store).Execute(ctx, core.NodeInput{SessionID: "s1"})
	assert.ErrorContains(t, err, "redis down")

	_, err = NewResponseNode(nil, store).Execute(ctx, core.NodeInput{SessionID: "s1"})
	assert.Error(t, err)
}
