package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"card_assistant/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func paymentPending() Pending {
	return Pending{
		UserID:      "user_001",
		Action:      pkg.ActionPaymentConfirmation,
		IntentID:    pkg.IntentPaymentInquiry,
		ContextData: "balance 35000.00",
	}
}

func TestMemoryContextStoreSetGet(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryContextStore(WithClock(clock.Now))

	saved, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), saved.CreatedAt)
	assert.Equal(t, ExpectedReplies(), saved.ExpectedResponses)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pkg.ActionPaymentConfirmation, got.LastAction)
	assert.Equal(t, pkg.IntentPaymentInquiry, got.LastIntentID)
	assert.Equal(t, "user_001", got.UserID)
	assert.Equal(t, "balance 35000.00", got.ContextData)
}

func TestMemoryContextStoreGetIsNonDestructive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore()

	_, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)

	first, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, store.Clear(ctx, "s1"))
	cleared, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cleared)
}

func TestMemoryContextStoreLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore()

	_, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)
	_, err = store.Set(ctx, "s1", Pending{Action: pkg.ActionSecurityPhoneConfirmation, IntentID: pkg.IntentAccountSecurity})
	require.NoError(t, err)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, pkg.ActionSecurityPhoneConfirmation, got.LastAction)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryContextStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryContextStore(WithClock(clock.Now))

	_, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)

	clock.Advance(DefaultContextTTL)
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, got, "exactly five minutes is still inside the window")

	clock.Advance(time.Second)
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, store.Len())
}

func TestMemoryContextStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore()

	saved, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)
	saved.ContextData = "mutated"
	saved.ExpectedResponses[0] = "mutated"

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "balance 35000.00", got.ContextData)
	assert.Equal(t, "yes", got.ExpectedResponses[0])
}

func TestMemoryContextStoreRejectsEmptySession(t *testing.T) {
	_, err := NewMemoryContextStore().Set(context.Background(), "", paymentPending())
	assert.Error(t, err)
}

func TestMemoryContextStoreConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("session-%d", i)
			_, err := store.Set(ctx, session, Pending{ContextData: session, Action: pkg.ActionCreditLimitRequest})
			assert.NoError(t, err)
			got, err := store.Get(ctx, session)
			assert.NoError(t, err)
			if assert.NotNil(t, got) {
				assert.Equal(t, session, got.ContextData)
			}
			if i%2 == 0 {
				assert.NoError(t, store.Clear(ctx, session))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, store.Len())
}
