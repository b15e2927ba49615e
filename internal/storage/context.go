package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"card_assistant/pkg"
)

// DefaultContextTTL is how long a pending follow-up stays answerable
const DefaultContextTTL = 5 * time.Minute

// Pending describes a follow-up the assistant is waiting for
type Pending struct {
	UserID      string
	Action      pkg.PendingAction
	IntentID    pkg.IntentID
	ContextData string
}

// ContextStore keeps at most one pending ConversationContext per session.
// Get is non-destructive; consuming a context is the caller's job via Clear.
// Expired and unknown sessions both read as (nil, nil).
type ContextStore interface {
	Set(ctx context.Context, sessionID string, pending Pending) (*pkg.ConversationContext, error)
	Get(ctx context.Context, sessionID string) (*pkg.ConversationContext, error)
	Clear(ctx context.Context, sessionID string) error
}

// Option configures a context store
type Option func(*options)

type options struct {
	ttl       time.Duration
	now       func() time.Time
	keyPrefix string
}

func defaultOptions() options {
	return options{
		ttl:       DefaultContextTTL,
		now:       time.Now,
		keyPrefix: "context:",
	}
}

// WithTTL overrides the expiry window
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock injects the time source used for CreatedAt and expiry checks
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithKeyPrefix sets the Redis key prefix
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

func newConversationContext(pending Pending, createdAt time.Time) *pkg.ConversationContext {
	return &pkg.ConversationContext{
		UserID:            pending.UserID,
		LastAction:        pending.Action,
		LastIntentID:      pending.IntentID,
		ContextData:       pending.ContextData,
		ExpectedResponses: ExpectedReplies(),
		CreatedAt:         createdAt,
	}
}

func cloneContext(c *pkg.ConversationContext) *pkg.ConversationContext {
	if c == nil {
		return nil
	}
	clone := *c
	clone.ExpectedResponses = append([]string(nil), c.ExpectedResponses...)
	return &clone
}

// MemoryContextStore is an in-process ContextStore guarded by a RWMutex
type MemoryContextStore struct {
	mu       sync.RWMutex
	contexts map[string]*pkg.ConversationContext
	opts     options
}

// NewMemoryContextStore creates an empty in-memory store
func NewMemoryContextStore(opts ...Option) *MemoryContextStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryContextStore{
		contexts: make(map[string]*pkg.ConversationContext),
		opts:     o,
	}
}

// Set replaces whatever context the session had
func (m *MemoryContextStore) Set(_ context.Context, sessionID string, pending Pending) (*pkg.ConversationContext, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}

	entry := newConversationContext(pending, m.opts.now())

	m.mu.Lock()
	m.contexts[sessionID] = entry
	m.mu.Unlock()

	return cloneContext(entry), nil
}

// Get returns a copy of the session's context, evicting it once older than the TTL
func (m *MemoryContextStore) Get(_ context.Context, sessionID string) (*pkg.ConversationContext, error) {
	m.mu.RLock()
	entry, exists := m.contexts[sessionID]
	m.mu.RUnlock()
	if !exists {
		return nil, nil
	}

	if m.opts.now().Sub(entry.CreatedAt) > m.opts.ttl {
		m.mu.Lock()
		// another writer may have replaced it in the meantime
		if current, ok := m.contexts[sessionID]; ok && current == entry {
			delete(m.contexts, sessionID)
		}
		m.mu.Unlock()
		return nil, nil
	}

	return cloneContext(entry), nil
}

// Clear drops the session's context; clearing an unknown session is a no-op
func (m *MemoryContextStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.contexts, sessionID)
	m.mu.Unlock()
	return nil
}

// Len reports how many contexts are held, expired ones included until read
func (m *MemoryContextStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}
