package storage

import (
	"context"
	"errors"
	"fmt"

	"card_assistant/pkg"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses a redis:// URL and checks the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisContextStore keeps contexts as JSON values whose Redis TTL is the expiry window
type RedisContextStore struct {
	client redis.Cmdable
	opts   options
}

// NewRedisContextStore wraps an existing client
func NewRedisContextStore(client redis.Cmdable, opts ...Option) *RedisContextStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisContextStore{client: client, opts: o}
}

func (r *RedisContextStore) key(sessionID string) string {
	return r.opts.keyPrefix + sessionID
}

// Set stores the context with a fresh TTL, replacing any previous value
func (r *RedisContextStore) Set(ctx context.Context, sessionID string, pending Pending) (*pkg.ConversationContext, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}

	entry := newConversationContext(pending, r.opts.now())
	data, err := sonic.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation context: %w", err)
	}

	if err := r.client.Set(ctx, r.key(sessionID), data, r.opts.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to set conversation context: %w", err)
	}
	return entry, nil
}

// Get reads the context; a missing or expired key yields nil
func (r *RedisContextStore) Get(ctx context.Context, sessionID string) (*pkg.ConversationContext, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation context: %w", err)
	}

	var entry pkg.ConversationContext
	if err := sonic.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation context: %w", err)
	}
	return &entry, nil
}

// Clear deletes the session key
func (r *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation context: %w", err)
	}
	return nil
}
