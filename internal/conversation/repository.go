package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "conversation:"

// DefaultTTL is how long an idle transcript is kept
const DefaultTTL = 40 * time.Minute

// History holds the transcript of one session
type History struct {
	Messages []*schema.Message `json:"messages"`
}

// Repository persists session transcripts
type Repository interface {
	Load(ctx context.Context, sessionID string) (*History, error)
	Save(ctx context.Context, sessionID string, history *History) error
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error
}

// RedisRepository stores each transcript as one JSON value with a sliding TTL
type RedisRepository struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisRepository wraps an existing client
func NewRedisRepository(client redis.Cmdable, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*History, error) {
	key := keyPrefix + sessionID
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &History{Messages: []*schema.Message{}}, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var history History
	if err := sonic.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	// Refresh TTL
	r.client.Expire(ctx, key, r.ttl)
	return &history, nil
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, history *History) error {
	data, err := sonic.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return r.client.Set(ctx, keyPrefix+sessionID, data, r.ttl).Err()
}

func (r *RedisRepository) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	history, err := r.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	history.Messages = append(history.Messages, message)
	return r.Save(ctx, sessionID, history)
}

// MemoryRepository keeps transcripts in process; used when Redis is not configured
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string][]*schema.Message
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string][]*schema.Message)}
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string) (*History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	messages := append([]*schema.Message{}, m.sessions[sessionID]...)
	return &History{Messages: messages}, nil
}

func (m *MemoryRepository) Save(_ context.Context, sessionID string, history *History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append([]*schema.Message(nil), history.Messages...)
	return nil
}

func (m *MemoryRepository) AddMessage(_ context.Context, sessionID string, message *schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], message)
	return nil
}
