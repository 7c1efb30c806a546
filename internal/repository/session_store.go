package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore keeps the session-scoped history list, most recent first.
// Items are stored encoded so callers can never mutate a recorded item.
type SessionStore interface {
	Prepend(ctx context.Context, sessionID string, item *models.HistoryItem) error
	List(ctx context.Context, sessionID string) ([]*models.HistoryItem, error)
	Clear(ctx context.Context, sessionID string) error
}

type memorySession struct {
	items   [][]byte
	touched time.Time
}

// MemorySessionStore holds session history in process memory
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates an in-process store. Items are only removed
// by Clear; sessions idle for longer than ttl are dropped by Sweep.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Prepend(ctx context.Context, sessionID string, item *models.HistoryItem) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode history item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &memorySession{}
		s.sessions[sessionID] = sess
	}
	sess.items = append([][]byte{b}, sess.items...)
	sess.touched = s.now()
	return nil
}

func (s *MemorySessionStore) List(ctx context.Context, sessionID string) ([]*models.HistoryItem, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	var raw [][]byte
	if ok {
		raw = append(raw, sess.items...)
	}
	s.mu.Unlock()

	return decodeItems(raw)
}

func (s *MemorySessionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Sweep drops sessions idle for longer than the TTL and reports how many
func (s *MemorySessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RedisSessionStore keeps session history in a redis list per session
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionStore parses redisURL and pings the server
func NewRedisSessionStore(ctx context.Context, redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis session store connected", zap.String("addr", opts.Addr))
	return NewRedisSessionStoreWithClient(client, ttl, logger), nil
}

// NewRedisSessionStoreWithClient wraps an existing client
func NewRedisSessionStoreWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl, logger: logger}
}

func sessionKey(sessionID string) string {
	return "suraksha:session:" + sessionID + ":history"
}

func (s *RedisSessionStore) Prepend(ctx context.Context, sessionID string, item *models.HistoryItem) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode history item: %w", err)
	}

	key := sessionKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, b)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append session history: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) List(ctx context.Context, sessionID string) ([]*models.HistoryItem, error) {
	vals, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}

	raw := make([][]byte, len(vals))
	for i, v := range vals {
		raw[i] = []byte(v)
	}
	return decodeItems(raw)
}

func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session history: %w", err)
	}
	return nil
}

// Close closes the redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func decodeItems(raw [][]byte) ([]*models.HistoryItem, error) {
	items := make([]*models.HistoryItem, 0, len(raw))
	for _, b := range raw {
		var item models.HistoryItem
		if err := json.Unmarshal(b, &item); err != nil {
			return nil, fmt.Errorf("failed to decode history item: %w", err)
		}
		items = append(items, &item)
	}
	return items, nil
}
