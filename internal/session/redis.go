package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed session store.
//
// Histories live in one sorted set per thread, scored by append time so
// ZRANGE returns turns in chronological order:
//
//	Key:   "<prefix>:<thread_id>:turns"
//	Score: nanosecond timestamp plus an in-batch offset
//	Value: JSON(turn)
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a session store on an existing Redis client.
// ttl of zero means histories never expire.
func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "notewire:session"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) threadKey(threadID string) string {
	return fmt.Sprintf("%s:%s:turns", s.keyPrefix, threadID)
}

// Append stores turns in a single MULTI/EXEC transaction so the whole batch
// commits or nothing does.
func (s *RedisStore) Append(ctx context.Context, threadID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	base := float64(time.Now().UnixNano())
	members := make([]redis.Z, 0, len(turns))
	for i, turn := range turns {
		value, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to serialize turn: %w", err)
		}
		members = append(members, redis.Z{
			// In-batch offset keeps relative order for turns appended
			// within the same nanosecond.
			Score:  base + float64(i),
			Member: string(value),
		})
	}

	key := s.threadKey(threadID)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, members...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append turns: %w", err)
	}
	return nil
}

// Load returns the full history, oldest first.
func (s *RedisStore) Load(ctx context.Context, threadID string) ([]Turn, error) {
	values, err := s.client.ZRange(ctx, s.threadKey(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	turns := make([]Turn, 0, len(values))
	for _, value := range values {
		var turn Turn
		if err := json.Unmarshal([]byte(value), &turn); err != nil {
			continue // skip malformed entries
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear removes the history for a thread.
func (s *RedisStore) Clear(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, s.threadKey(threadID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
