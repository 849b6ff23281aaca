package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	inboxKeyPrefix = "inbox:"
	inboxTTL       = 7 * 24 * time.Hour
)

// RedisInbox keeps a capped per-user list of notification payloads
type RedisInbox struct {
	rdb      *redis.Client
	maxItems int64
}

// NewRedisInbox creates an inbox that keeps at most maxItems notifications per user
func NewRedisInbox(rdb *redis.Client, maxItems int64) *RedisInbox {
	if maxItems <= 0 {
		maxItems = 200
	}
	return &RedisInbox{rdb: rdb, maxItems: maxItems}
}

// ConnectRedis creates a client and verifies the server is reachable
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func inboxKey(userID uuid.UUID) string {
	return inboxKeyPrefix + userID.String()
}

// Push appends a payload to the user's inbox, dropping the oldest entries past the cap
func (i *RedisInbox) Push(ctx context.Context, userID uuid.UUID, payload []byte) error {
	key := inboxKey(userID)
	_, err := i.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.LTrim(ctx, key, -i.maxItems, -1)
		pipe.Expire(ctx, key, inboxTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push to inbox %s: %w", key, err)
	}
	return nil
}

// Drain returns every pending payload, oldest first, and empties the inbox
func (i *RedisInbox) Drain(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error) {
	key := inboxKey(userID)

	var items *redis.StringSliceCmd
	_, err := i.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain inbox %s: %w", key, err)
	}

	values := items.Val()
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		out = append(out, json.RawMessage(v))
	}
	return out, nil
}
