package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opsx/collab/server/internal/metrics"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

const messageTTL = 24 * time.Hour

// Redis keeps the recent history of each room in a sorted set scored by
// message time.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Redis{client: client}, nil
}

// Close closes the Redis connection.
func (s *Redis) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// roomMessagesKey returns the key for a room's message sorted set.
func roomMessagesKey(projectID string) string {
	return fmt.Sprintf("room:%s:messages", projectID)
}

func observe(start time.Time) {
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
}

// Append implements History. The set is trimmed to MaxHistoryLimit entries
// and expires messageTTL after the last write.
func (s *Redis) Append(ctx context.Context, msg wire.ChatMessage) error {
	defer observe(time.Now())

	ts, err := time.Parse(time.RFC3339Nano, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", msg.Timestamp, err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := roomMessagesKey(msg.ProjectID.String())
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(ts.UnixMilli()),
		Member: string(data),
	})
	pipe.ZRemRangeByRank(ctx, key, 0, -int64(MaxHistoryLimit)-1)
	pipe.Expire(ctx, key, messageTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent implements History.
func (s *Redis) Recent(ctx context.Context, projectID string, limit int) ([]wire.ChatMessage, error) {
	defer observe(time.Now())

	limit = ClampLimit(limit)
	results, err := s.client.ZRevRange(ctx, roomMessagesKey(projectID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]wire.ChatMessage, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		var msg wire.ChatMessage
		if err := json.Unmarshal([]byte(results[i]), &msg); err != nil {
			logger.Warnf("Skipping undecodable cached message in room %s: %v", projectID, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
