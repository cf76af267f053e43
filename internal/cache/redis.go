// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client, connected once at startup. Nil when the
// action queue is disabled.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the historian drains.
var DefaultQueueName = "stax_actions"

// ActionRecord is one applied room action, queued for the historian. Only
// immutable history flows through here; live room state is never persisted.
type ActionRecord struct {
	RoomCode   string                 `json:"room_code"`
	ActorID    uuid.UUID              `json:"actor_id"`
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Timestamp  int64                  `json:"timestamp"`
}

// ConnectRedis initializes the global client from REDIS_ADDR. An unset
// address leaves the queue disabled rather than failing startup.
func ConnectRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	Rdb = redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// Enabled reports whether the action queue is connected.
func Enabled() bool {
	return Rdb != nil
}

// QueueName returns the configured queue name.
func QueueName() string {
	if name := os.Getenv("HISTORIAN_QUEUE_NAME"); name != "" {
		return name
	}
	return DefaultQueueName
}

// PublishAction serializes the record and pushes it onto the queue. A no-op
// while disabled, so callers never branch on configuration.
func PublishAction(ctx context.Context, record ActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := Rdb.RPush(ctx, QueueName(), data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", QueueName(), err)
	}
	return nil
}
