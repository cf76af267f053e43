// cmd/historian/main.go is an asynchronous worker that pops action records
// from the Redis queue and persists them to PostgreSQL in batches.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stax-cards/stax/internal/cache"
	"github.com/stax-cards/stax/internal/database"
)

// historian drains the queue into the room_actions table. Batching keeps
// insert load decoupled from gameplay throughput.
type historian struct {
	logger     *logrus.Logger
	batchSize  int
	flushDelay time.Duration

	mu    sync.Mutex
	batch []cache.ActionRecord
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func main() {
	logger := logrus.New()

	if err := cache.ConnectRedis(); err != nil {
		logger.Fatalf("redis connect failed: %v", err)
	}
	if !cache.Enabled() {
		logger.Fatal("REDIS_ADDR is required for the historian")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Connect(ctx); err != nil {
		logger.Fatalf("database connect failed: %v", err)
	}
	if !database.Enabled() {
		logger.Fatal("DATABASE_URL is required for the historian")
	}
	defer database.Close()

	h := &historian{
		logger:     logger,
		batchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		flushDelay: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	}

	go h.drainLoop(ctx)
	go h.flushLoop(ctx)

	logger.Info("historian started")
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	<-sigs

	cancel()
	h.flush(context.Background())
	logger.Info("historian shutting down")
}

// drainLoop blocks on the queue and accumulates records.
func (h *historian) drainLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := cache.Rdb.BLPop(ctx, 3*time.Second, cache.QueueName()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			h.logger.Warnf("BLPop: %v", err)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var rec cache.ActionRecord
		if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
			h.logger.Warnf("invalid action record: %v", err)
			continue
		}
		h.append(ctx, rec)
	}
}

// append adds a record and flushes once the batch threshold is reached.
func (h *historian) append(ctx context.Context, rec cache.ActionRecord) {
	h.mu.Lock()
	h.batch = append(h.batch, rec)
	full := len(h.batch) >= h.batchSize
	h.mu.Unlock()
	if full {
		h.flush(ctx)
	}
}

// flushLoop flushes pending records on a timer so a quiet queue still
// drains promptly.
func (h *historian) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(h.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.flush(ctx)
		}
	}
}

// flush writes the accumulated batch in one transaction.
func (h *historian) flush(ctx context.Context) {
	h.mu.Lock()
	batch := h.batch
	h.batch = nil
	h.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	if err := database.InsertActionBatch(ctx, batch); err != nil {
		h.logger.Errorf("failed to persist %d action(s): %v", len(batch), err)
		return
	}
	h.logger.Debugf("persisted %d action(s)", len(batch))
}
