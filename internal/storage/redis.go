package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
)

const stateKeyPrefix = "narrative:state:"

// RedisStorage implements the Storage interface using Redis for engine
// state and the filesystem for static content catalogs.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// SaveState writes the serialized engine state as one JSON value, so a
// save slot is atomic: flags, cooldowns, active events and history can
// never be persisted out of sync with one another.
func (r *RedisStorage) SaveState(ctx context.Context, slot string, st *engine.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal engine state: %w", err)
	}
	if err := r.client.Set(ctx, stateKeyPrefix+slot, data, 0).Err(); err != nil {
		return fmt.Errorf("save engine state %q: %w", slot, err)
	}
	r.logger.Debug("Saved engine state", "slot", slot, "bytes", len(data))
	return nil
}

func (r *RedisStorage) LoadState(ctx context.Context, slot string) (*engine.State, error) {
	data, err := r.client.Get(ctx, stateKeyPrefix+slot).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load engine state %q: %w", slot, err)
	}
	var st engine.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal engine state %q: %w", slot, err)
	}
	return &st, nil
}

func (r *RedisStorage) DeleteState(ctx context.Context, slot string) error {
	if err := r.client.Del(ctx, stateKeyPrefix+slot).Err(); err != nil {
		return fmt.Errorf("delete engine state %q: %w", slot, err)
	}
	return nil
}

func (r *RedisStorage) ListStates(ctx context.Context) ([]string, error) {
	var slots []string
	iter := r.client.Scan(ctx, 0, stateKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		slots = append(slots, strings.TrimPrefix(iter.Val(), stateKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list save slots: %w", err)
	}
	sort.Strings(slots)
	return slots, nil
}

func (r *RedisStorage) DramaCatalog(ctx context.Context) ([]*drama.Template, error) {
	return loadDramaCatalog(r.dataDir, r.logger)
}

func (r *RedisStorage) InterviewCatalog(ctx context.Context) ([]*interview.Template, error) {
	return loadInterviewCatalog(r.dataDir, r.logger)
}
