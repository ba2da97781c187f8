package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fiberpulse/fiberpulse/internal/model"
)

// DefaultRedisKey is the Redis list holding the event log.
const DefaultRedisKey = "metrics:events"

// RedisStore keeps the event log in a Redis list, one JSON-encoded
// event per element. Append and trim run in a single pipeline so the
// ring-buffer bound holds without a read-modify-write on the whole log.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed event log.
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    DefaultRedisKey,
		logger: logger.With("component", "store.redis"),
	}
}

// GetAll returns all stored events in insertion order. Elements that
// fail to decode are skipped; Redis errors yield an empty result.
func (s *RedisStore) GetAll(ctx context.Context) []model.MetricEvent {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Error("event log read failed", "error", err)
		}
		return nil
	}

	events := make([]model.MetricEvent, 0, len(items))
	for _, item := range items {
		var ev model.MetricEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events
}

// Append pushes one event and trims the list to MaxEvents atomically.
func (s *RedisStore) Append(ctx context.Context, ev model.MetricEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, -MaxEvents, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ReplaceAll overwrites the log with events, trimmed to MaxEvents.
func (s *RedisStore) ReplaceAll(ctx context.Context, events []model.MetricEvent) error {
	events = Trim(events)

	encoded := make([]interface{}, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		encoded = append(encoded, data)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(encoded) > 0 {
		pipe.RPush(ctx, s.key, encoded...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace event log: %w", err)
	}
	return nil
}
