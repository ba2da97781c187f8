// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fiberpulse/fiberpulse/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 815815

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetEventLog empties the metric event log table.
func ResetEventLog(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "DELETE FROM metric_event_log"); err != nil {
		return fmt.Errorf("reset event log: %w", err)
	}
	return nil
}

// ResetPages empties the pages table.
func ResetPages(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "DELETE FROM pages"); err != nil {
		return fmt.Errorf("reset pages: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// NewTestEvent creates a CTA click event with sensible defaults.
func NewTestEvent(t testing.TB, targetID int64, at time.Time) model.MetricEvent {
	t.Helper()
	return model.MetricEvent{
		ID:        ulid.Make().String(),
		Timestamp: at.UTC().Unix(),
		Type:      model.EventTypeCTAClick,
		TargetID:  targetID,
	}
}

// NewTestPage creates a page row for resolver tests.
func NewTestPage(t testing.TB, id int64) model.Page {
	t.Helper()
	return model.Page{
		ID:    id,
		Title: fmt.Sprintf("Page %d", id),
		URL:   fmt.Sprintf("https://fiberlite.example/pages/%d", id),
	}
}
