package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiberpulse/fiberpulse/internal/model"
)

// PostgresStore keeps the whole event log as a single JSONB document.
// Append is a read-modify-write; a FOR UPDATE row lock serializes
// concurrent appends so no event is lost or duplicated.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore creates a Postgres-backed event log.
func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		logger: logger.With("component", "store.postgres"),
	}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS metric_event_log (
			id         smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			events     jsonb NOT NULL DEFAULT '[]'::jsonb,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create metric_event_log: %w", err)
	}
	return nil
}

// GetAll returns all stored events in insertion order. Storage errors
// and malformed entries degrade to an empty or partial result.
func (s *PostgresStore) GetAll(ctx context.Context) []model.MetricEvent {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT events FROM metric_event_log WHERE id = 1`,
	).Scan(&raw)
	if err != nil {
		if err != pgx.ErrNoRows {
			s.logger.Error("event log read failed", "error", err)
		}
		return nil
	}
	return model.DecodeEvents(raw)
}

// Append adds one event under a row lock, evicting past MaxEvents.
func (s *PostgresStore) Append(ctx context.Context, ev model.MetricEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT events FROM metric_event_log WHERE id = 1 FOR UPDATE`,
	).Scan(&raw)
	if err != nil && err != pgx.ErrNoRows {
		return fmt.Errorf("lock event log: %w", err)
	}

	events := append(model.DecodeEvents(raw), ev)
	if err := writeLog(ctx, tx, Trim(events)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceAll overwrites the log with events, trimmed to MaxEvents.
func (s *PostgresStore) ReplaceAll(ctx context.Context, events []model.MetricEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeLog(ctx, tx, Trim(events)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func writeLog(ctx context.Context, tx pgx.Tx, events []model.MetricEvent) error {
	if events == nil {
		events = []model.MetricEvent{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal event log: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO metric_event_log (id, events, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET events = $1, updated_at = now()
	`, data)
	if err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	return nil
}
