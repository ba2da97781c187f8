// Package store provides durable, bounded, append-only storage for
// metric events.
//
// The event log is a ring buffer over an ordered sequence: appends past
// MaxEvents evict the oldest entries first. Reads are defensive and
// never fail from the caller's perspective; a corrupt or unreachable
// backend yields an empty sequence, because the metrics pipeline is
// best-effort rather than transactional.
package store

import (
	"context"

	"github.com/fiberpulse/fiberpulse/internal/model"
)

// MaxEvents is the maximum number of events the log retains.
const MaxEvents = 5000

// EventStore is the storage contract for the bounded event log.
//
// Each implementation must serialize Append so that concurrent ingest
// requests cannot lose each other's events: the memory backend holds a
// mutex, the Redis backend uses atomic list operations, and the
// Postgres backend takes a row lock for the read-modify-write.
type EventStore interface {
	// GetAll returns all stored events in insertion order. It never
	// fails; storage errors and malformed entries produce an empty or
	// partial result instead.
	GetAll(ctx context.Context) []model.MetricEvent

	// Append adds one event to the end of the log, evicting from the
	// front if the log would exceed MaxEvents.
	Append(ctx context.Context, ev model.MetricEvent) error

	// ReplaceAll overwrites the log with the given sequence, trimmed
	// to MaxEvents. Append is built on it internally; it is exposed
	// for operator tooling and tests.
	ReplaceAll(ctx context.Context, events []model.MetricEvent) error
}

// Trim returns the tail of events capped at MaxEvents.
func Trim(events []model.MetricEvent) []model.MetricEvent {
	if len(events) > MaxEvents {
		return events[len(events)-MaxEvents:]
	}
	return events
}
