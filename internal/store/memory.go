package store

import (
	"context"
	"sync"

	"github.com/fiberpulse/fiberpulse/internal/model"
)

// MemoryStore is an in-memory EventStore. Useful for development and
// tests; events do not survive a restart.
type MemoryStore struct {
	mu     sync.Mutex
	events []model.MetricEvent
}

// NewMemoryStore creates an empty in-memory event log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetAll returns a copy of the stored events in insertion order.
func (s *MemoryStore) GetAll(ctx context.Context) []model.MetricEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.MetricEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Append adds one event, evicting the oldest past MaxEvents.
func (s *MemoryStore) Append(ctx context.Context, ev model.MetricEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	if len(s.events) > MaxEvents {
		// Reallocate so the evicted prefix can be collected.
		trimmed := make([]model.MetricEvent, MaxEvents)
		copy(trimmed, s.events[len(s.events)-MaxEvents:])
		s.events = trimmed
	}
	return nil
}

// ReplaceAll overwrites the log with events, trimmed to MaxEvents.
func (s *MemoryStore) ReplaceAll(ctx context.Context, events []model.MetricEvent) error {
	events = Trim(events)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]model.MetricEvent, len(events))
	copy(s.events, events)
	return nil
}
