package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Sink persists or forwards one event.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// MemoryStore keeps events per owner, for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]Event)}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.OwnerID] = append(s.events[event.OwnerID], event)
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[ownerID]...), nil
}

// LogSink writes events to a structured logger when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"audit_id", e.ID,
		"category", e.Category,
		"action", e.Action,
		"owner_id", e.OwnerID,
		"request_id", e.RequestID,
		"classification", e.Classification,
		"set_keys", e.SetKeys,
		"deleted_keys", e.DeletedKeys,
		"reason", e.Reason,
	)
	return nil
}
