package storage

import (
	"context"
	"fmt"
	"sync"

	"mentorlink/pkg/protocol"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// MessageLog is the per-room append-only message log. Append is the only
// mutator and preserves insertion order; Snapshot returns the full sequence
// in append order. Clear drops a room's entries when the room is destroyed,
// so both backends keep the same ephemerality semantics.
type MessageLog interface {
	Append(ctx context.Context, code string, entry protocol.ChatEntry) error
	Snapshot(ctx context.Context, code string) ([]protocol.ChatEntry, error)
	Clear(ctx context.Context, code string) error
	Close() error
}

// Open selects a log backend by name.
func Open(backend, path string) (MessageLog, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryLog(), nil
	case BackendSQLite:
		return OpenSQLiteLog(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemoryLog keeps each room's log in process memory. This is the default
// backend: rooms are short-lived and nothing survives a restart.
type MemoryLog struct {
	mu      sync.RWMutex
	entries map[string][]protocol.ChatEntry
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: make(map[string][]protocol.ChatEntry)}
}

func (l *MemoryLog) Append(_ context.Context, code string, entry protocol.ChatEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[code] = append(l.entries[code], entry)
	return nil
}

// Snapshot returns a copy so later appends cannot mutate a replayed history.
func (l *MemoryLog) Snapshot(_ context.Context, code string) ([]protocol.ChatEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.entries[code]
	out := make([]protocol.ChatEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (l *MemoryLog) Clear(_ context.Context, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, code)
	return nil
}

func (l *MemoryLog) Close() error {
	return nil
}
