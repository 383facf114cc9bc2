package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mentorlink/pkg/protocol"
)

func entry(name, role, text string) protocol.ChatEntry {
	return protocol.ChatEntry{Name: name, Role: role, Text: text, Time: time.Now().UTC()}
}

// The memory and SQLite backends must be interchangeable, so the core log
// behavior is verified once against both.
func TestMessageLogBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) MessageLog{
		BackendMemory: func(t *testing.T) MessageLog {
			return NewMemoryLog()
		},
		BackendSQLite: func(t *testing.T) MessageLog {
			log, err := OpenSQLiteLog(filepath.Join(t.TempDir(), "log.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = log.Close() })
			return log
		},
	}

	for name, open := range backends {
		t.Run(name+"/append preserves order", func(t *testing.T) {
			req := require.New(t)
			log := open(t)
			ctx := context.Background()

			req.NoError(log.Append(ctx, "AB12CD", entry("Alice", protocol.RoleMentor, "hello")))
			req.NoError(log.Append(ctx, "AB12CD", entry("Bob", protocol.RoleStudent, "hi")))
			req.NoError(log.Append(ctx, "AB12CD", entry("Alice", protocol.RoleMentor, "welcome")))

			entries, err := log.Snapshot(ctx, "AB12CD")
			req.NoError(err)
			req.Len(entries, 3)
			req.Equal("hello", entries[0].Text)
			req.Equal("hi", entries[1].Text)
			req.Equal("welcome", entries[2].Text)
			req.Equal(protocol.RoleStudent, entries[1].Role)
		})

		t.Run(name+"/rooms are isolated", func(t *testing.T) {
			req := require.New(t)
			log := open(t)
			ctx := context.Background()

			req.NoError(log.Append(ctx, "AB12CD", entry("Alice", protocol.RoleMentor, "hello")))
			req.NoError(log.Append(ctx, "EF34GH", entry("Carol", protocol.RoleMentor, "other room")))

			entries, err := log.Snapshot(ctx, "AB12CD")
			req.NoError(err)
			req.Len(entries, 1)
			req.Equal("hello", entries[0].Text)
		})

		t.Run(name+"/absent room yields empty non-nil slice", func(t *testing.T) {
			req := require.New(t)
			log := open(t)

			entries, err := log.Snapshot(context.Background(), "ZZZZZZ")
			req.NoError(err)
			req.NotNil(entries)
			req.Empty(entries)
		})

		t.Run(name+"/clear drops only the target room", func(t *testing.T) {
			req := require.New(t)
			log := open(t)
			ctx := context.Background()

			req.NoError(log.Append(ctx, "AB12CD", entry("Alice", protocol.RoleMentor, "hello")))
			req.NoError(log.Append(ctx, "EF34GH", entry("Carol", protocol.RoleMentor, "other room")))

			req.NoError(log.Clear(ctx, "AB12CD"))

			entries, err := log.Snapshot(ctx, "AB12CD")
			req.NoError(err)
			req.Empty(entries)

			entries, err = log.Snapshot(ctx, "EF34GH")
			req.NoError(err)
			req.Len(entries, 1)
		})
	}
}

func TestMemoryLog_SnapshotIsIndependentCopy(t *testing.T) {
	req := require.New(t)
	log := NewMemoryLog()
	ctx := context.Background()

	req.NoError(log.Append(ctx, "AB12CD", entry("Alice", protocol.RoleMentor, "hello")))

	first, err := log.Snapshot(ctx, "AB12CD")
	req.NoError(err)
	first[0].Text = "tampered"

	second, err := log.Snapshot(ctx, "AB12CD")
	req.NoError(err)
	req.Equal("hello", second[0].Text)
}

func TestOpen_SelectsBackend(t *testing.T) {
	req := require.New(t)

	mem, err := Open(BackendMemory, "")
	req.NoError(err)
	req.IsType(&MemoryLog{}, mem)

	sq, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "log.db"))
	req.NoError(err)
	req.IsType(&SQLiteLog{}, sq)
	req.NoError(sq.Close())

	_, err = Open("postgres", "")
	req.Error(err)
}
