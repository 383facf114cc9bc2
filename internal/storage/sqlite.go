package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"mentorlink/pkg/protocol"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	room_code TEXT NOT NULL,
	name      TEXT NOT NULL,
	role      TEXT NOT NULL,
	text      TEXT NOT NULL,
	at        TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room_code ON messages(room_code);
`

// SQLiteLog persists room logs in SQLite. Reads run concurrently; all writes
// are funneled through a single goroutine, which is how SQLite performs best
// under concurrent use.
type SQLiteLog struct {
	db       *sql.DB
	writeCh  chan writeOp
	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

type writeOp struct {
	run    func(*sql.DB) error
	result chan error
}

// OpenSQLiteLog opens (creating if needed) the database at path and prepares
// the messages table.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(createMessagesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create messages table: %w", err)
	}

	l := &SQLiteLog{
		db:       db,
		writeCh:  make(chan writeOp, 100),
		shutdown: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.writeLoop()

	return l, nil
}

func (l *SQLiteLog) writeLoop() {
	defer l.wg.Done()

	for {
		select {
		case op := <-l.writeCh:
			op.result <- op.run(l.db)
		case <-l.shutdown:
			return
		}
	}
}

func (l *SQLiteLog) executeWrite(run func(*sql.DB) error) error {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrLogClosed
	}
	l.mu.RUnlock()

	result := make(chan error, 1)
	select {
	case l.writeCh <- writeOp{run: run, result: result}:
		return <-result
	case <-l.shutdown:
		return ErrLogClosed
	}
}

func (l *SQLiteLog) Append(ctx context.Context, code string, entry protocol.ChatEntry) error {
	return l.executeWrite(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO messages (room_code, name, role, text, at) VALUES (?, ?, ?, ?, ?)`,
			code, entry.Name, entry.Role, entry.Text, entry.Time,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return nil
	})
}

func (l *SQLiteLog) Snapshot(ctx context.Context, code string) ([]protocol.ChatEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT name, role, text, at FROM messages WHERE room_code = ? ORDER BY seq ASC`,
		code,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]protocol.ChatEntry, 0)
	for rows.Next() {
		var entry protocol.ChatEntry
		if err := rows.Scan(&entry.Name, &entry.Role, &entry.Text, &entry.Time); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return entries, nil
}

func (l *SQLiteLog) Clear(ctx context.Context, code string) error {
	return l.executeWrite(func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM messages WHERE room_code = ?`, code); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		return nil
	})
}

func (l *SQLiteLog) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	close(l.shutdown)
	l.wg.Wait()

	if err := l.db.Close(); err != nil {
		return fmt.Errorf("close sqlite database: %w", err)
	}
	return nil
}
