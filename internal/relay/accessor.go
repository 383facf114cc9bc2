package relay

import (
	"context"
	"time"

	"mentorlink/pkg/protocol"
)

// RoomInfo is a read-only summary of a live room for the HTTP surface.
type RoomInfo struct {
	Code       string    `json:"code"`
	MentorName string    `json:"mentor_name"`
	Students   int       `json:"students"`
	Messages   int       `json:"messages"`
	CreatedAt  time.Time `json:"created_at"`
}

// RoomSnapshot returns the ordered message log of a live room. The export
// collaborator builds its document from this accessor; an absent room is
// reported through the second return value.
func (e *Engine) RoomSnapshot(ctx context.Context, code string) ([]protocol.ChatEntry, bool, error) {
	r, ok := e.store.Get(code)
	if !ok {
		return nil, false, nil
	}

	entries, err := e.log.Snapshot(ctx, r.Code)
	if err != nil {
		return nil, true, err
	}
	return entries, true, nil
}

// RoomInfo summarizes a live room.
func (e *Engine) RoomInfo(ctx context.Context, code string) (RoomInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.Get(code)
	if !ok {
		return RoomInfo{}, false
	}

	messages := 0
	if entries, err := e.log.Snapshot(ctx, r.Code); err == nil {
		messages = len(entries)
	}

	return RoomInfo{
		Code:       r.Code,
		MentorName: r.MentorName(),
		Students:   r.StudentCount(),
		Messages:   messages,
		CreatedAt:  r.CreatedAt,
	}, true
}

// Stats reports engine-level counters for health reporting.
func (e *Engine) Stats() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return map[string]int{
		"rooms":       e.store.Len(),
		"connections": len(e.bindings),
	}
}
