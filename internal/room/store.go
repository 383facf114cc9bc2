package room

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	codeLength      = 6
	maxCodeAttempts = 8
)

// Store is the process-wide mapping from room code to live room. It is owned
// by the server instance and injected into the relay engine; there is no
// ambient global room state.
type Store struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	genCode func() string
}

// NewStore creates an empty room store.
func NewStore() *Store {
	return &Store{
		rooms:   make(map[string]*Room),
		genCode: newCode,
	}
}

// newCode derives a short human-typeable code from a v4 UUID: the first six
// hex characters, uppercased.
func newCode() string {
	return strings.ToUpper(uuid.NewString()[:codeLength])
}

// Create allocates a room owned by the given mentor connection and returns
// it. Codes are regenerated on collision with any live room, with a bounded
// number of attempts; the six-hex-char space makes exhaustion effectively
// unreachable at realistic room counts.
func (s *Store) Create(mentor Conn, mentorName string) (*Room, error) {
	if mentor == nil {
		return nil, ErrNilMentor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.genCode()
		if _, taken := s.rooms[code]; taken {
			continue
		}
		r := &Room{
			Code:       code,
			CreatedAt:  time.Now(),
			mentor:     mentor,
			mentorName: mentorName,
		}
		s.rooms[code] = r
		return r, nil
	}

	return nil, ErrCodeSpaceExhausted
}

// Get looks up a live room by code. A missing room is an expected,
// user-triggerable condition and is reported through the second return
// value, not an error.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[Normalize(code)]
	return r, ok
}

// Remove deletes the room. Connection handles still referenced by it become
// orphaned; the transport gateway is responsible for closing them. Removing
// an absent code is a no-op.
func (s *Store) Remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, Normalize(code))
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}

// Normalize case-normalizes a user-typed room code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
