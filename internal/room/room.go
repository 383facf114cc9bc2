package room

import (
	"time"
)

// Conn is the opaque handle the relay uses to address a participant. The
// transport gateway owns the underlying socket; the room layer only needs an
// identity, a send capability, and a liveness query.
type Conn interface {
	ID() string
	Send(v any) error
	Alive() bool
}

// Room is one live session: a single owning mentor connection and an ordered
// set of student connections. Rooms are not internally synchronized; the
// relay engine serializes all mutations.
type Room struct {
	Code       string
	CreatedAt  time.Time
	mentor     Conn
	mentorName string
	students   []Conn // insertion order = join order
}

// Mentor returns the owning mentor connection.
func (r *Room) Mentor() Conn {
	return r.mentor
}

// MentorName returns the display name the mentor supplied at creation.
func (r *Room) MentorName() string {
	return r.mentorName
}

// AddStudent appends a student connection in join order. A connection that
// is already present is not added twice.
func (r *Room) AddStudent(c Conn) {
	if c == nil {
		return
	}
	for _, s := range r.students {
		if s.ID() == c.ID() {
			return
		}
	}
	r.students = append(r.students, c)
}

// RemoveStudent removes the student with the given connection ID. Removing
// an absent handle is a no-op.
func (r *Room) RemoveStudent(connID string) {
	for i, s := range r.students {
		if s.ID() == connID {
			r.students = append(r.students[:i], r.students[i+1:]...)
			return
		}
	}
}

// Students returns a copy of the student connections in join order.
func (r *Room) Students() []Conn {
	out := make([]Conn, len(r.students))
	copy(out, r.students)
	return out
}

// StudentCount returns the number of joined students.
func (r *Room) StudentCount() int {
	return len(r.students)
}

// Recipients returns every connection a room payload fans out to: the mentor
// first, then each student in join order. The sender is always among them.
func (r *Room) Recipients() []Conn {
	out := make([]Conn, 0, len(r.students)+1)
	out = append(out, r.mentor)
	out = append(out, r.students...)
	return out
}
