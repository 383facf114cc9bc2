package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoom_AddStudentKeepsJoinOrder(t *testing.T) {
	req := require.New(t)

	r := &Room{Code: "AB12CD", CreatedAt: time.Now(), mentor: newTestConn("m"), mentorName: "Alice"}
	bob := newTestConn("s-bob")
	carol := newTestConn("s-carol")

	r.AddStudent(bob)
	r.AddStudent(carol)

	students := r.Students()
	req.Len(students, 2)
	req.Equal("s-bob", students[0].ID())
	req.Equal("s-carol", students[1].ID())
}

func TestRoom_AddStudentDeduplicatesByID(t *testing.T) {
	req := require.New(t)

	r := &Room{mentor: newTestConn("m")}
	bob := newTestConn("s-bob")

	r.AddStudent(bob)
	r.AddStudent(bob)
	r.AddStudent(nil)

	req.Equal(1, r.StudentCount())
}

func TestRoom_RemoveStudentIsIdempotent(t *testing.T) {
	req := require.New(t)

	r := &Room{mentor: newTestConn("m")}
	r.AddStudent(newTestConn("s-bob"))
	r.AddStudent(newTestConn("s-carol"))

	r.RemoveStudent("s-bob")
	req.Equal(1, r.StudentCount())
	req.Equal("s-carol", r.Students()[0].ID())

	r.RemoveStudent("s-bob")
	r.RemoveStudent("never-joined")
	req.Equal(1, r.StudentCount())
}

func TestRoom_RecipientsMentorFirst(t *testing.T) {
	req := require.New(t)

	mentor := newTestConn("m")
	r := &Room{mentor: mentor, mentorName: "Alice"}
	r.AddStudent(newTestConn("s-bob"))
	r.AddStudent(newTestConn("s-carol"))

	rec := r.Recipients()
	req.Len(rec, 3)
	req.Equal("m", rec[0].ID())
	req.Equal("s-bob", rec[1].ID())
	req.Equal("s-carol", rec[2].ID())
}

func TestRoom_StudentsReturnsCopy(t *testing.T) {
	req := require.New(t)

	r := &Room{mentor: newTestConn("m")}
	r.AddStudent(newTestConn("s-bob"))

	snapshot := r.Students()
	snapshot[0] = newTestConn("s-evil")

	req.Equal("s-bob", r.Students()[0].ID())
}
