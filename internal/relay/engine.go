package relay

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mentorlink/internal/room"
	"mentorlink/internal/storage"
	"mentorlink/pkg/protocol"
)

const (
	defaultMentorName = "Mentor"
	invalidCodeText   = "Invalid room code"
)

// binding records the room and role a connection acquired with its first
// successful create or join. A connection binds at most once; switching
// rooms or roles requires reconnecting.
type binding struct {
	room *room.Room
	role string
	name string
}

// Engine is the relay core: it interprets inbound envelopes, mutates the
// room store and message log, and fans accepted chat entries out to the
// room's recipients. All state transitions are serialized under one mutex,
// so no two mutations of the same room can interleave.
type Engine struct {
	store  *room.Store
	log    storage.MessageLog
	logger zerolog.Logger

	mu       sync.Mutex
	bindings map[string]*binding // connection ID -> binding
}

// New creates a relay engine over the given store and message log.
func New(store *room.Store, log storage.MessageLog, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		log:      log,
		logger:   logger,
		bindings: make(map[string]*binding),
	}
}

// HandleEnvelope processes one inbound payload from a connection. Malformed
// payloads, unknown types, and envelopes that violate the state machine's
// preconditions are discarded without a response; that leniency is
// deliberate so unknown future types never break older clients.
func (e *Engine) HandleEnvelope(ctx context.Context, conn room.Conn, data []byte) Outcome {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		e.logger.Debug().Str("conn_id", conn.ID()).Msg("discarding malformed payload")
		return Ignored
	}

	switch env.Type {
	case protocol.TypeCreateRoom:
		return e.handleCreate(conn, env)
	case protocol.TypeJoinRoom:
		return e.handleJoin(ctx, conn, env)
	case protocol.TypeChat:
		return e.handleChat(ctx, conn, env)
	default:
		e.logger.Debug().Str("conn_id", conn.ID()).Str("type", env.Type).Msg("discarding unroutable envelope")
		return Ignored
	}
}

func (e *Engine) handleCreate(conn room.Conn, env protocol.Envelope) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, bound := e.bindings[conn.ID()]; bound {
		return Ignored
	}

	name := env.Name
	if name == "" {
		name = defaultMentorName
	}

	r, err := e.store.Create(conn, name)
	if err != nil {
		e.logger.Error().Err(err).Str("conn_id", conn.ID()).Msg("room creation failed")
		return Ignored
	}

	e.bindings[conn.ID()] = &binding{room: r, role: protocol.RoleMentor, name: name}

	e.deliver(conn, protocol.NewRoomCreated(r.Code))
	e.logger.Info().Str("room", r.Code).Str("mentor", name).Msg("room created")
	return Accepted
}

func (e *Engine) handleJoin(ctx context.Context, conn room.Conn, env protocol.Envelope) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, bound := e.bindings[conn.ID()]; bound {
		return Ignored
	}

	r, ok := e.store.Get(env.Code)
	if !ok {
		e.deliver(conn, protocol.NewErrorMessage(invalidCodeText))
		return UserError
	}

	r.AddStudent(conn)
	e.bindings[conn.ID()] = &binding{room: r, role: protocol.RoleStudent, name: env.Name}

	// History replay: the joiner sees exactly the log as of this moment.
	messages, err := e.log.Snapshot(ctx, r.Code)
	if err != nil {
		e.logger.Error().Err(err).Str("room", r.Code).Msg("history snapshot failed")
		messages = nil
	}
	e.deliver(conn, protocol.NewHistory(messages))

	e.logger.Info().Str("room", r.Code).Str("student", env.Name).Int("students", r.StudentCount()).Msg("student joined")
	return Accepted
}

func (e *Engine) handleChat(ctx context.Context, conn room.Conn, env protocol.Envelope) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, bound := e.bindings[conn.ID()]
	if !bound {
		return Ignored
	}

	entry := protocol.ChatEntry{
		Name: b.name,
		Role: b.role,
		Text: env.Text,
		Time: time.Now(),
	}

	if err := e.log.Append(ctx, b.room.Code, entry); err != nil {
		// The entry is still delivered; the log is best-effort relative to
		// the live conversation.
		e.logger.Error().Err(err).Str("room", b.room.Code).Msg("message append failed")
	}

	// Fan-out to mentor plus every student, sender included, so every
	// participant sees the identical server-ordered transcript.
	payload := protocol.NewChatMessage(entry)
	for _, rc := range b.room.Recipients() {
		e.deliver(rc, payload)
	}

	return Accepted
}

// HandleDisconnect processes a connection departure. It is idempotent: the
// first call for a bound connection tears down its room state, later calls
// and calls for unbound connections are no-ops. No departure notification
// is sent to remaining participants.
func (e *Engine) HandleDisconnect(ctx context.Context, conn room.Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, bound := e.bindings[conn.ID()]
	if !bound {
		return
	}
	delete(e.bindings, conn.ID())

	if b.role == protocol.RoleMentor {
		// Mentor departure destroys the room. Unbind every remaining
		// participant so no further envelopes are routed for this code; the
		// transport gateway closes the orphaned sockets on its own.
		for id, other := range e.bindings {
			if other.room == b.room {
				delete(e.bindings, id)
			}
		}
		e.store.Remove(b.room.Code)
		if err := e.log.Clear(ctx, b.room.Code); err != nil {
			e.logger.Error().Err(err).Str("room", b.room.Code).Msg("log clear failed")
		}
		e.logger.Info().Str("room", b.room.Code).Msg("mentor left, room destroyed")
		return
	}

	b.room.RemoveStudent(conn.ID())
	e.logger.Info().Str("room", b.room.Code).Str("student", b.name).Msg("student left")
}

// deliver sends a payload to a connection if it is currently deliverable.
// Undeliverable connections are silently skipped, never queued or retried.
func (e *Engine) deliver(conn room.Conn, payload any) {
	if conn == nil || !conn.Alive() {
		return
	}
	if err := conn.Send(payload); err != nil {
		e.logger.Debug().Err(err).Str("conn_id", conn.ID()).Msg("delivery skipped")
	}
}
