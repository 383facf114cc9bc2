package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mentorlink/internal/relay"
)

// Config carries the transport tunables for a handler.
type Config struct {
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Handler terminates WebSocket connections and feeds their envelopes to the
// relay engine. It carries no room state of its own; it only supplies the
// "payload arrived on connection X" and "connection X went away" primitives.
type Handler struct {
	engine   *relay.Engine
	cfg      Config
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a WebSocket handler bound to the given engine.
func NewHandler(engine *relay.Engine, cfg Config, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the request and runs the connection's read pump
// until the peer disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := NewConnection(ws, h.cfg.WriteWait)
	h.logger.Debug().Str("conn_id", conn.ID()).Msg("connection opened")

	go h.pingLoop(conn)
	h.readLoop(conn)
}

// readLoop delivers each text frame to the engine. Any read error, including
// a clean close, ends the loop; the disconnect is then processed exactly
// once through the engine.
func (h *Handler) readLoop(conn *Connection) {
	defer func() {
		h.engine.HandleDisconnect(context.Background(), conn)
		_ = conn.Close()
		h.logger.Debug().Str("conn_id", conn.ID()).Msg("connection closed")
	}()

	conn.conn.SetReadLimit(h.cfg.MaxMessageSize)
	_ = conn.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug().Err(err).Str("conn_id", conn.ID()).Msg("read failed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		outcome := h.engine.HandleEnvelope(context.Background(), conn, data)
		h.logger.Debug().Str("conn_id", conn.ID()).Stringer("outcome", outcome).Msg("envelope handled")
	}
}

// pingLoop keeps the connection's liveness check running; a peer that stops
// answering pings trips the read deadline and is dropped.
func (h *Handler) pingLoop(conn *Connection) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteWait)); err != nil {
				return
			}
		case <-conn.Done():
			return
		}
	}
}
