package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mentorlink/internal/export"
	"mentorlink/internal/relay"
)

// Server is the HTTP surface: liveness, health, the notes export boundary,
// and a room summary. No room state lives here; everything goes through the
// engine's read-only accessors.
type Server struct {
	engine  *relay.Engine
	backend string
	router  chi.Router
	logger  zerolog.Logger
}

// NewServer builds the HTTP server. The WebSocket endpoint is mounted
// alongside the REST routes so the whole process serves one port.
func NewServer(engine *relay.Engine, backend string, wsHandler http.HandlerFunc, logger zerolog.Logger) *Server {
	s := &Server{
		engine:  engine,
		backend: backend,
		router:  chi.NewRouter(),
		logger:  logger,
	}

	s.router.Get("/", s.handleRoot)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/download-notes/{code}", s.handleDownloadNotes)
	s.router.Get("/api/rooms/{code}", s.handleRoomInfo)
	s.router.Get("/ws", wsHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("mentorlink backend running"))
}

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Storage   string         `json:"storage"`
	Stats     map[string]int `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.sendJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Storage:   s.backend,
		Stats:     s.engine.Stats(),
	})
}

// handleDownloadNotes streams the room's notes document. An absent room and
// an empty log both yield not-found rather than an empty document.
func (s *Server) handleDownloadNotes(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	entries, found, err := s.engine.RoomSnapshot(r.Context(), code)
	if err != nil {
		s.logger.Error().Err(err).Str("room", code).Msg("notes snapshot failed")
		s.sendError(w, http.StatusInternalServerError, "failed to read room notes")
		return
	}
	if !found || len(entries) == 0 {
		s.sendError(w, http.StatusNotFound, "no notes found for this room")
		return
	}

	if r.URL.Query().Get("format") == "txt" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=notes_%s.txt", code))
		if err := export.RenderText(w, code, entries); err != nil {
			s.logger.Error().Err(err).Str("room", code).Msg("text export failed")
		}
		return
	}

	// Render into a buffer first so a rendering failure can still produce a
	// proper error status.
	var buf bytes.Buffer
	if err := export.RenderPDF(&buf, code, entries); err != nil {
		s.logger.Error().Err(err).Str("room", code).Msg("pdf export failed")
		s.sendError(w, http.StatusInternalServerError, "failed to render notes")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=notes_%s.pdf", code))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRoomInfo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	info, found := s.engine.RoomInfo(r.Context(), code)
	if !found {
		s.sendError(w, http.StatusNotFound, "room not found")
		return
	}

	s.sendJSON(w, http.StatusOK, info)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug().Err(err).Msg("response encode failed")
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, msg string) {
	s.sendJSON(w, status, errorResponse{Error: msg})
}
