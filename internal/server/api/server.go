// internal/server/api/server.go
//
// HTTP surface consumed by presentation layers: session lifecycle,
// roll/move requests, a websocket event stream per session and the
// statistics read side.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/server/room"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/protocol"
	"github.com/obrien-tchaleu/ludo-universe/pkg/database"
)

// StatsReader expose les statistiques enregistrées
type StatsReader interface {
	RecentSessions(ctx context.Context, limit int) ([]database.SessionRecord, error)
	GetPlayerTotals(ctx context.Context, name string) (*database.PlayerTotals, error)
}

// Server regroupe le routeur, les sessions et la lecture des statistiques
type Server struct {
	r        *chi.Mux
	rooms    *room.Manager
	stats    StatsReader
	defaults models.GameConfig
	log      zerolog.Logger
}

type errorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Problems []string `json:"problems,omitempty"`
}

// New construit le serveur; stats peut être nil
func New(rooms *room.Manager, stats StatsReader, defaults models.GameConfig) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		rooms:    rooms,
		stats:    stats,
		defaults: defaults,
		log:      log.With().Str("component", "api").Logger(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.requestLogger)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "sessions": s.rooms.GetRoomCount()})
	})

	// le flux websocket échappe au délai des requêtes
	s.r.Get("/sessions/{id}/ws", s.handleWebSocket)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/roll", s.handleRoll)
		r.Post("/sessions/{id}/move", s.handleMove)
		r.Delete("/sessions/{id}", s.handleCloseSession)

		r.Get("/stats/sessions", s.handleRecentSessions)
		r.Get("/stats/players/{name}", s.handlePlayerTotals)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: r.URL.Path})
	})

	return s
}

// Handler retourne le routeur
func (s *Server) Handler() http.Handler { return s.r }

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	cfg := s.defaults

	var req protocol.CreateSessionPayload
	err := json.NewDecoder(r.Body).Decode(&req)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: constants.ErrBadMessage, Message: err.Error()})
		return
	default:
		// les champs absents gardent les valeurs par défaut du serveur
		if cfg, err = req.ToGameConfig(s.defaults); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: constants.ErrInvalidConfig, Message: err.Error()})
			return
		}
	}

	rm, err := s.rooms.CreateRoom(cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rm.Snapshot())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.ListRooms())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.GetRoom(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm.Snapshot())
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.GetRoom(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req models.RollDicePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: constants.ErrBadMessage, Message: err.Error()})
		return
	}

	if err := rm.Engine.RequestRoll(req.Player); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rm.Snapshot())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.GetRoom(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req models.MovePiecePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: constants.ErrBadMessage, Message: err.Error()})
		return
	}

	if err := rm.Engine.RequestMove(req.Player, req.Piece); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm.Snapshot())
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.rooms.CloseRoom(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "STATS_DISABLED", Message: "statistics are not configured"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := s.stats.RecentSessions(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read sessions")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "failed to read sessions"})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handlePlayerTotals(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "STATS_DISABLED", Message: "statistics are not configured"})
		return
	}

	totals, err := s.stats.GetPlayerTotals(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, database.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "PLAYER_NOT_FOUND", Message: err.Error()})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read player totals")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "failed to read player totals"})
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// writeError traduit les erreurs du domaine en statut HTTP
func writeError(w http.ResponseWriter, err error) {
	var ce *game.ConfigError
	var re *game.RequestError

	switch {
	case errors.As(err, &ce):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: constants.ErrInvalidConfig, Message: err.Error(), Problems: ce.Problems})
	case errors.As(err, &re):
		writeJSON(w, http.StatusConflict, errorResponse{Code: re.Code, Message: re.Reason})
	case errors.Is(err, room.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: constants.ErrSessionNotFound, Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
