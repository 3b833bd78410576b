// internal/server/room/manager.go
package room

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/obrien-tchaleu/ludo-universe/internal/client/announce"
	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

// ErrRoomNotFound est retournée pour un ID de session inconnu
var ErrRoomNotFound = errors.New("session not found")

// Manager gère toutes les sessions actives
type Manager struct {
	rooms      map[string]*Room
	announcer  *announce.Announcer
	store      StatsStore
	engineOpts []game.Option
	mu         sync.RWMutex
	log        zerolog.Logger
}

// Summary décrit une session pour les listes
type Summary struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Phase         constants.Phase `json:"phase"`
	CurrentPlayer int             `json:"current_player"`
	Clients       int             `json:"clients"`
}

// NewManager crée un nouveau gestionnaire de sessions.
// announcer et store peuvent être nil.
func NewManager(announcer *announce.Announcer, store StatsStore, engineOpts ...game.Option) *Manager {
	return &Manager{
		rooms:      make(map[string]*Room),
		announcer:  announcer,
		store:      store,
		engineOpts: engineOpts,
		log:        log.With().Str("component", "rooms").Logger(),
	}
}

// CreateRoom crée et démarre une session
func (m *Manager) CreateRoom(cfg models.GameConfig) (*Room, error) {
	id := uuid.NewString()

	opts := append([]game.Option{
		game.WithLogger(m.log.With().Str("session", id).Logger()),
	}, m.engineOpts...)

	engine, err := game.NewEngine(cfg, opts...)
	if err != nil {
		return nil, err
	}

	room := newRoom(id, engine, m.announcer, m.log)
	if m.store != nil {
		NewStatsRecorder(id, engine, m.store, room.log)
	}

	m.mu.Lock()
	m.rooms[id] = room
	m.mu.Unlock()

	if err := engine.Start(); err != nil {
		_ = m.CloseRoom(id)
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	m.log.Info().Str("session", id).Int("bots", cfg.BotCount).Msg("session created")
	return room, nil
}

// GetRoom récupère une session par son ID
func (m *Manager) GetRoom(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, exists := m.rooms[id]
	if !exists {
		return nil, fmt.Errorf("%s: %w", id, ErrRoomNotFound)
	}
	return room, nil
}

// ListRooms retourne les sessions actives, les plus anciennes d'abord
func (m *Manager) ListRooms() []Summary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })

	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, Summary{
			ID:            r.ID,
			CreatedAt:     r.CreatedAt,
			Phase:         r.Engine.Phase(),
			CurrentPlayer: r.Engine.CurrentPlayer(),
			Clients:       r.ClientCount(),
		})
	}
	return out
}

// GetRoomCount retourne le nombre total de sessions
func (m *Manager) GetRoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// CloseRoom termine et retire une session
func (m *Manager) CloseRoom(id string) error {
	m.mu.Lock()
	room, exists := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%s: %w", id, ErrRoomNotFound)
	}

	room.Close()
	return nil
}

// CleanupIdleRooms ferme les sessions restées sans client plus longtemps que timeout
func (m *Manager) CleanupIdleRooms(now time.Time, timeout time.Duration) int {
	m.mu.RLock()
	var stale []string
	for id, room := range m.rooms {
		if since, idle := room.IdleSince(); idle && now.Sub(since) >= timeout {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if err := m.CloseRoom(id); err == nil {
			closed++
		}
	}
	if closed > 0 {
		m.log.Info().Int("closed", closed).Msg("idle sessions cleaned up")
	}
	return closed
}

// Run nettoie périodiquement les sessions abandonnées jusqu'à l'annulation du contexte
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.RoomSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.CleanupIdleRooms(now, constants.ReconnectTimeout)
		case <-ctx.Done():
			return
		}
	}
}

// CloseAll termine toutes les sessions
func (m *Manager) CloseAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_ = m.CloseRoom(id)
	}
}
