// internal/server/room/stats.go
package room

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/pkg/database"
)

const saveTimeout = 5 * time.Second

// StatsStore persiste les compteurs d'une session terminée
type StatsStore interface {
	SaveSession(ctx context.Context, s database.SessionSummary) error
}

// StatsRecorder compte les lancers et les coups d'une session
// et les enregistre quand elle se termine
type StatsRecorder struct {
	mu      sync.Mutex
	summary database.SessionSummary
	store   StatsStore
	saved   bool
	log     zerolog.Logger
}

// NewStatsRecorder abonne un compteur au moteur
func NewStatsRecorder(sessionID string, engine *game.Engine, store StatsStore, log zerolog.Logger) *StatsRecorder {
	s := &StatsRecorder{
		store:   store,
		log:     log,
		summary: database.SessionSummary{
			ID:        sessionID,
			StartedAt: time.Now().UTC(),
		},
	}

	for _, p := range engine.Players() {
		s.summary.Players = append(s.summary.Players, database.PlayerSummary{
			Index: p.Index,
			Name:  p.Name,
			Color: string(p.Color),
			IsBot: p.IsBot,
		})
		if p.IsBot {
			s.summary.BotCount++
		}
	}

	engine.Subscribe(s.HandleEvent)
	return s
}

// HandleEvent met à jour les compteurs
func (s *StatsRecorder) HandleEvent(ev game.Event) {
	s.mu.Lock()

	if ev.Player >= 0 && ev.Player < len(s.summary.Players) {
		p := &s.summary.Players[ev.Player]
		switch ev.Kind {
		case game.EventDiceResolved:
			p.DiceRolls++
			if ev.Dice == constants.RollForExtraTurn {
				p.SixesRolled++
			}
		case game.EventPieceMoved:
			p.Moves++
			if ev.From.IsHome() {
				p.PiecesEntered++
			}
			s.summary.Turns++
		case game.EventNoLegalMove:
			p.TurnsSkipped++
			s.summary.Turns++
		}
	}

	if ev.Kind != game.EventSessionEnded || s.saved {
		s.mu.Unlock()
		return
	}

	s.saved = true
	s.summary.EndedAt = time.Now().UTC()
	summary := s.snapshotLocked()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.store.SaveSession(ctx, summary); err != nil {
		s.log.Error().Err(err).Str("session", summary.ID).Msg("failed to save session stats")
		return
	}
	s.log.Info().Str("session", summary.ID).Int("turns", summary.Turns).Msg("session stats saved")
}

// Summary retourne une copie des compteurs courants
func (s *StatsRecorder) Summary() database.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *StatsRecorder) snapshotLocked() database.SessionSummary {
	out := s.summary
	out.Players = make([]database.PlayerSummary, len(s.summary.Players))
	copy(out.Players, s.summary.Players)
	return out
}
