// internal/client/audio/manager.go
package audio

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
)

// Noms des sons du jeu
const (
	CueDiceRoll   = "dice_roll"
	CueTokenMove  = "token_move"
	CueTokenEnter = "token_enter"
	CueYourTurn   = "your_turn"
	CueBonusTurn  = "bonus_turn"
	CueNoMove     = "no_move"
	CueGameOver   = "game_over"
	CueClick      = "button_click"
	CueMusic      = "background_music"
)

// Manager gère tous les sons du jeu
type Manager struct {
	sounds      map[string]*Sound
	musicVolume float64
	sfxVolume   float64
	enabled     bool
	output      Output
	log         zerolog.Logger
	mu          sync.RWMutex
}

// Sound représente un fichier audio
type Sound struct {
	Name     string
	FilePath string
	IsLoaded bool
}

// Output joue effectivement un son
type Output interface {
	Play(snd *Sound, volume float64, loop bool) error
	Stop()
}

// logOutput se contente de journaliser la lecture
// TODO: brancher une vraie sortie audio (oto ou beep) derrière Output
type logOutput struct {
	log zerolog.Logger
}

func (o logOutput) Play(snd *Sound, volume float64, loop bool) error {
	o.log.Debug().Str("sound", snd.Name).Bool("loop", loop).Float64("volume", volume).Msg("playing sound")
	return nil
}

func (o logOutput) Stop() {
	o.log.Debug().Msg("music stopped")
}

// NewManager crée un nouveau gestionnaire audio; output nil journalise seulement
func NewManager(output Output) *Manager {
	l := log.With().Str("component", "audio").Logger()
	if output == nil {
		output = logOutput{log: l}
	}
	return &Manager{
		sounds:      make(map[string]*Sound),
		musicVolume: 0.7,
		sfxVolume:   0.8,
		enabled:     true,
		output:      output,
		log:         l,
	}
}

// LoadSound enregistre un son
func (m *Manager) LoadSound(name, filepath string) error {
	if name == "" {
		return fmt.Errorf("sound name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sounds[name] = &Sound{
		Name:     name,
		FilePath: filepath,
		IsLoaded: true,
	}
	m.log.Debug().Str("sound", name).Msg("sound loaded")
	return nil
}

// PlaySound joue un son avec le volume des effets
func (m *Manager) PlaySound(name string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.enabled {
		return nil
	}

	snd, exists := m.sounds[name]
	if !exists {
		return fmt.Errorf("sound not found: %s", name)
	}
	if !snd.IsLoaded {
		return fmt.Errorf("sound not loaded: %s", name)
	}

	return m.output.Play(snd, m.sfxVolume, false)
}

// PlayMusic joue de la musique de fond
func (m *Manager) PlayMusic(name string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.enabled {
		return nil
	}

	snd, exists := m.sounds[name]
	if !exists {
		return fmt.Errorf("music not found: %s", name)
	}
	return m.output.Play(snd, m.musicVolume, true)
}

// HandleEvent traduit un événement du moteur en son.
// Peut être passé tel quel à Engine.Subscribe.
func (m *Manager) HandleEvent(ev game.Event) {
	cue := CueFor(ev)
	if cue == "" {
		return
	}
	if err := m.PlaySound(cue); err != nil {
		m.log.Warn().Err(err).Str("event", string(ev.Kind)).Msg("failed to play cue")
	}
}

// CueFor retourne le son associé à un événement, "" si aucun
func CueFor(ev game.Event) string {
	switch ev.Kind {
	case game.EventRollStarted:
		return CueDiceRoll
	case game.EventPieceMoved:
		if ev.From.IsHome() {
			return CueTokenEnter
		}
		return CueTokenMove
	case game.EventTurnChanged:
		return CueYourTurn
	case game.EventBonusTurnGranted:
		return CueBonusTurn
	case game.EventNoLegalMove:
		return CueNoMove
	case game.EventSessionEnded:
		return CueGameOver
	}
	return ""
}

// SetMusicVolume définit le volume de la musique (0.0 - 1.0)
func (m *Manager) SetMusicVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicVolume = clamp(volume)
}

// SetSFXVolume définit le volume des effets sonores (0.0 - 1.0)
func (m *Manager) SetSFXVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolume = clamp(volume)
}

// Volumes retourne les volumes musique et effets
func (m *Manager) Volumes() (music, sfx float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.musicVolume, m.sfxVolume
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Enable active le son
func (m *Manager) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
	m.log.Info().Msg("audio enabled")
}

// Disable désactive le son
func (m *Manager) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
	m.output.Stop()
	m.log.Info().Msg("audio disabled")
}

// IsEnabled retourne l'état du son
func (m *Manager) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// LoadAllSounds charge tous les sons du jeu
func (m *Manager) LoadAllSounds() {
	sounds := map[string]string{
		CueDiceRoll:   "assets/sounds/dice_roll.mp3",
		CueTokenMove:  "assets/sounds/token_move.mp3",
		CueTokenEnter: "assets/sounds/token_enter.mp3",
		CueYourTurn:   "assets/sounds/your_turn.mp3",
		CueBonusTurn:  "assets/sounds/bonus_turn.mp3",
		CueNoMove:     "assets/sounds/no_move.mp3",
		CueGameOver:   "assets/sounds/game_over.mp3",
		CueClick:      "assets/sounds/button_click.mp3",
		CueMusic:      "assets/sounds/background_music.mp3",
	}

	for name, path := range sounds {
		if err := m.LoadSound(name, path); err != nil {
			m.log.Warn().Err(err).Str("sound", name).Msg("failed to load sound")
		}
	}
}

// Cleanup libère les ressources audio
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.output.Stop()
	m.sounds = make(map[string]*Sound)
}
