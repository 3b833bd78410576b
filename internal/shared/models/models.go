// internal/shared/models/models.go
package models

import (
	"fmt"
	"time"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
)

// LocationState indique où se trouve un pion
type LocationState string

const (
	AtHome LocationState = "home"
	OnPath LocationState = "path"
)

// Location est l'emplacement d'un pion: à la maison ou sur une case du chemin
type Location struct {
	State LocationState `json:"state"`
	Cell  int           `json:"cell"` // significatif seulement sur le chemin
}

// Home retourne l'emplacement maison
func Home() Location {
	return Location{State: AtHome, Cell: -1}
}

// Path retourne l'emplacement sur la case donnée
func Path(cell int) Location {
	return Location{State: OnPath, Cell: cell}
}

// IsHome indique si le pion est encore à la maison
func (l Location) IsHome() bool {
	return l.State != OnPath
}

func (l Location) String() string {
	if l.IsHome() {
		return "home"
	}
	return fmt.Sprintf("cell %d", l.Cell)
}

// Piece représente un pion
type Piece struct {
	ID       int      `json:"id"`
	Location Location `json:"location"`
}

// Player représente un joueur d'une partie
type Player struct {
	Index  int                               `json:"index"`
	Name   string                            `json:"name"`
	Color  constants.PlayerColor             `json:"color"`
	IsBot  bool                              `json:"is_bot"`
	Pieces [constants.PiecesPerPlayer]*Piece `json:"pieces"`
}

// GameConfig est la configuration initiale d'une partie
type GameConfig struct {
	PlayerNames [constants.MaxPlayers]string                `json:"player_names"`
	Colors      [constants.MaxPlayers]constants.PlayerColor `json:"colors"`
	BotCount    int                                         `json:"bot_count"`
	BotLevel    string                                      `json:"bot_level,omitempty"`
}

// IsBotSlot indique si l'index est contrôlé par un bot (les N derniers)
func (c GameConfig) IsBotSlot(index int) bool {
	return index >= constants.MaxPlayers-c.BotCount
}

// HumanCount retourne le nombre de joueurs humains
func (c GameConfig) HumanCount() int {
	return constants.MaxPlayers - c.BotCount
}

// TurnAction représente une action de tour résolue
type TurnAction struct {
	Player    int       `json:"player"`
	DiceValue int       `json:"dice_value"`
	Piece     int       `json:"piece"` // -1 si aucun coup possible
	From      Location  `json:"from"`
	To        Location  `json:"to"`
	Bonus     bool      `json:"bonus"`
	Skipped   bool      `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}

// GameSnapshot est une copie en lecture seule de l'état de la partie
type GameSnapshot struct {
	SessionID     string          `json:"session_id,omitempty"`
	Players       []Player        `json:"players"`
	CurrentPlayer int             `json:"current_player"`
	Phase         constants.Phase `json:"phase"`
	LastDice      int             `json:"last_dice"` // 0 = pas encore lancé
	LegalMoves    []int           `json:"legal_moves"`
	Started       bool            `json:"started"`
	Closed        bool            `json:"closed"`
}

// NetworkMessage représente un message réseau
type NetworkMessage struct {
	Type      constants.MessageType `json:"type"`
	Payload   interface{}           `json:"payload,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
	SessionID string                `json:"session_id,omitempty"`
}

// Payloads spécifiques
type RollDicePayload struct {
	Player int `json:"player"`
}

type MovePiecePayload struct {
	Player int `json:"player"`
	Piece  int `json:"piece"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AnnouncePayload struct {
	Text string `json:"text"`
}

type DiceResolvedPayload struct {
	Player     int   `json:"player"`
	DiceValue  int   `json:"dice_value"`
	LegalMoves []int `json:"legal_moves"`
}

type PieceMovedPayload struct {
	Player int      `json:"player"`
	Piece  int      `json:"piece"`
	From   Location `json:"from"`
	To     Location `json:"to"`
}

type PlayerPayload struct {
	Player int `json:"player"`
}

// NewPlayer crée un nouveau joueur avec ses pions à la maison
func NewPlayer(index int, name string, color constants.PlayerColor, isBot bool) *Player {
	p := &Player{
		Index: index,
		Name:  name,
		Color: color,
		IsBot: isBot,
	}
	for i := range p.Pieces {
		p.Pieces[i] = &Piece{ID: i, Location: Home()}
	}
	return p
}

// Clone copie le joueur et ses pions
func (p *Player) Clone() Player {
	c := *p
	for i, piece := range p.Pieces {
		cp := *piece
		c.Pieces[i] = &cp
	}
	return c
}

// DefaultGameConfig retourne la configuration par défaut: 4 humains, palette standard
func DefaultGameConfig() GameConfig {
	cfg := GameConfig{BotLevel: constants.BotLevelRandom}
	for i := 0; i < constants.MaxPlayers; i++ {
		cfg.PlayerNames[i] = DefaultPlayerName(i)
		cfg.Colors[i] = constants.Palette[i]
	}
	return cfg
}

// DefaultPlayerName retourne "Player N"
func DefaultPlayerName(index int) string {
	return fmt.Sprintf("Player %d", index+1)
}
