// internal/shared/constants/constants.go
package constants

import "time"

const (
	// Configuration réseau
	DefaultServerHost = "localhost"
	DefaultServerPort = "8080"

	// Joueurs
	MaxPlayers      = 4
	MaxBots         = 4
	PiecesPerPlayer = 4

	// Configuration du plateau
	BoardSize      = 15
	TotalCells     = 52
	SafeCells      = 8
	FirstEntryCell = 1
	EntryOffset    = 13
	SafeOffset     = 8

	// Règles du jeu
	DiceMin          = 1
	DiceMax          = 6
	RollToStart      = 6
	RollForExtraTurn = 6

	// Longueur maximale d'un nom de joueur
	MaxNameLength = 20

	// Délais de présentation (fixes)
	RollTickInterval  = 100 * time.Millisecond
	RollTicks         = 10
	RollSettleDelay   = 300 * time.Millisecond
	RollDuration      = RollTicks*RollTickInterval + RollSettleDelay
	BotThinkDelay     = 1000 * time.Millisecond
	BotTurnDelay      = 500 * time.Millisecond
	BonusTurnDelay    = 500 * time.Millisecond
	NoMoveGraceDelay  = 1000 * time.Millisecond
	ReconnectTimeout  = 60 * time.Second
	RoomSweepInterval = 30 * time.Second

	// Codes d'erreur
	ErrInvalidMove     = "INVALID_MOVE"
	ErrInvalidPiece    = "INVALID_PIECE"
	ErrNotYourTurn     = "NOT_YOUR_TURN"
	ErrRollInProgress  = "ROLL_IN_PROGRESS"
	ErrMovePending     = "MOVE_PENDING"
	ErrNoRollPending   = "NO_ROLL_PENDING"
	ErrBotControlled   = "BOT_CONTROLLED"
	ErrGameNotStarted  = "GAME_NOT_STARTED"
	ErrAlreadyStarted  = "GAME_ALREADY_STARTED"
	ErrSessionClosed   = "SESSION_CLOSED"
	ErrInvalidConfig   = "INVALID_CONFIG"
	ErrSessionNotFound = "SESSION_NOT_FOUND"
	ErrBadMessage      = "BAD_MESSAGE"
)

// Couleurs des joueurs
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorBlue   PlayerColor = "blue"
	ColorGreen  PlayerColor = "green"
	ColorYellow PlayerColor = "yellow"
)

// Palette fixe, dans l'ordre par défaut des joueurs
var Palette = [MaxPlayers]PlayerColor{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// IsValidColor indique si la couleur appartient à la palette
func IsValidColor(c PlayerColor) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// Phases de la machine d'état du tour
type Phase string

const (
	PhaseAwaitingRoll   Phase = "awaiting_roll"
	PhaseRolling        Phase = "rolling"
	PhaseAwaitingMove   Phase = "awaiting_move"
	PhaseResolvingBonus Phase = "resolving_bonus"
)

// Niveaux de bot connus
const (
	BotLevelRandom = "random"
)

// Types de messages réseau
type MessageType string

const (
	// Client -> Serveur
	MsgRollDice  MessageType = "ROLL_DICE"
	MsgMovePiece MessageType = "MOVE_PIECE"

	// Serveur -> Client
	MsgRollStarted      MessageType = "ROLL_STARTED"
	MsgDiceResolved     MessageType = "DICE_RESOLVED"
	MsgPieceMoved       MessageType = "PIECE_MOVED"
	MsgTurnChanged      MessageType = "TURN_CHANGED"
	MsgNoLegalMove      MessageType = "NO_LEGAL_MOVE"
	MsgBonusTurnGranted MessageType = "BONUS_TURN_GRANTED"
	MsgSessionEnded     MessageType = "SESSION_ENDED"
	MsgGameState        MessageType = "GAME_STATE"
	MsgAnnounce         MessageType = "ANNOUNCE"
	MsgError            MessageType = "ERROR"

	// Bidirectionnel
	MsgPing MessageType = "PING"
	MsgPong MessageType = "PONG"
)
