// internal/server/game/engine.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/board"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-universe/pkg/ai"
)

// Engine gère la machine d'état du tour d'une session.
// C'est la seule autorité sur la légalité et la progression.
type Engine struct {
	mu      sync.Mutex
	board   *board.Board
	players [constants.MaxPlayers]*models.Player
	bots    map[int]*ai.Bot

	current  int
	dice     int // 0 = pas lancé
	phase    constants.Phase
	legal    []int
	autoRoll bool // le lancer en cours vient d'un bot
	started  bool
	closed   bool
	history  []models.TurnAction

	roller    DiceRoller
	scheduler Scheduler
	timer     Timer
	seq       uint64

	bus *Bus
	log zerolog.Logger
}

// Option configure un moteur
type Option func(*engineOptions)

type engineOptions struct {
	roller    DiceRoller
	scheduler Scheduler
	rand      *rand.Rand
	policy    ai.Policy
	logger    *zerolog.Logger
}

// WithDice remplace la source du dé
func WithDice(d DiceRoller) Option {
	return func(o *engineOptions) { o.roller = d }
}

// WithScheduler remplace la programmation des délais
func WithScheduler(s Scheduler) Option {
	return func(o *engineOptions) { o.scheduler = s }
}

// WithRand fixe le générateur partagé par le dé et les bots
func WithRand(r *rand.Rand) Option {
	return func(o *engineOptions) { o.rand = r }
}

// WithPolicy impose la politique de tous les bots
func WithPolicy(p ai.Policy) Option {
	return func(o *engineOptions) { o.policy = p }
}

// WithLogger remplace le logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *engineOptions) { o.logger = &l }
}

// NewEngine crée un nouveau moteur de jeu.
// Retourne une *ConfigError si la configuration est refusée.
func NewEngine(cfg models.GameConfig, opts ...Option) (*Engine, error) {
	cfg = NormalizeConfig(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rand == nil {
		o.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.roller == nil {
		o.roller = randomRoller{rand: o.rand}
	}
	if o.scheduler == nil {
		o.scheduler = realScheduler{}
	}
	if o.logger == nil {
		l := log.With().Str("component", "engine").Logger()
		o.logger = &l
	}

	e := &Engine{
		board:     board.Standard(),
		bots:      make(map[int]*ai.Bot),
		phase:     constants.PhaseAwaitingRoll,
		history:   make([]models.TurnAction, 0),
		roller:    o.roller,
		scheduler: o.scheduler,
		bus:       NewBus(),
		log:       *o.logger,
	}

	for i := 0; i < constants.MaxPlayers; i++ {
		isBot := cfg.IsBotSlot(i)
		e.players[i] = models.NewPlayer(i, cfg.PlayerNames[i], cfg.Colors[i], isBot)

		if isBot {
			bot, err := ai.NewBot(cfg.BotLevel, o.rand)
			if err != nil {
				return nil, &ConfigError{Problems: []string{err.Error()}, Kinds: []string{ProblemBotLevel}}
			}
			if o.policy != nil {
				bot.Policy = o.policy
			}
			e.bots[i] = bot
		}
	}

	return e, nil
}

// Subscribe abonne un handler aux événements du moteur
func (e *Engine) Subscribe(h Handler) func() {
	return e.bus.Subscribe(h)
}

// Start démarre la partie avec le joueur 0
func (e *Engine) Start() error {
	e.mu.Lock()
	err := e.startLocked()
	e.mu.Unlock()
	e.bus.Flush()
	return err
}

func (e *Engine) startLocked() error {
	if e.closed {
		return reject(constants.ErrSessionClosed, "session has ended")
	}
	if e.started {
		return reject(constants.ErrAlreadyStarted, "game has already started")
	}

	e.started = true
	e.current = 0
	e.phase = constants.PhaseAwaitingRoll

	e.log.Info().Str("player", e.players[0].Name).Int("bots", len(e.bots)).Msg("game started")
	e.emit(Event{Kind: EventTurnChanged, Player: e.current, Piece: -1})
	e.scheduleBotTurnLocked()
	return nil
}

// RequestRoll traite une demande de lancer d'un joueur humain
func (e *Engine) RequestRoll(player int) error {
	e.mu.Lock()
	err := e.checkRollLocked(player)
	if err == nil {
		e.beginRollLocked()
	} else {
		e.logRejection("roll", player, -1, err)
	}
	e.mu.Unlock()
	e.bus.Flush()
	return err
}

// RequestMove traite une demande de déplacement d'un joueur humain
func (e *Engine) RequestMove(player, piece int) error {
	e.mu.Lock()
	err := e.checkMoveLocked(player, piece)
	if err == nil {
		e.applyMoveLocked(piece)
	} else {
		e.logRejection("move", player, piece, err)
	}
	e.mu.Unlock()
	e.bus.Flush()
	return err
}

// Close termine la session; toute continuation en attente devient sans effet
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	e.closed = true
	e.seq++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}

	e.log.Info().Int("turns", len(e.history)).Msg("session closed")
	e.emit(Event{Kind: EventSessionEnded, Player: e.current, Piece: -1})
	e.mu.Unlock()
	e.bus.Flush()
}

// checkRollLocked valide un lancer; e.autoRoll distingue le lancer programmé d'un bot
func (e *Engine) checkRollLocked(player int) error {
	if e.closed {
		return reject(constants.ErrSessionClosed, "session has ended")
	}
	if !e.started {
		return reject(constants.ErrGameNotStarted, "game has not started")
	}
	if e.phase == constants.PhaseRolling {
		return reject(constants.ErrRollInProgress, "dice are already rolling")
	}
	if player != e.current {
		return reject(constants.ErrNotYourTurn, "it's not your turn")
	}
	if e.players[player].IsBot && !e.autoRoll {
		return reject(constants.ErrBotControlled, "player is controlled by the computer")
	}
	if e.phase == constants.PhaseAwaitingMove {
		return reject(constants.ErrMovePending, "a move must be made before rolling again")
	}
	return nil
}

func (e *Engine) checkMoveLocked(player, piece int) error {
	if e.closed {
		return reject(constants.ErrSessionClosed, "session has ended")
	}
	if !e.started {
		return reject(constants.ErrGameNotStarted, "game has not started")
	}
	if player != e.current {
		return reject(constants.ErrNotYourTurn, "it's not your turn")
	}
	if e.players[player].IsBot {
		return reject(constants.ErrBotControlled, "player is controlled by the computer")
	}
	if e.phase == constants.PhaseRolling {
		return reject(constants.ErrRollInProgress, "dice are still rolling")
	}
	if e.phase != constants.PhaseAwaitingMove {
		return reject(constants.ErrNoRollPending, "roll the dice first")
	}
	if piece < 0 || piece >= constants.PiecesPerPlayer {
		return reject(constants.ErrInvalidPiece, fmt.Sprintf("piece %d does not exist", piece))
	}
	if !containsInt(e.legal, piece) {
		return reject(constants.ErrInvalidMove, fmt.Sprintf("piece %d cannot be moved", piece))
	}
	return nil
}

// beginRollLocked passe en ROLLING et programme la fin de l'animation
func (e *Engine) beginRollLocked() {
	e.phase = constants.PhaseRolling

	e.log.Debug().Int("player", e.current).Bool("auto", e.autoRoll).Msg("roll started")
	e.emit(Event{Kind: EventRollStarted, Player: e.current, Piece: -1})
	e.scheduleLocked(constants.RollDuration, e.finishRollLocked)
}

// finishRollLocked fixe la valeur du dé et calcule les coups légaux
func (e *Engine) finishRollLocked() {
	player := e.players[e.current]
	value := e.roller.Roll()

	e.dice = value
	e.phase = constants.PhaseAwaitingMove
	e.autoRoll = false
	e.legal = LegalMoves(player, value)

	e.log.Debug().Int("player", e.current).Int("dice", value).Ints("legal", e.legal).Msg("dice resolved")
	e.emit(Event{Kind: EventDiceResolved, Player: e.current, Piece: -1, Dice: value, Legal: copyInts(e.legal)})

	if len(e.legal) == 0 {
		e.history = append(e.history, models.TurnAction{
			Player:    e.current,
			DiceValue: value,
			Piece:     -1,
			Skipped:   true,
			Timestamp: time.Now(),
		})
		e.emit(Event{Kind: EventNoLegalMove, Player: e.current, Piece: -1, Dice: value})
		e.scheduleLocked(constants.NoMoveGraceDelay, e.advanceTurnLocked)
		return
	}

	if bot, ok := e.bots[e.current]; ok {
		e.scheduleLocked(bot.ThinkDelay, e.botMoveLocked)
	}
}

func (e *Engine) botMoveLocked() {
	bot := e.bots[e.current]
	piece := bot.SelectPiece(copyInts(e.legal))
	if !containsInt(e.legal, piece) {
		e.log.Error().Int("player", e.current).Int("piece", piece).Msg("bot chose an illegal piece")
		piece = e.legal[0]
	}
	e.applyMoveLocked(piece)
}

// applyMoveLocked déplace le pion puis accorde un bonus ou passe le tour
func (e *Engine) applyMoveLocked(piece int) {
	player := e.players[e.current]
	p := player.Pieces[piece]
	from := p.Location

	var to models.Location
	if from.IsHome() {
		to = models.Path(e.board.EntryCell(player.Index))
	} else {
		to = models.Path(e.board.Advance(from.Cell, e.dice))
	}
	p.Location = to

	dice := e.dice
	bonus := dice == constants.RollForExtraTurn

	e.legal = nil
	e.history = append(e.history, models.TurnAction{
		Player:    e.current,
		DiceValue: dice,
		Piece:     piece,
		From:      from,
		To:        to,
		Bonus:     bonus,
		Timestamp: time.Now(),
	})

	e.log.Debug().Int("player", e.current).Int("piece", piece).Stringer("from", from).Stringer("to", to).Msg("piece moved")
	e.emit(Event{Kind: EventPieceMoved, Player: e.current, Piece: piece, Dice: dice, From: from, To: to})

	if !bonus {
		e.advanceTurnLocked()
		return
	}

	e.dice = 0
	e.emit(Event{Kind: EventBonusTurnGranted, Player: e.current, Piece: -1, Dice: dice})

	if _, ok := e.bots[e.current]; ok {
		e.phase = constants.PhaseResolvingBonus
		e.scheduleLocked(constants.BonusTurnDelay, e.autoRollLocked)
		return
	}
	e.phase = constants.PhaseAwaitingRoll
}

// advanceTurnLocked passe au joueur suivant
func (e *Engine) advanceTurnLocked() {
	e.current = (e.current + 1) % constants.MaxPlayers
	e.dice = 0
	e.legal = nil
	e.autoRoll = false
	e.phase = constants.PhaseAwaitingRoll

	e.log.Debug().Int("player", e.current).Msg("turn changed")
	e.emit(Event{Kind: EventTurnChanged, Player: e.current, Piece: -1})
	e.scheduleBotTurnLocked()
}

func (e *Engine) scheduleBotTurnLocked() {
	if _, ok := e.bots[e.current]; ok {
		e.scheduleLocked(constants.BotTurnDelay, e.autoRollLocked)
	}
}

func (e *Engine) autoRollLocked() {
	e.autoRoll = true
	if err := e.checkRollLocked(e.current); err != nil {
		e.autoRoll = false
		e.logRejection("auto roll", e.current, -1, err)
		return
	}
	e.beginRollLocked()
}

// scheduleLocked programme fn; elle ne s'exécute que si elle est encore
// la continuation courante et que la session est ouverte
func (e *Engine) scheduleLocked(d time.Duration, fn func()) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.seq++
	seq := e.seq

	e.timer = e.scheduler.AfterFunc(d, func() {
		e.mu.Lock()
		if e.closed || seq != e.seq {
			e.mu.Unlock()
			return
		}
		e.timer = nil
		fn()
		e.mu.Unlock()
		e.bus.Flush()
	})
}

func (e *Engine) emit(ev Event) {
	ev.At = time.Now()
	e.bus.Enqueue(ev)
}

func (e *Engine) logRejection(action string, player, piece int, err error) {
	e.log.Info().
		Str("action", action).
		Int("player", player).
		Int("piece", piece).
		Str("phase", string(e.phase)).
		Str("code", RejectionCode(err)).
		Msg("request rejected")
}

// LegalMoves calcule les pions jouables pour une valeur de dé.
// Un pion à la maison exige un 6; un pion sur le chemin peut toujours bouger.
func LegalMoves(player *models.Player, dice int) []int {
	legal := make([]int, 0, constants.PiecesPerPlayer)
	for i, p := range player.Pieces {
		if p.Location.IsHome() {
			if dice == constants.RollToStart {
				legal = append(legal, i)
			}
			continue
		}
		legal = append(legal, i)
	}
	return legal
}

// Phase retourne la phase courante
func (e *Engine) Phase() constants.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// CurrentPlayer retourne l'index du joueur actif
func (e *Engine) CurrentPlayer() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// LastDice retourne la dernière valeur du dé, false si non lancé
func (e *Engine) LastDice() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dice, e.dice != 0
}

// LegalMoves retourne les coups légaux du joueur actif
func (e *Engine) LegalMoves() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyInts(e.legal)
}

// PieceLocation retourne l'emplacement d'un pion
func (e *Engine) PieceLocation(player, piece int) (models.Location, error) {
	if player < 0 || player >= constants.MaxPlayers || piece < 0 || piece >= constants.PiecesPerPlayer {
		return models.Location{}, fmt.Errorf("no piece %d for player %d", piece, player)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players[player].Pieces[piece].Location, nil
}

// IsBot indique si le joueur est contrôlé par un bot
func (e *Engine) IsBot(player int) bool {
	_, ok := e.bots[player]
	return ok
}

// Players retourne une copie des joueurs
func (e *Engine) Players() []models.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playersLocked()
}

func (e *Engine) playersLocked() []models.Player {
	out := make([]models.Player, len(e.players))
	for i, p := range e.players {
		out[i] = p.Clone()
	}
	return out
}

// History retourne les tours résolus
func (e *Engine) History() []models.TurnAction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.TurnAction, len(e.history))
	copy(out, e.history)
	return out
}

// Snapshot retourne l'état complet pour le rendu
func (e *Engine) Snapshot() models.GameSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.GameSnapshot{
		Players:       e.playersLocked(),
		CurrentPlayer: e.current,
		Phase:         e.phase,
		LastDice:      e.dice,
		LegalMoves:    copyInts(e.legal),
		Started:       e.started,
		Closed:        e.closed,
	}
}

// Board retourne la topologie consultée par le moteur
func (e *Engine) Board() *board.Board {
	return e.board
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func copyInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
