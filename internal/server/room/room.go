// internal/server/room/room.go
package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/obrien-tchaleu/ludo-universe/internal/client/announce"
	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/protocol"
)

const clientBuffer = 256

// Client est un abonné de rendu attaché à une salle
type Client struct {
	ID   string
	send chan *models.NetworkMessage
}

// NewClient crée un client avec sa file d'envoi
func NewClient(id string) *Client {
	return &Client{
		ID:   id,
		send: make(chan *models.NetworkMessage, clientBuffer),
	}
}

// Send retourne la file des messages à écrire; fermée au détachement
func (c *Client) Send() <-chan *models.NetworkMessage {
	return c.send
}

// Room représente une session active et ses clients
type Room struct {
	ID        string
	Engine    *game.Engine
	CreatedAt time.Time

	announcer   *announce.Announcer
	validator   *protocol.Validator
	clients     map[string]*Client
	idleSince   time.Time
	closed      bool
	unsubscribe func()
	mu          sync.RWMutex
	log         zerolog.Logger
}

func newRoom(id string, engine *game.Engine, announcer *announce.Announcer, log zerolog.Logger) *Room {
	now := time.Now()
	r := &Room{
		ID:        id,
		Engine:    engine,
		CreatedAt: now,
		announcer: announcer,
		validator: protocol.NewValidator(),
		clients:   make(map[string]*Client),
		idleSince: now,
		log:       log.With().Str("session", id).Logger(),
	}
	r.unsubscribe = engine.Subscribe(r.handleEvent)
	return r
}

// handleEvent diffuse l'événement et son annonce à tous les clients.
// Les files ne sont fermées qu'après la diffusion de session_ended.
func (r *Room) handleEvent(ev game.Event) {
	r.Broadcast(EventMessage(r.ID, ev))

	if r.announcer != nil {
		if text := r.announcer.Event(ev, r.Engine.Players()); text != "" {
			r.Broadcast(protocol.NewMessage(constants.MsgAnnounce, r.ID, models.AnnouncePayload{Text: text}))
		}
	}

	if ev.Kind == game.EventSessionEnded {
		r.detachAll()
	}
}

// Attach ajoute un client et lui envoie l'état courant
func (r *Room) Attach(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("session %s is closed", r.ID)
	}
	if _, exists := r.clients[c.ID]; exists {
		return fmt.Errorf("client %s already attached", c.ID)
	}

	r.clients[c.ID] = c
	r.sendLocked(c, r.stateMessage())
	r.log.Info().Str("client", c.ID).Int("clients", len(r.clients)).Msg("client attached")
	return nil
}

// Detach retire un client et ferme sa file d'envoi
func (r *Room) Detach(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.clients[clientID]
	if !exists {
		return
	}
	delete(r.clients, clientID)
	close(c.send)

	if len(r.clients) == 0 {
		r.idleSince = time.Now()
	}
	r.log.Info().Str("client", clientID).Int("clients", len(r.clients)).Msg("client detached")
}

// HandleMessage traite un message entrant d'un client.
// Les refus sont renvoyés au seul client sous forme d'ERROR et d'ANNOUNCE.
func (r *Room) HandleMessage(clientID string, msg *models.NetworkMessage) {
	payload, err := r.validator.ValidateMessage(msg)
	if err != nil {
		r.SendTo(clientID, protocol.ErrorMessage(r.ID, constants.ErrBadMessage, err.Error()))
		return
	}

	switch p := payload.(type) {
	case models.RollDicePayload:
		err = r.Engine.RequestRoll(p.Player)
	case models.MovePiecePayload:
		err = r.Engine.RequestMove(p.Player, p.Piece)
	default: // PING
		r.SendTo(clientID, protocol.NewMessage(constants.MsgPong, r.ID, nil))
		return
	}

	if err != nil {
		r.SendRejection(clientID, err)
	}
}

// SendRejection envoie l'erreur et sa version localisée à un client
func (r *Room) SendRejection(clientID string, err error) {
	code := game.RejectionCode(err)
	if code == "" {
		code = constants.ErrBadMessage
	}
	r.SendTo(clientID, protocol.ErrorMessage(r.ID, code, err.Error()))

	if r.announcer != nil {
		r.SendTo(clientID, protocol.NewMessage(constants.MsgAnnounce, r.ID,
			models.AnnouncePayload{Text: r.announcer.Rejection(err)}))
	}
}

// Broadcast envoie un message à tous les clients; un client saturé perd le message
func (r *Room) Broadcast(msg *models.NetworkMessage) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		r.sendLocked(c, msg)
	}
}

// SendTo envoie un message à un seul client
func (r *Room) SendTo(clientID string, msg *models.NetworkMessage) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[clientID]; ok {
		r.sendLocked(c, msg)
	}
}

func (r *Room) sendLocked(c *Client, msg *models.NetworkMessage) {
	select {
	case c.send <- msg:
	default:
		r.log.Warn().Str("client", c.ID).Str("type", string(msg.Type)).Msg("client buffer full, message dropped")
	}
}

func (r *Room) stateMessage() *models.NetworkMessage {
	return protocol.NewMessage(constants.MsgGameState, r.ID, r.Snapshot())
}

// Snapshot retourne l'état du moteur étiqueté avec l'ID de session
func (r *Room) Snapshot() models.GameSnapshot {
	snap := r.Engine.Snapshot()
	snap.SessionID = r.ID
	return snap
}

// ClientCount retourne le nombre de clients attachés
func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// IdleSince retourne depuis quand la salle n'a plus de client, false si elle en a
func (r *Room) IdleSince() (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.clients) > 0 {
		return time.Time{}, false
	}
	return r.idleSince, true
}

// Close termine la session. Les clients sont détachés à la réception de
// session_ended, qui peut arriver après le retour de Close si un autre
// appelant vide déjà le bus.
func (r *Room) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.Engine.Close()
}

// detachAll se désabonne du moteur puis ferme toutes les files d'envoi
func (r *Room) detachAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	for id, c := range r.clients {
		close(c.send)
		delete(r.clients, id)
	}
	r.log.Info().Msg("session closed")
}

// EventMessage convertit un événement du moteur en message réseau
func EventMessage(sessionID string, ev game.Event) *models.NetworkMessage {
	switch ev.Kind {
	case game.EventRollStarted:
		return protocol.NewMessage(constants.MsgRollStarted, sessionID, models.PlayerPayload{Player: ev.Player})
	case game.EventDiceResolved:
		return protocol.NewMessage(constants.MsgDiceResolved, sessionID, models.DiceResolvedPayload{
			Player: ev.Player, DiceValue: ev.Dice, LegalMoves: ev.Legal,
		})
	case game.EventPieceMoved:
		return protocol.NewMessage(constants.MsgPieceMoved, sessionID, models.PieceMovedPayload{
			Player: ev.Player, Piece: ev.Piece, From: ev.From, To: ev.To,
		})
	case game.EventTurnChanged:
		return protocol.NewMessage(constants.MsgTurnChanged, sessionID, models.PlayerPayload{Player: ev.Player})
	case game.EventNoLegalMove:
		return protocol.NewMessage(constants.MsgNoLegalMove, sessionID, models.DiceResolvedPayload{
			Player: ev.Player, DiceValue: ev.Dice, LegalMoves: []int{},
		})
	case game.EventBonusTurnGranted:
		return protocol.NewMessage(constants.MsgBonusTurnGranted, sessionID, models.PlayerPayload{Player: ev.Player})
	default:
		return protocol.NewMessage(constants.MsgSessionEnded, sessionID, nil)
	}
}
