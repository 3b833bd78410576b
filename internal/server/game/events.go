package game

import (
	"sort"
	"sync"
	"time"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

// EventKind identifie un événement émis par le moteur
type EventKind string

const (
	EventRollStarted      EventKind = "roll_started"
	EventDiceResolved     EventKind = "dice_resolved"
	EventPieceMoved       EventKind = "piece_moved"
	EventTurnChanged      EventKind = "turn_changed"
	EventNoLegalMove      EventKind = "no_legal_move"
	EventBonusTurnGranted EventKind = "bonus_turn_granted"
	EventSessionEnded     EventKind = "session_ended"
)

// Event est une notification de changement d'état.
// Piece vaut -1 quand l'événement ne concerne pas un pion.
type Event struct {
	Kind   EventKind
	Player int
	Piece  int
	Dice   int
	From   models.Location
	To     models.Location
	Legal  []int
	At     time.Time
}

// Handler reçoit les événements dans l'ordre des mutations
type Handler func(Event)

// Bus distribue les événements aux abonnés, hors du verrou du moteur.
// Un abonné peut rappeler le moteur: les événements produits sont mis
// en file et livrés par la boucle déjà en cours.
type Bus struct {
	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
	queue    []Event
	draining bool
}

// NewBus crée un bus vide
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe enregistre un abonné et retourne sa fonction de désabonnement
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Enqueue ajoute des événements à livrer
func (b *Bus) Enqueue(events ...Event) {
	b.mu.Lock()
	b.queue = append(b.queue, events...)
	b.mu.Unlock()
}

// Flush livre la file. Sans effet si une livraison est déjà en cours.
func (b *Bus) Flush() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true

	for len(b.queue) > 0 {
		ev := b.queue[0]
		b.queue = b.queue[1:]
		handlers := b.snapshot()
		b.mu.Unlock()

		for _, h := range handlers {
			h(ev)
		}

		b.mu.Lock()
	}

	b.draining = false
	b.mu.Unlock()
}

// snapshot retourne les abonnés dans l'ordre d'inscription; b.mu doit être tenu
func (b *Bus) snapshot() []Handler {
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Handler, len(ids))
	for i, id := range ids {
		out[i] = b.handlers[id]
	}
	return out
}
