// pkg/ai/ai.go
package ai

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
)

// Policy choisit un pion parmi les coups légaux.
// Ne doit jamais être appelée avec un ensemble vide.
type Policy interface {
	ChooseMove(legal []int) int
}

// RandomPolicy choisit uniformément parmi les coups légaux
type RandomPolicy struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandomPolicy crée une politique aléatoire
func NewRandomPolicy(r *rand.Rand) *RandomPolicy {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomPolicy{rand: r}
}

// ChooseMove retourne un index de pion tiré uniformément dans legal
func (p *RandomPolicy) ChooseMove(legal []int) int {
	if len(legal) == 0 {
		panic("ai: ChooseMove called with empty legal set")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return legal[p.rand.Intn(len(legal))]
}

// Bot représente un joueur contrôlé par l'ordinateur
type Bot struct {
	Level      string
	ThinkDelay time.Duration
	Policy     Policy
}

// NewPolicy crée la politique correspondant au niveau
func NewPolicy(level string, r *rand.Rand) (Policy, error) {
	switch level {
	case "", constants.BotLevelRandom:
		return NewRandomPolicy(r), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}

// NewBot crée un bot avec son délai de réflexion fixe
func NewBot(level string, r *rand.Rand) (*Bot, error) {
	policy, err := NewPolicy(level, r)
	if err != nil {
		return nil, err
	}
	if level == "" {
		level = constants.BotLevelRandom
	}

	return &Bot{
		Level:      level,
		ThinkDelay: constants.BotThinkDelay,
		Policy:     policy,
	}, nil
}

// SelectPiece délègue le choix à la politique
func (b *Bot) SelectPiece(legal []int) int {
	return b.Policy.ChooseMove(legal)
}
