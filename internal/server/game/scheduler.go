package game

import (
	"math/rand"
	"time"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
)

// Timer est une continuation programmée
type Timer interface {
	Stop() bool
}

// Scheduler programme les continuations temporisées du moteur
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DiceRoller fournit la valeur du dé
type DiceRoller interface {
	Roll() int
}

type randomRoller struct {
	rand *rand.Rand
}

// Roll tire uniformément dans [1, 6]; appelé sous le verrou du moteur
func (r randomRoller) Roll() int {
	return r.rand.Intn(constants.DiceMax-constants.DiceMin+1) + constants.DiceMin
}
