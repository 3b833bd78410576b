// internal/shared/board/board.go
package board

import (
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
)

// Cell représente une case du chemin circulaire
type Cell struct {
	Position int  `json:"position"`
	IsSafe   bool `json:"is_safe"`
	IsEntry  bool `json:"is_entry"`
	Owner    int  `json:"owner"` // joueur dont c'est la case d'entrée, -1 sinon
}

// Board est la géométrie immuable du plateau: 52 cases, 4 entrées, 8 cases sûres
type Board struct {
	cells   [constants.TotalCells]Cell
	entries [constants.MaxPlayers]int
}

var standard = New()

// New calcule la topologie du plateau
func New() *Board {
	b := &Board{}
	for i := range b.cells {
		b.cells[i] = Cell{Position: i, Owner: -1}
	}

	for p := 0; p < constants.MaxPlayers; p++ {
		entry := (constants.FirstEntryCell + constants.EntryOffset*p) % constants.TotalCells
		b.entries[p] = entry

		b.cells[entry].IsEntry = true
		b.cells[entry].IsSafe = true
		b.cells[entry].Owner = p

		// Case intermédiaire sûre entre deux entrées
		mid := (entry + constants.SafeOffset) % constants.TotalCells
		b.cells[mid].IsSafe = true
	}

	return b
}

// Standard retourne le plateau partagé
func Standard() *Board {
	return standard
}

// EntryCell retourne la case d'entrée d'un joueur
func (b *Board) EntryCell(player int) int {
	return b.entries[player]
}

// IsSafe indique si la case est une case sûre
func (b *Board) IsSafe(cell int) bool {
	return b.cells[cell].IsSafe
}

// IsEntry indique si la case est une case d'entrée
func (b *Board) IsEntry(cell int) bool {
	return b.cells[cell].IsEntry
}

// EntryOwner retourne le joueur qui entre sur cette case
func (b *Board) EntryOwner(cell int) (int, bool) {
	c := b.cells[cell]
	return c.Owner, c.IsEntry
}

// Advance avance de steps cases sur l'anneau
func (b *Board) Advance(cell, steps int) int {
	return (cell + steps) % constants.TotalCells
}

// Cells retourne une copie des cases pour le rendu
func (b *Board) Cells() []Cell {
	out := make([]Cell, len(b.cells))
	copy(out, b.cells[:])
	return out
}

// SafeCells retourne les positions sûres, triées
func (b *Board) SafeCells() []int {
	safe := make([]int, 0, constants.SafeCells)
	for _, c := range b.cells {
		if c.IsSafe {
			safe = append(safe, c.Position)
		}
	}
	return safe
}

// EntryCell utilise le plateau standard
func EntryCell(player int) int { return standard.EntryCell(player) }

// IsSafe utilise le plateau standard
func IsSafe(cell int) bool { return standard.IsSafe(cell) }

// IsEntry utilise le plateau standard
func IsEntry(cell int) bool { return standard.IsEntry(cell) }

// Advance utilise le plateau standard
func Advance(cell, steps int) int { return standard.Advance(cell, steps) }
