// cmd/client/board.go
package main

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/board"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

const (
	boardGrid = 15
	homeSize  = 6
)

// boardPath donne la case de grille (colonne, ligne) de chaque position du
// chemin, en partant de la case d'entrée du joueur 0
var boardPath = [constants.TotalCells][2]int{
	{6, 13}, {6, 12}, {6, 11}, {6, 10}, {6, 9}, {6, 8},
	{5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
	{0, 7}, {0, 6},
	{1, 6}, {2, 6}, {3, 6}, {4, 6}, {5, 6}, {6, 6},
	{6, 5}, {6, 4}, {6, 3}, {6, 2}, {6, 1}, {6, 0},
	{7, 0}, {8, 0},
	{8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 6},
	{9, 6}, {10, 6}, {11, 6}, {12, 6}, {13, 6}, {14, 6},
	{14, 7}, {14, 8},
	{13, 8}, {12, 8}, {11, 8}, {10, 8}, {9, 8}, {8, 8},
	{8, 9}, {8, 10}, {8, 11}, {8, 12},
}

// Coin de la zone maison de chaque joueur, dans le sens du chemin
var homeOrigins = [constants.MaxPlayers][2]int{
	{0, 9}, {0, 0}, {9, 0}, {9, 9},
}

var homeSlots = [constants.PiecesPerPlayer][2]int{{1, 1}, {4, 1}, {1, 4}, {4, 4}}

// gridCell retourne la case de grille d'une position du chemin
func gridCell(cell int) [2]int {
	return boardPath[(cell-constants.FirstEntryCell+constants.TotalCells)%constants.TotalCells]
}

// piecePixel retourne le centre d'un pion en pixels
func piecePixel(player, piece int, loc models.Location, cs float64) (float64, float64) {
	if loc.IsHome() {
		origin := homeOrigins[player]
		slot := homeSlots[piece]
		return (float64(origin[0]+slot[0]) + 0.5) * cs, (float64(origin[1]+slot[1]) + 0.5) * cs
	}
	pos := gridCell(loc.Cell)
	return (float64(pos[0]) + 0.5) * cs, (float64(pos[1]) + 0.5) * cs
}

// renderBoard dessine le plateau et les pions de l'instantané
func renderBoard(snap models.GameSnapshot, b *board.Board, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.NRGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	cs := float64(width) / float64(boardGrid)

	for _, p := range snap.Players {
		origin := homeOrigins[p.Index]
		drawHomeZone(img, origin[0], origin[1], cs, colorFor(p.Color))
	}

	for _, cell := range b.Cells() {
		pos := gridCell(cell.Position)
		switch {
		case cell.IsEntry && cell.Owner < len(snap.Players):
			drawStarCell(img, pos[0], pos[1], cs, colorFor(snap.Players[cell.Owner].Color))
		case cell.IsSafe:
			drawStarCell(img, pos[0], pos[1], cs, color.NRGBA{150, 150, 150, 255})
		default:
			drawWhiteCell(img, pos[0], pos[1], cs)
		}
	}

	drawCenter(img, 7, 7, cs)

	legal := make(map[int]bool, len(snap.LegalMoves))
	for _, i := range snap.LegalMoves {
		legal[i] = true
	}

	for _, player := range snap.Players {
		pColor := colorFor(player.Color)
		for pi, piece := range player.Pieces {
			px, py := piecePixel(player.Index, pi, piece.Location, cs)

			drawCircle(img, px+2, py+2, cs*0.3, color.NRGBA{0, 0, 0, 60})
			drawCircle(img, px, py, cs*0.3, pColor)
			drawCircleOutline(img, px, py, cs*0.3, color.NRGBA{0, 0, 0, 200}, 2)
			drawCircle(img, px-cs*0.08, py-cs*0.08, cs*0.1, color.NRGBA{255, 255, 255, 120})

			// Bordure verte si déplaçable
			if player.Index == snap.CurrentPlayer && snap.Phase == constants.PhaseAwaitingMove && legal[pi] {
				drawCircleOutline(img, px, py, cs*0.35, color.NRGBA{0, 255, 0, 255}, 3)
			}
		}
	}

	drawCompleteGrid(img, width, height, cs)
	return img
}

// pieceAt retourne le pion du joueur sous le point, -1 sinon
func pieceAt(player models.Player, x, y, cs float64) int {
	for pi, piece := range player.Pieces {
		px, py := piecePixel(player.Index, pi, piece.Location, cs)
		if math.Hypot(x-px, y-py) <= cs*0.4 {
			return pi
		}
	}
	return -1
}

func colorFor(c constants.PlayerColor) color.NRGBA {
	switch c {
	case constants.ColorRed:
		return color.NRGBA{230, 50, 50, 255}
	case constants.ColorGreen:
		return color.NRGBA{50, 200, 50, 255}
	case constants.ColorYellow:
		return color.NRGBA{255, 200, 50, 255}
	case constants.ColorBlue:
		return color.NRGBA{50, 100, 230, 255}
	}
	return color.NRGBA{128, 128, 128, 255}
}

func drawHomeZone(img *image.NRGBA, startCol, startRow int, cs float64, bg color.NRGBA) {
	for r := 0; r < homeSize; r++ {
		for col := 0; col < homeSize; col++ {
			drawFilledRect(img, startCol+col, startRow+r, cs, bg)
		}
	}

	// Zone blanche intérieure 4x4
	for r := 1; r < homeSize-1; r++ {
		for col := 1; col < homeSize-1; col++ {
			drawFilledRect(img, startCol+col, startRow+r, cs, color.NRGBA{255, 255, 255, 255})
		}
	}

	for _, p := range homeSlots {
		cx := (float64(startCol+p[0]) + 0.5) * cs
		cy := (float64(startRow+p[1]) + 0.5) * cs
		drawCircle(img, cx, cy, cs*0.35, color.NRGBA{200, 200, 200, 255})
	}
}

func drawWhiteCell(img *image.NRGBA, col, row int, cs float64) {
	drawFilledRect(img, col, row, cs, color.NRGBA{255, 255, 255, 255})
	drawRectBorder(img, col, row, cs, color.NRGBA{0, 0, 0, 255})
}

func drawStarCell(img *image.NRGBA, col, row int, cs float64, c color.NRGBA) {
	drawWhiteCell(img, col, row, cs)
	drawStar(img, col, row, cs, c)
}

// drawCenter marque la case centrale, sans colonne d'arrivée
func drawCenter(img *image.NRGBA, col, row int, cs float64) {
	drawFilledRect(img, col, row, cs, color.NRGBA{60, 60, 60, 255})
	cx := (float64(col) + 0.5) * cs
	cy := (float64(row) + 0.5) * cs
	drawCircle(img, cx, cy, cs*0.35, color.NRGBA{255, 255, 255, 255})
}

func drawTriangle(img *image.NRGBA, x1, y1, x2, y2, x3, y3 float64, c color.NRGBA) {
	minX := int(math.Min(x1, math.Min(x2, x3)))
	maxX := int(math.Max(x1, math.Max(x2, x3)))
	minY := int(math.Min(y1, math.Min(y2, y3)))
	maxY := int(math.Max(y1, math.Max(y2, y3)))

	sign := func(px, py, ax, ay, bx, by float64) float64 {
		return (px-bx)*(ay-by) - (ax-bx)*(py-by)
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x), float64(y)
			d1 := sign(px, py, x1, y1, x2, y2)
			d2 := sign(px, py, x2, y2, x3, y3)
			d3 := sign(px, py, x3, y3, x1, y1)

			hasNeg := d1 < 0 || d2 < 0 || d3 < 0
			hasPos := d1 > 0 || d2 > 0 || d3 > 0
			if !(hasNeg && hasPos) {
				setPixel(img, x, y, c)
			}
		}
	}
}

func drawCompleteGrid(img *image.NRGBA, width, height int, cs float64) {
	black := color.NRGBA{0, 0, 0, 255}
	for i := 0; i <= boardGrid; i++ {
		at := int(float64(i) * cs)
		for x := 0; x < width; x++ {
			setPixel(img, x, at, black)
		}
		for y := 0; y < height; y++ {
			setPixel(img, at, y, black)
		}
	}
}

func drawFilledRect(img *image.NRGBA, col, row int, cs float64, c color.NRGBA) {
	x0 := int(math.Round(float64(col) * cs))
	y0 := int(math.Round(float64(row) * cs))
	x1 := int(math.Round(float64(col+1) * cs))
	y1 := int(math.Round(float64(row+1) * cs))

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			setPixel(img, x, y, c)
		}
	}
}

func drawRectBorder(img *image.NRGBA, col, row int, cs float64, c color.NRGBA) {
	x0 := int(math.Round(float64(col) * cs))
	y0 := int(math.Round(float64(row) * cs))
	x1 := int(math.Round(float64(col+1)*cs)) - 1
	y1 := int(math.Round(float64(row+1)*cs)) - 1

	for x := x0; x <= x1; x++ {
		setPixel(img, x, y0, c)
		setPixel(img, x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		setPixel(img, x0, y, c)
		setPixel(img, x1, y, c)
	}
}

func drawCircle(img *image.NRGBA, cx, cy, radius float64, c color.NRGBA) {
	r2 := radius * radius
	for y := int(cy - radius - 1); y <= int(cy+radius+1); y++ {
		for x := int(cx - radius - 1); x <= int(cx+radius+1); x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r2 {
				setPixel(img, x, y, c)
			}
		}
	}
}

func drawCircleOutline(img *image.NRGBA, cx, cy, radius float64, c color.NRGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		r := radius + float64(t) - float64(thickness)/2.0
		steps := int(4 * math.Pi * r)
		if steps < 100 {
			steps = 100
		}

		for i := 0; i < steps; i++ {
			angle := 2 * math.Pi * float64(i) / float64(steps)
			x := int(math.Round(cx + r*math.Cos(angle)))
			y := int(math.Round(cy + r*math.Sin(angle)))
			setPixel(img, x, y, c)
		}
	}
}

func drawStar(img *image.NRGBA, col, row int, cs float64, c color.NRGBA) {
	cx := (float64(col) + 0.5) * cs
	cy := (float64(row) + 0.5) * cs
	outerR := cs * 0.25
	innerR := cs * 0.10
	const points = 5

	coords := make([][2]float64, 0, points*2)
	for i := 0; i < points*2; i++ {
		angle := math.Pi*float64(i)/float64(points) - math.Pi/2
		r := outerR
		if i%2 == 1 {
			r = innerR
		}
		coords = append(coords, [2]float64{cx + r*math.Cos(angle), cy + r*math.Sin(angle)})
	}

	for i := range coords {
		next := (i + 1) % len(coords)
		drawTriangle(img, cx, cy, coords[i][0], coords[i][1], coords[next][0], coords[next][1], c)
	}
}

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	if x >= 0 && y >= 0 && x < img.Bounds().Max.X && y < img.Bounds().Max.Y {
		img.SetNRGBA(x, y, c)
	}
}
