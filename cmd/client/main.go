// cmd/client/main.go - partie locale: humains à tour de rôle contre les bots
package main

import (
	"flag"
	"fmt"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/obrien-tchaleu/ludo-universe/internal/client/announce"
	"github.com/obrien-tchaleu/ludo-universe/internal/client/audio"
	"github.com/obrien-tchaleu/ludo-universe/internal/config"
	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/logging"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

// ============================================================================
// THEME
// ============================================================================

type LudoTheme struct{}

func (m LudoTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameBackground {
		return color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	}
	return theme.DefaultTheme().Color(name, variant)
}
func (m LudoTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (m LudoTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}
func (m LudoTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

// ============================================================================
// CLIENT
// ============================================================================

// Client affiche une partie locale. Les champs d'interface ne sont touchés
// que depuis le thread fyne.
type Client struct {
	app       fyne.App
	window    fyne.Window
	engine    *game.Engine
	announcer *announce.Announcer
	audio     *audio.Manager

	snapshot     models.GameSnapshot
	boardSize    float32
	boardImage   *canvas.Image
	diceValue    *canvas.Text
	statusLabel  *widget.Label
	diceButton   *widget.Button
	pieceButtons [constants.PiecesPerPlayer]*widget.Button
	playersList  *widget.List
}

func main() {
	configPath := flag.String("config", "configs/server.yaml", "path to the YAML configuration")
	bots := flag.Int("bots", -1, "number of bot players, overrides the config")
	lang := flag.String("lang", "", "announcement language, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.Logging.Level, true)

	if *bots >= 0 {
		cfg.Game.BotCount = *bots
	}
	if *lang != "" {
		cfg.Game.Language = *lang
	}

	announcer, err := announce.New(cfg.Game.Language)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load translations")
	}

	myApp := app.NewWithID("com.ludouniverse.game")
	myApp.Settings().SetTheme(&LudoTheme{})
	c := &Client{
		app:       myApp,
		window:    myApp.NewWindow("Ludo Universe"),
		announcer: announcer,
		audio:     audio.NewManager(nil),
		boardSize: 600,
	}
	c.audio.LoadAllSounds()

	gameCfg, err := cfg.GameConfig()
	if err == nil {
		c.engine, err = game.NewEngine(gameCfg)
	}
	if err != nil {
		// la configuration est refusée: on l'explique puis on quitte
		c.window.SetContent(widget.NewLabel(announcer.Rejection(err)))
		c.window.Resize(fyne.NewSize(480, 120))
		dialog.ShowError(err, c.window)
		c.window.ShowAndRun()
		return
	}

	c.engine.Subscribe(c.audio.HandleEvent)
	c.engine.Subscribe(c.onEvent)

	c.window.Resize(fyne.NewSize(1100, 760))
	c.window.CenterOnScreen()
	c.window.SetOnClosed(func() {
		c.engine.Close()
		c.audio.Cleanup()
	})

	c.snapshot = c.engine.Snapshot()
	c.showGameBoard()

	myApp.Lifecycle().SetOnStarted(func() {
		if err := c.engine.Start(); err != nil {
			log.Error().Err(err).Msg("failed to start game")
		}
	})
	c.window.ShowAndRun()
}

// ============================================================================
// PLATEAU DE JEU
// ============================================================================

func (c *Client) showGameBoard() {
	size := int(c.boardSize)
	c.boardImage = canvas.NewImageFromImage(renderBoard(c.snapshot, c.engine.Board(), size, size))
	c.boardImage.Resize(fyne.NewSize(c.boardSize, c.boardSize))
	c.boardImage.SetMinSize(fyne.NewSize(c.boardSize, c.boardSize))

	boardContainer := container.NewWithoutLayout(c.boardImage)
	boardContainer.Resize(fyne.NewSize(c.boardSize, c.boardSize))
	boardContainer.Add(NewTappableRect(c.boardSize, c.onBoardTapped))

	c.diceValue = canvas.NewText("-", color.White)
	c.diceValue.Alignment = fyne.TextAlignCenter
	c.diceValue.TextSize = 48
	c.diceValue.TextStyle = fyne.TextStyle{Bold: true}

	diceBox := container.NewStack(
		canvas.NewRectangle(color.NRGBA{R: 50, G: 50, B: 50, A: 255}),
		container.NewPadded(container.NewVBox(
			widget.NewLabelWithStyle("🎲 Dice", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
			container.NewCenter(c.diceValue),
		)),
	)

	c.diceButton = widget.NewButton("🎲 Roll Dice", c.onDiceRoll)
	c.diceButton.Importance = widget.HighImportance

	pieces := container.NewGridWithColumns(constants.PiecesPerPlayer)
	for i := range c.pieceButtons {
		piece := i
		c.pieceButtons[i] = widget.NewButton(strconv.Itoa(i+1), func() { c.onMove(piece) })
		pieces.Add(c.pieceButtons[i])
	}

	c.playersList = c.createPlayersList()

	rightPanel := container.NewVBox(
		diceBox,
		container.NewPadded(c.diceButton),
		widget.NewLabelWithStyle("Pieces", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		pieces,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("👥 Players", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		c.playersList,
	)

	rightPanelScroll := container.NewVScroll(container.NewPadded(rightPanel))
	rightPanelScroll.SetMinSize(fyne.NewSize(300, 0))

	c.statusLabel = widget.NewLabel("")
	c.statusLabel.TextStyle = fyne.TextStyle{Bold: true}
	c.statusLabel.Alignment = fyne.TextAlignCenter

	bottomPanel := container.NewVBox(
		widget.NewSeparator(),
		container.NewPadded(container.NewHBox(layout.NewSpacer(), c.statusLabel, layout.NewSpacer())),
	)

	c.window.SetContent(container.NewBorder(nil, bottomPanel, nil, rightPanelScroll, container.NewCenter(boardContainer)))
	c.updateControls()
}

// onEvent est appelé hors du thread d'interface
func (c *Client) onEvent(ev game.Event) {
	snap := c.engine.Snapshot()
	text := c.announcer.Event(ev, snap.Players)
	rendered := renderBoard(snap, c.engine.Board(), int(c.boardSize), int(c.boardSize))

	fyne.Do(func() {
		c.snapshot = snap
		c.boardImage.Image = rendered
		c.boardImage.Refresh()

		if ev.Kind == game.EventDiceResolved {
			c.diceValue.Text = strconv.Itoa(ev.Dice)
			c.diceValue.Refresh()
		}
		if text != "" {
			c.statusLabel.SetText(text)
		}
		c.playersList.Refresh()
		c.updateControls()
	})
}

// updateControls active les boutons selon la phase et le joueur courant
func (c *Client) updateControls() {
	snap := c.snapshot
	human := snap.Started && !snap.Closed && !c.engine.IsBot(snap.CurrentPlayer)

	if human && snap.Phase == constants.PhaseAwaitingRoll {
		c.diceButton.Enable()
	} else {
		c.diceButton.Disable()
	}

	legal := make(map[int]bool, len(snap.LegalMoves))
	for _, i := range snap.LegalMoves {
		legal[i] = true
	}
	for i, btn := range c.pieceButtons {
		if human && snap.Phase == constants.PhaseAwaitingMove && legal[i] {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
}

func (c *Client) onDiceRoll() {
	c.report(c.engine.RequestRoll(c.engine.CurrentPlayer()))
}

func (c *Client) onMove(piece int) {
	c.report(c.engine.RequestMove(c.engine.CurrentPlayer(), piece))
}

// onBoardTapped déplace le pion du joueur courant sous le point touché
func (c *Client) onBoardTapped(pos fyne.Position) {
	current := c.snapshot.CurrentPlayer
	if current < 0 || current >= len(c.snapshot.Players) {
		return
	}
	cs := float64(c.boardSize) / float64(boardGrid)
	if piece := pieceAt(c.snapshot.Players[current], float64(pos.X), float64(pos.Y), cs); piece >= 0 {
		c.onMove(piece)
	}
}

// report affiche le refus d'une requête
func (c *Client) report(err error) {
	if err == nil {
		return
	}
	log.Debug().Err(err).Msg("request rejected")
	c.statusLabel.SetText(c.announcer.Rejection(err))
}

// ============================================================================
// LISTE DES JOUEURS
// ============================================================================

func (c *Client) createPlayersList() *widget.List {
	return widget.NewList(
		func() int { return len(c.snapshot.Players) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				canvas.NewCircle(color.White),
				widget.NewLabel("Player"),
				widget.NewLabel(""),
			)
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if id >= len(c.snapshot.Players) {
				return
			}
			player := c.snapshot.Players[id]
			cont := item.(*fyne.Container)

			circle := cont.Objects[0].(*canvas.Circle)
			circle.FillColor = colorFor(player.Color)
			circle.Resize(fyne.NewSize(20, 20))
			circle.Refresh()

			label := cont.Objects[1].(*widget.Label)
			name := fmt.Sprintf("%s (%s)", player.Name, c.announcer.ColorName(player.Color))
			if player.IsBot {
				name = "🤖 " + name
			}
			label.SetText(name)

			turnMarker := cont.Objects[2].(*widget.Label)
			if c.snapshot.CurrentPlayer == id {
				turnMarker.SetText(" ◄")
				label.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				turnMarker.SetText("")
				label.TextStyle = fyne.TextStyle{}
			}
			label.Refresh()
			turnMarker.Refresh()
		},
	)
}

// ============================================================================
// TAPPABLE RECTANGLE
// ============================================================================

type TappableRect struct {
	widget.BaseWidget
	size  float32
	onTap func(pos fyne.Position)
}

func NewTappableRect(size float32, onTap func(pos fyne.Position)) *TappableRect {
	t := &TappableRect{size: size, onTap: onTap}
	t.ExtendBaseWidget(t)
	return t
}

func (t *TappableRect) Tapped(pos *fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap(pos.Position)
	}
}

func (t *TappableRect) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(color.NRGBA{0, 0, 0, 0})
	rect.Resize(fyne.NewSize(t.size, t.size))
	return &tappableRectRenderer{rect: rect, size: t.size}
}

type tappableRectRenderer struct {
	rect *canvas.Rectangle
	size float32
}

func (r *tappableRectRenderer) Layout(size fyne.Size)        { r.rect.Resize(size) }
func (r *tappableRectRenderer) MinSize() fyne.Size           { return fyne.NewSize(r.size, r.size) }
func (r *tappableRectRenderer) Refresh()                     {}
func (r *tappableRectRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.rect} }
func (r *tappableRectRenderer) Destroy()                     {}
