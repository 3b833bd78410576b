package announce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

func testPlayers() []models.Player {
	return []models.Player{
		*models.NewPlayer(0, "Asha", constants.ColorRed, false),
		*models.NewPlayer(1, "Player 2", constants.ColorBlue, true),
	}
}

func TestEnglishEvents(t *testing.T) {
	a, err := New("en")
	require.NoError(t, err)
	players := testPlayers()

	tests := []struct {
		ev   game.Event
		want string
	}{
		{game.Event{Kind: game.EventDiceResolved, Player: 0, Dice: 6}, "Rolled a 6"},
		{game.Event{Kind: game.EventRollStarted, Player: 0}, "Asha is rolling the dice"},
		{game.Event{Kind: game.EventPieceMoved, Player: 0, Piece: 0, Dice: 6, From: models.Home(), To: models.Path(1)}, "Asha moved piece 1 out of home!"},
		{game.Event{Kind: game.EventPieceMoved, Player: 0, Piece: 2, Dice: 4, From: models.Path(1), To: models.Path(5)}, "Asha moved piece 3 by 4 spaces"},
		{game.Event{Kind: game.EventBonusTurnGranted, Player: 0, Dice: 6}, "You rolled a 6! Roll again!"},
		{game.Event{Kind: game.EventBonusTurnGranted, Player: 1, Dice: 6}, "Player 2 rolled a 6 and rolls again"},
		{game.Event{Kind: game.EventNoLegalMove, Player: 1, Dice: 3}, "Player 2 has no valid moves"},
		{game.Event{Kind: game.EventTurnChanged, Player: 1}, "Player 2's turn"},
		{game.Event{Kind: game.EventSessionEnded}, "Game over"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Event(tt.ev, players), string(tt.ev.Kind))
	}
}

func TestRejections(t *testing.T) {
	a, err := New("en")
	require.NoError(t, err)

	assert.Equal(t, "It's not your turn!", a.Rejection(&game.RequestError{Code: constants.ErrNotYourTurn}))
	assert.Equal(t, "Please roll the dice first!", a.Rejection(&game.RequestError{Code: constants.ErrNoRollPending}))
	assert.Equal(t, "This piece cannot be moved!", a.Rejection(&game.RequestError{Code: constants.ErrInvalidMove}))
	assert.Equal(t, "The game has already started", a.Rejection(&game.RequestError{Code: constants.ErrAlreadyStarted, Reason: "game already started"}))
	assert.Equal(t, "", a.Rejection(nil))

	cfg := models.DefaultGameConfig()
	cfg.BotCount = 4
	_, err = game.NewEngine(cfg)
	assert.Equal(t, "At least one human player is required", a.Rejection(err))

	cfg = models.DefaultGameConfig()
	cfg.Colors[3] = cfg.Colors[0]
	_, err = game.NewEngine(cfg)
	assert.Equal(t, "Each player must have a unique color", a.Rejection(err))
}

func TestOtherLanguages(t *testing.T) {
	hi, err := New("hi-IN")
	require.NoError(t, err)
	assert.Equal(t, "hi", hi.Language())
	assert.Equal(t, "लाल", hi.ColorName(constants.ColorRed))

	ar, err := New("ar")
	require.NoError(t, err)
	assert.Equal(t, "ar", ar.Language())
	assert.Equal(t, "ليس دورك!", ar.Rejection(&game.RequestError{Code: constants.ErrNotYourTurn}))

	fallback, err := New("fr")
	require.NoError(t, err)
	assert.Equal(t, "en", fallback.Language())
	assert.Equal(t, "Green", fallback.ColorName(constants.ColorGreen))
}

func TestEveryLocaleHasEveryMessage(t *testing.T) {
	ids := []string{
		"RollStarted", "RolledDice", "PieceEntered", "PieceMoved", "BonusTurn", "BonusTurnBot",
		"NoValidMoves", "PlayerTurn", "SessionEnded", "NotYourTurn", "RollFirst", "CannotMove",
		"RollInProgress", "MovePending", "BotControlled", "GameNotStarted", "GameAlreadyStarted", "SessionClosed",
		"InvalidConfig", "ErrorDuplicateColors", "ErrorNoPlayers",
		"ColorRed", "ColorBlue", "ColorGreen", "ColorYellow",
	}

	for _, lang := range Supported() {
		a, err := New(lang)
		require.NoError(t, err)
		for _, id := range ids {
			assert.NotEqual(t, id, a.text(id, map[string]interface{}{"Name": "x", "Value": 1, "Piece": 1, "Steps": 1}), "%s/%s", lang, id)
		}
	}
}
