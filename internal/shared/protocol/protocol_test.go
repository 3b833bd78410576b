package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

func TestEncodeDecodeMessage(t *testing.T) {
	data, err := EncodeMessage(NewMessage(constants.MsgMovePiece, "abc", models.MovePiecePayload{Player: 2, Piece: 3}))
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, constants.MsgMovePiece, got.Type)
	assert.Equal(t, "abc", got.SessionID)
	assert.False(t, got.Timestamp.IsZero())

	var payload models.MovePiecePayload
	require.NoError(t, ExtractPayload(got.Payload, &payload))
	assert.Equal(t, models.MovePiecePayload{Player: 2, Piece: 3}, payload)
}

func TestEncodeErrorMessage(t *testing.T) {
	data, err := EncodeMessage(ErrorMessage("abc", constants.ErrNotYourTurn, "not your turn"))
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, constants.MsgError, got.Type)

	var payload models.ErrorPayload
	require.NoError(t, ExtractPayload(got.Payload, &payload))
	assert.Equal(t, constants.ErrNotYourTurn, payload.Code)
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	_, err := DecodeMessage([]byte("{not json"))
	assert.Error(t, err)
}

func TestValidateMessage(t *testing.T) {
	v := NewValidator()

	decode := func(raw string) *models.NetworkMessage {
		msg, err := DecodeMessage([]byte(raw))
		require.NoError(t, err)
		return msg
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"roll", `{"type":"ROLL_DICE","payload":{"player":0}}`, false},
		{"move", `{"type":"MOVE_PIECE","payload":{"player":3,"piece":1}}`, false},
		{"move with bad piece reaches engine", `{"type":"MOVE_PIECE","payload":{"player":1,"piece":9}}`, false},
		{"ping", `{"type":"PING"}`, false},
		{"roll without payload", `{"type":"ROLL_DICE"}`, true},
		{"player out of range", `{"type":"ROLL_DICE","payload":{"player":4}}`, true},
		{"payload of wrong shape", `{"type":"MOVE_PIECE","payload":{"player":"x"}}`, true},
		{"empty type", `{"payload":{}}`, true},
		{"server type", `{"type":"DICE_RESOLVED"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateMessage(decode(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := v.ValidateMessage(nil)
	assert.Error(t, err)
}

func TestValidateMessageReturnsPayload(t *testing.T) {
	v := NewValidator()

	msg, err := DecodeMessage([]byte(`{"type":"MOVE_PIECE","payload":{"player":3,"piece":1}}`))
	require.NoError(t, err)
	payload, err := v.ValidateMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, models.MovePiecePayload{Player: 3, Piece: 1}, payload)

	msg, err = DecodeMessage([]byte(`{"type":"ROLL_DICE","payload":{"player":2}}`))
	require.NoError(t, err)
	payload, err = v.ValidateMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, models.RollDicePayload{Player: 2}, payload)

	payload, err = v.ValidateMessage(NewMessage(constants.MsgPing, "", nil))
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestCreateSessionPayload(t *testing.T) {
	bots := 2
	cfg, err := CreateSessionPayload{
		PlayerNames: []string{" Asha ", ""},
		Colors:      []string{"Yellow", "green", "blue", "red"},
		BotCount:    &bots,
	}.ToGameConfig(models.DefaultGameConfig())
	require.NoError(t, err)

	assert.Equal(t, "Asha", cfg.PlayerNames[0])
	assert.Equal(t, "", cfg.PlayerNames[1])
	assert.Equal(t, "Player 3", cfg.PlayerNames[2])
	assert.Equal(t, constants.ColorYellow, cfg.Colors[0])
	assert.Equal(t, constants.ColorRed, cfg.Colors[3])
	assert.Equal(t, 2, cfg.BotCount)
	assert.Equal(t, constants.BotLevelRandom, cfg.BotLevel)

	_, err = CreateSessionPayload{PlayerNames: []string{strings.Repeat("x", 21)}}.ToGameConfig(models.DefaultGameConfig())
	assert.Error(t, err)

	_, err = CreateSessionPayload{PlayerNames: make([]string, 5)}.ToGameConfig(models.DefaultGameConfig())
	assert.Error(t, err)
}

func TestCreateSessionPayloadKeepsBase(t *testing.T) {
	base := models.DefaultGameConfig()
	base.BotCount = 2
	base.PlayerNames[3] = "Robo"

	cfg, err := CreateSessionPayload{PlayerNames: []string{"Asha"}}.ToGameConfig(base)
	require.NoError(t, err)
	assert.Equal(t, "Asha", cfg.PlayerNames[0])
	assert.Equal(t, "Robo", cfg.PlayerNames[3])
	assert.Equal(t, 2, cfg.BotCount)
	assert.Equal(t, "Player 1", base.PlayerNames[0])

	zero := 0
	cfg, err = CreateSessionPayload{BotCount: &zero}.ToGameConfig(base)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.BotCount)
}

func TestValidatePlayerName(t *testing.T) {
	assert.NoError(t, ValidatePlayerName(""))
	assert.NoError(t, ValidatePlayerName(strings.Repeat("é", 20)))
	assert.Error(t, ValidatePlayerName(strings.Repeat("é", 21)))
	assert.Error(t, ValidatePlayerName("bad\x07name"))
}
