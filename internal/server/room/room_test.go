package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrien-tchaleu/ludo-universe/internal/client/announce"
	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/protocol"
	"github.com/obrien-tchaleu/ludo-universe/pkg/database"
)

// stepScheduler garde les continuations jusqu'à Step
type stepScheduler struct {
	mu    sync.Mutex
	queue []*stepTimer
}

type stepTimer struct {
	fn      func()
	stopped bool
}

func (t *stepTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *stepScheduler) AfterFunc(_ time.Duration, f func()) game.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &stepTimer{fn: f}
	s.queue = append(s.queue, t)
	return t
}

func (s *stepScheduler) Step() bool {
	s.mu.Lock()
	for len(s.queue) > 0 {
		t := s.queue[0]
		s.queue = s.queue[1:]
		if t.stopped {
			continue
		}
		s.mu.Unlock()
		t.fn()
		return true
	}
	s.mu.Unlock()
	return false
}

type fixedDice struct{ value int }

func (d fixedDice) Roll() int { return d.value }

type memoryStore struct {
	mu    sync.Mutex
	saved []database.SessionSummary
}

func (m *memoryStore) SaveSession(_ context.Context, s database.SessionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	return nil
}

func newTestManager(t *testing.T, dice int, store StatsStore) (*Manager, *stepScheduler) {
	t.Helper()
	a, err := announce.New("en")
	require.NoError(t, err)

	sched := &stepScheduler{}
	m := NewManager(a, store,
		game.WithScheduler(sched),
		game.WithDice(fixedDice{value: dice}),
		game.WithLogger(zerolog.Nop()),
	)
	return m, sched
}

func drain(c *Client) []*models.NetworkMessage {
	var out []*models.NetworkMessage
	for {
		select {
		case msg, ok := <-c.Send():
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func types(msgs []*models.NetworkMessage) []constants.MessageType {
	out := make([]constants.MessageType, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func TestCreateRoomStartsSession(t *testing.T) {
	m, _ := newTestManager(t, 6, nil)

	r, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)
	assert.Len(t, r.ID, 36)

	snap := r.Snapshot()
	assert.True(t, snap.Started)
	assert.Equal(t, r.ID, snap.SessionID)
	assert.Equal(t, constants.PhaseAwaitingRoll, snap.Phase)

	got, err := m.GetRoom(r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)

	list := m.ListRooms()
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ID)
	assert.Equal(t, 1, m.GetRoomCount())
}

func TestCreateRoomRejectsConfig(t *testing.T) {
	m, _ := newTestManager(t, 6, nil)
	cfg := models.DefaultGameConfig()
	cfg.BotCount = 4

	_, err := m.CreateRoom(cfg)
	assert.True(t, errors.Is(err, game.ErrConfiguration))
	assert.Equal(t, 0, m.GetRoomCount())
}

func TestClientReceivesEventsAndAnnouncements(t *testing.T) {
	m, sched := newTestManager(t, 6, nil)
	r, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)

	c := NewClient("c1")
	require.NoError(t, r.Attach(c))
	assert.Error(t, r.Attach(c))

	first := drain(c)
	require.Len(t, first, 1)
	assert.Equal(t, constants.MsgGameState, first[0].Type)

	r.HandleMessage(c.ID, protocol.NewMessage(constants.MsgRollDice, r.ID, models.RollDicePayload{Player: 0}))
	require.True(t, sched.Step())

	msgs := drain(c)
	assert.Equal(t, []constants.MessageType{
		constants.MsgRollStarted, constants.MsgAnnounce,
		constants.MsgDiceResolved, constants.MsgAnnounce,
	}, types(msgs))
	assert.Equal(t, models.AnnouncePayload{Text: "Rolled a 6"}, msgs[3].Payload)

	r.HandleMessage(c.ID, protocol.NewMessage(constants.MsgMovePiece, r.ID, models.MovePiecePayload{Player: 0, Piece: 2}))
	msgs = drain(c)
	assert.Equal(t, []constants.MessageType{
		constants.MsgPieceMoved, constants.MsgAnnounce,
		constants.MsgBonusTurnGranted, constants.MsgAnnounce,
	}, types(msgs))

	moved, ok := msgs[0].Payload.(models.PieceMovedPayload)
	require.True(t, ok)
	assert.Equal(t, models.Path(1), moved.To)
}

func TestRejectionsGoToSenderOnly(t *testing.T) {
	m, _ := newTestManager(t, 6, nil)
	r, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)

	sender, other := NewClient("a"), NewClient("b")
	require.NoError(t, r.Attach(sender))
	require.NoError(t, r.Attach(other))
	drain(sender)
	drain(other)

	r.HandleMessage(sender.ID, protocol.NewMessage(constants.MsgRollDice, r.ID, models.RollDicePayload{Player: 2}))

	msgs := drain(sender)
	require.Len(t, msgs, 2)
	assert.Equal(t, constants.MsgError, msgs[0].Type)
	assert.Equal(t, constants.ErrNotYourTurn, msgs[0].Payload.(models.ErrorPayload).Code)
	assert.Equal(t, models.AnnouncePayload{Text: "It's not your turn!"}, msgs[1].Payload)
	assert.Empty(t, drain(other))

	r.HandleMessage(sender.ID, &models.NetworkMessage{Type: "JUNK"})
	msgs = drain(sender)
	require.Len(t, msgs, 1)
	assert.Equal(t, constants.ErrBadMessage, msgs[0].Payload.(models.ErrorPayload).Code)

	r.HandleMessage(sender.ID, protocol.NewMessage(constants.MsgPing, r.ID, nil))
	assert.Equal(t, []constants.MessageType{constants.MsgPong}, types(drain(sender)))

	r.HandleMessage(sender.ID, protocol.NewMessage(constants.MsgRollDice, r.ID, map[string]interface{}{"player": "zero"}))
	msgs = drain(sender)
	require.Len(t, msgs, 1)
	assert.Equal(t, constants.ErrBadMessage, msgs[0].Payload.(models.ErrorPayload).Code)
	assert.Equal(t, constants.PhaseAwaitingRoll, r.Engine.Phase())
}

func TestMessagePayloadReachesEngine(t *testing.T) {
	m, sched := newTestManager(t, 6, nil)
	r, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)

	c := NewClient("c1")
	require.NoError(t, r.Attach(c))

	// payload tel que décodé depuis le JSON du client
	r.HandleMessage(c.ID, &models.NetworkMessage{Type: constants.MsgRollDice, Payload: map[string]interface{}{"player": float64(0)}})
	require.True(t, sched.Step())
	r.HandleMessage(c.ID, &models.NetworkMessage{Type: constants.MsgMovePiece, Payload: map[string]interface{}{"player": float64(0), "piece": float64(3)}})

	loc, err := r.Engine.PieceLocation(0, 3)
	require.NoError(t, err)
	assert.Equal(t, models.Path(1), loc)
}

func TestCloseRoomEndsSession(t *testing.T) {
	m, sched := newTestManager(t, 6, nil)
	r, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)

	c := NewClient("c1")
	require.NoError(t, r.Attach(c))
	drain(c)
	r.HandleMessage(c.ID, protocol.NewMessage(constants.MsgRollDice, r.ID, models.RollDicePayload{Player: 0}))
	drain(c)

	require.NoError(t, m.CloseRoom(r.ID))
	assert.False(t, sched.Step())

	msgs := drain(c)
	assert.Contains(t, types(msgs), constants.MsgSessionEnded)
	_, open := <-c.Send()
	assert.False(t, open)

	_, err = m.GetRoom(r.ID)
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	assert.True(t, errors.Is(m.CloseRoom(r.ID), ErrRoomNotFound))
	assert.Error(t, r.Attach(NewClient("late")))
}

func TestCloseDuringEventDeliveryStillEndsSession(t *testing.T) {
	m, _ := newTestManager(t, 6, nil)
	r, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)

	c := NewClient("c1")
	require.NoError(t, r.Attach(c))
	drain(c)

	// fermeture depuis un abonné: le bus est déjà en cours de livraison
	r.Engine.Subscribe(func(ev game.Event) {
		if ev.Kind == game.EventRollStarted {
			r.Close()
		}
	})

	r.HandleMessage(c.ID, protocol.NewMessage(constants.MsgRollDice, r.ID, models.RollDicePayload{Player: 0}))

	msgs := drain(c)
	require.NotEmpty(t, msgs)
	assert.Equal(t, constants.MsgRollStarted, msgs[0].Type)
	assert.Contains(t, types(msgs), constants.MsgSessionEnded)
	_, open := <-c.Send()
	assert.False(t, open)
	assert.Equal(t, 0, r.ClientCount())
	assert.Error(t, r.Attach(NewClient("late")))
}

func TestCleanupIdleRooms(t *testing.T) {
	m, _ := newTestManager(t, 6, nil)
	idle, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)
	busy, err := m.CreateRoom(models.DefaultGameConfig())
	require.NoError(t, err)
	require.NoError(t, busy.Attach(NewClient("c")))

	assert.Equal(t, 0, m.CleanupIdleRooms(time.Now(), time.Hour))
	assert.Equal(t, 1, m.CleanupIdleRooms(time.Now().Add(2*time.Hour), time.Hour))

	_, err = m.GetRoom(idle.ID)
	assert.Error(t, err)
	_, err = m.GetRoom(busy.ID)
	assert.NoError(t, err)

	m.CloseAll()
	assert.Equal(t, 0, m.GetRoomCount())
}

func TestStatsRecordedOnClose(t *testing.T) {
	store := &memoryStore{}
	m, sched := newTestManager(t, 6, store)

	cfg := models.DefaultGameConfig()
	cfg.BotCount = 1
	r, err := m.CreateRoom(cfg)
	require.NoError(t, err)

	require.NoError(t, r.Engine.RequestRoll(0))
	sched.Step()
	require.NoError(t, r.Engine.RequestMove(0, 0))
	require.NoError(t, r.Engine.RequestRoll(0))
	sched.Step()
	require.NoError(t, r.Engine.RequestMove(0, 0))

	require.NoError(t, m.CloseRoom(r.ID))

	require.Len(t, store.saved, 1)
	s := store.saved[0]
	assert.Equal(t, r.ID, s.ID)
	assert.Equal(t, 1, s.BotCount)
	assert.Equal(t, 2, s.Turns)
	assert.False(t, s.EndedAt.IsZero())

	p := s.Players[0]
	assert.Equal(t, 2, p.DiceRolls)
	assert.Equal(t, 2, p.SixesRolled)
	assert.Equal(t, 2, p.Moves)
	assert.Equal(t, 1, p.PiecesEntered)
	assert.True(t, s.Players[3].IsBot)
}
