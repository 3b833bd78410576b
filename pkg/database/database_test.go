// pkg/database/database_test.go
package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite3", filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Skipf("Database not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func summary(id string, started time.Time) SessionSummary {
	return SessionSummary{
		ID:        id,
		StartedAt: started,
		EndedAt:   started.Add(10 * time.Minute),
		Turns:     12,
		BotCount:  1,
		Players: []PlayerSummary{
			{Index: 0, Name: "Asha", Color: "red", DiceRolls: 5, SixesRolled: 2, Moves: 4, PiecesEntered: 2},
			{Index: 3, Name: "Player 4", Color: "yellow", IsBot: true, DiceRolls: 4, Moves: 1, TurnsSkipped: 3},
		},
	}
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t, "ludo:secret@tcp(db:3306)/ludo?parseTime=true&charset=utf8mb4",
		MySQLDSN("db", "3306", "ludo", "secret", "ludo"))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	assert.Equal(t, "sqlite3", db.Driver())
}

func TestSaveAndReadSession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveSession(ctx, summary("s-1", started)))

	sessions, err := db.RecentSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s-1", sessions[0].ID)
	assert.Equal(t, 12, sessions[0].Turns)
	assert.WithinDuration(t, started, sessions[0].StartedAt, time.Second)
	require.NotNil(t, sessions[0].EndedAt)

	players, err := db.SessionPlayers(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Asha", players[0].Name)
	assert.True(t, players[1].IsBot)
	assert.Equal(t, 3, players[1].TurnsSkipped)
}

func TestSaveSessionReplacesCounters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := summary("s-2", time.Now().UTC())

	require.NoError(t, db.SaveSession(ctx, s))
	s.Turns = 20
	s.Players = s.Players[:1]
	s.Players[0].DiceRolls = 9
	require.NoError(t, db.SaveSession(ctx, s))

	sessions, err := db.RecentSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 20, sessions[0].Turns)

	players, err := db.SessionPlayers(ctx, "s-2")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, 9, players[0].DiceRolls)
}

func TestPlayerTotals(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, db.SaveSession(ctx, summary("a", now)))
	require.NoError(t, db.SaveSession(ctx, summary("b", now.Add(time.Hour))))

	totals, err := db.GetPlayerTotals(ctx, "Asha")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Sessions)
	assert.Equal(t, 10, totals.DiceRolls)
	assert.Equal(t, 4, totals.SixesRolled)

	_, err = db.GetPlayerTotals(ctx, "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))

	sessions, err := db.RecentSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "b", sessions[0].ID)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)

	_, err = Open("sqlite3", "")
	assert.Error(t, err)
}

func TestSaveSessionRequiresID(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, db.SaveSession(context.Background(), SessionSummary{}))
}
