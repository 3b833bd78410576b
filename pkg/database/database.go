// pkg/database/database.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotFound est retournée quand aucune statistique n'existe
var ErrNotFound = errors.New("not found")

type DB struct {
	conn   *sql.DB
	driver string
	log    zerolog.Logger
}

// SessionSummary agrège les compteurs d'une session terminée
type SessionSummary struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Turns     int
	BotCount  int
	Players   []PlayerSummary
}

// PlayerSummary contient les compteurs d'un joueur pour une session
type PlayerSummary struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	IsBot         bool   `json:"is_bot"`
	DiceRolls     int    `json:"dice_rolls"`
	SixesRolled   int    `json:"sixes_rolled"`
	Moves         int    `json:"moves"`
	PiecesEntered int    `json:"pieces_entered"`
	TurnsSkipped  int    `json:"turns_skipped"`
}

// SessionRecord est une ligne de la table sessions
type SessionRecord struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Turns     int        `json:"turns"`
	BotCount  int        `json:"bot_count"`
}

// PlayerTotals cumule les compteurs d'un nom sur toutes les sessions
type PlayerTotals struct {
	Name          string `json:"name"`
	Sessions      int    `json:"sessions"`
	DiceRolls     int    `json:"dice_rolls"`
	SixesRolled   int    `json:"sixes_rolled"`
	Moves         int    `json:"moves"`
	PiecesEntered int    `json:"pieces_entered"`
	TurnsSkipped  int    `json:"turns_skipped"`
}

// MySQLDSN construit le DSN MySQL à partir des paramètres du serveur
func MySQLDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		user, password, host, port, dbname)
}

// Open ouvre la base avec le driver mysql ou sqlite3
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "mysql":
	case "sqlite3":
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configuration du pool de connexions
	if driver == "sqlite3" {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
	}
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Test de connexion
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		conn:   conn,
		driver: driver,
		log:    log.With().Str("component", "database").Str("driver", driver).Logger(),
	}, nil
}

// sqliteDSN crée le répertoire parent et ajoute le délai d'attente et les clés étrangères
func sqliteDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("sqlite3 requires a database path")
	}
	if strings.Contains(dsn, "?") || strings.HasPrefix(dsn, "file:") || dsn == ":memory:" {
		return dsn, nil
	}

	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return dsn + "?_busy_timeout=5000&_foreign_keys=on", nil
}

// Close ferme la connexion
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver retourne le nom du driver
func (db *DB) Driver() string {
	return db.driver
}

type migration struct {
	name string
	stmt string
}

// une instruction par migration: MySQL refuse les requêtes multiples par défaut
var migrations = []migration{
	{"001_sessions", `CREATE TABLE IF NOT EXISTS sessions (
		id         VARCHAR(36) NOT NULL PRIMARY KEY,
		started_at DATETIME    NOT NULL,
		ended_at   DATETIME    NULL,
		turns      INTEGER     NOT NULL DEFAULT 0,
		bot_count  INTEGER     NOT NULL DEFAULT 0
	)`},
	{"002_session_players", `CREATE TABLE IF NOT EXISTS session_players (
		session_id     VARCHAR(36) NOT NULL,
		player_index   INTEGER     NOT NULL,
		name           VARCHAR(64) NOT NULL,
		color          VARCHAR(16) NOT NULL,
		is_bot         BOOLEAN     NOT NULL DEFAULT FALSE,
		dice_rolls     INTEGER     NOT NULL DEFAULT 0,
		sixes_rolled   INTEGER     NOT NULL DEFAULT 0,
		moves          INTEGER     NOT NULL DEFAULT 0,
		pieces_entered INTEGER     NOT NULL DEFAULT 0,
		turns_skipped  INTEGER     NOT NULL DEFAULT 0,
		PRIMARY KEY (session_id, player_index),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	)`},
	{"003_session_players_name", `CREATE INDEX idx_session_players_name ON session_players (name)`},
}

// Migrate applique les migrations manquantes, chacune dans sa transaction
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (name VARCHAR(128) NOT NULL PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE name = ?`, m.name).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query schema_migrations: %w", err)
		}

		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES (?)`, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.name, err)
		}
		db.log.Info().Str("migration", m.name).Msg("applied")
	}
	return nil
}

// SaveSession enregistre ou remplace les compteurs d'une session
func (db *DB) SaveSession(ctx context.Context, s SessionSummary) error {
	if s.ID == "" {
		return fmt.Errorf("session id is empty")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ended := sql.NullTime{Time: s.EndedAt, Valid: !s.EndedAt.IsZero()}

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET started_at = ?, ended_at = ?, turns = ?, bot_count = ? WHERE id = ?`,
		s.StartedAt, ended, s.Turns, s.BotCount, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, started_at, ended_at, turns, bot_count) VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.StartedAt, ended, s.Turns, s.BotCount); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_players WHERE session_id = ?`, s.ID); err != nil {
		return fmt.Errorf("failed to clear session players: %w", err)
	}

	for _, p := range s.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_players
			 (session_id, player_index, name, color, is_bot, dice_rolls, sixes_rolled, moves, pieces_entered, turns_skipped)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, p.Index, p.Name, p.Color, p.IsBot,
			p.DiceRolls, p.SixesRolled, p.Moves, p.PiecesEntered, p.TurnsSkipped); err != nil {
			return fmt.Errorf("failed to insert player %d: %w", p.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	db.log.Debug().Str("session", s.ID).Int("turns", s.Turns).Msg("session saved")
	return nil
}

// RecentSessions retourne les dernières sessions, la plus récente d'abord
func (db *DB) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, started_at, ended_at, turns, bot_count FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	out := make([]SessionRecord, 0)
	for rows.Next() {
		var r SessionRecord
		var ended sql.NullTime
		if err := rows.Scan(&r.ID, &r.StartedAt, &ended, &r.Turns, &r.BotCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if ended.Valid {
			t := ended.Time
			r.EndedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SessionPlayers retourne les compteurs des joueurs d'une session
func (db *DB) SessionPlayers(ctx context.Context, sessionID string) ([]PlayerSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT player_index, name, color, is_bot, dice_rolls, sixes_rolled, moves, pieces_entered, turns_skipped
		 FROM session_players WHERE session_id = ? ORDER BY player_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session players: %w", err)
	}
	defer rows.Close()

	out := make([]PlayerSummary, 0, 4)
	for rows.Next() {
		var p PlayerSummary
		if err := rows.Scan(&p.Index, &p.Name, &p.Color, &p.IsBot,
			&p.DiceRolls, &p.SixesRolled, &p.Moves, &p.PiecesEntered, &p.TurnsSkipped); err != nil {
			return nil, fmt.Errorf("failed to scan session player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlayerTotals cumule les statistiques d'un nom de joueur
func (db *DB) GetPlayerTotals(ctx context.Context, name string) (*PlayerTotals, error) {
	t := &PlayerTotals{Name: name}
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(dice_rolls), 0), COALESCE(SUM(sixes_rolled), 0),
		        COALESCE(SUM(moves), 0), COALESCE(SUM(pieces_entered), 0), COALESCE(SUM(turns_skipped), 0)
		 FROM session_players WHERE name = ?`, name).
		Scan(&t.Sessions, &t.DiceRolls, &t.SixesRolled, &t.Moves, &t.PiecesEntered, &t.TurnsSkipped)
	if err != nil {
		return nil, fmt.Errorf("failed to get player totals: %w", err)
	}
	if t.Sessions == 0 {
		return nil, fmt.Errorf("player %q: %w", name, ErrNotFound)
	}
	return t, nil
}
