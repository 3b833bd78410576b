package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "", cfg.Database.Driver)
	assert.Equal(t, "en", cfg.Game.Language)

	game, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, constants.Palette, game.Colors)
	assert.Equal(t, "Player 1", game.PlayerNames[0])
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9000"
database:
  driver: mysql
  host: db
  username: ludo
  password: secret
  database: ludo
game:
  player_names: ["Asha", "Omar"]
  colors: [green, red, blue, yellow]
  bot_count: 2
logging:
  level: debug
`)

	t.Setenv("LUDO_PORT", "9100")
	t.Setenv("LUDO_BOT_COUNT", "1")
	t.Setenv("LUDO_LANGUAGE", "hi")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "hi", cfg.Game.Language)
	assert.Equal(t, "ludo:secret@tcp(db:3306)/ludo?parseTime=true&charset=utf8mb4", cfg.DatabaseDSN())

	game, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, game.BotCount)
	assert.Equal(t, "Omar", game.PlayerNames[1])
	assert.Equal(t, constants.ColorGreen, game.Colors[0])
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{"bad port", "server:\n  port: \"http\"\n", nil},
		{"unknown driver", "database:\n  driver: postgres\n", nil},
		{"unknown field", "server:\n  listen: 1\n", nil},
		{"long name", "game:\n  player_names: [\"abcdefghijklmnopqrstuvwxyz\"]\n", nil},
		{"bot count env", "", map[string]string{"LUDO_BOT_COUNT": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDatabaseDSNKeepsExplicitValue(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = "file::memory:"
	assert.Equal(t, "file::memory:", cfg.DatabaseDSN())
}
