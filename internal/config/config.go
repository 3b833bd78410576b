// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/protocol"
	"github.com/obrien-tchaleu/ludo-universe/pkg/database"
)

// Config représente la configuration du serveur
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Driver   string `yaml:"driver"` // mysql, sqlite3 ou vide pour désactiver
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	} `yaml:"database"`
	Game struct {
		PlayerNames []string `yaml:"player_names"`
		Colors      []string `yaml:"colors"`
		BotCount    int      `yaml:"bot_count"`
		BotLevel    string   `yaml:"bot_level"`
		Language    string   `yaml:"language"`
	} `yaml:"game"`
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

// Default retourne la configuration utilisée quand rien n'est fourni
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "8080"
	cfg.Database.Port = "3306"
	cfg.Game.BotLevel = constants.BotLevelRandom
	cfg.Game.Language = "en"
	cfg.Logging.Level = "info"
	return cfg
}

// Load charge .env, le fichier YAML puis les variables d'environnement.
// Un chemin vide ou un fichier absent garde les valeurs par défaut.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, "LUDO_HOST")
	setString(&c.Server.Port, "LUDO_PORT")
	setString(&c.Database.Driver, "LUDO_DB_DRIVER")
	setString(&c.Database.DSN, "LUDO_DB_DSN")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Game.Language, "LUDO_LANGUAGE")

	if v := os.Getenv("LUDO_BOT_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LUDO_BOT_COUNT: %w", err)
		}
		c.Game.BotCount = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate vérifie les champs qui ne dépendent pas des règles du jeu
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}

	switch c.Database.Driver {
	case "", "mysql", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if _, err := c.GameConfig(); err != nil {
		return fmt.Errorf("invalid game section: %w", err)
	}
	return nil
}

// Addr retourne l'adresse d'écoute
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DatabaseDSN retourne le DSN explicite ou celui construit pour MySQL
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" || c.Database.Driver != "mysql" {
		return c.Database.DSN
	}
	return database.MySQLDSN(c.Database.Host, c.Database.Port, c.Database.Username, c.Database.Password, c.Database.Database)
}

// GameConfig convertit la section game en configuration de partie
func (c *Config) GameConfig() (models.GameConfig, error) {
	botCount := c.Game.BotCount
	return protocol.CreateSessionPayload{
		PlayerNames: c.Game.PlayerNames,
		Colors:      c.Game.Colors,
		BotCount:    &botCount,
		BotLevel:    c.Game.BotLevel,
	}.ToGameConfig(models.DefaultGameConfig())
}
