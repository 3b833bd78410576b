package game

import (
	"fmt"
	"strings"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
	"github.com/obrien-tchaleu/ludo-universe/pkg/ai"
)

// NormalizeConfig remplace les noms vides par "Player N"
func NormalizeConfig(cfg models.GameConfig) models.GameConfig {
	for i, name := range cfg.PlayerNames {
		name = strings.TrimSpace(name)
		if name == "" {
			name = models.DefaultPlayerName(i)
		}
		cfg.PlayerNames[i] = name
	}
	return cfg
}

// ValidateConfig vérifie la configuration avant le démarrage d'une session
func ValidateConfig(cfg models.GameConfig) error {
	ce := &ConfigError{}

	switch {
	case cfg.BotCount < 0 || cfg.BotCount > constants.MaxBots:
		ce.add(ProblemBotCount, fmt.Sprintf("bot count must be between 0 and %d, got %d", constants.MaxBots, cfg.BotCount))
	case cfg.HumanCount() < 1:
		ce.add(ProblemNoHuman, "at least one human player is required")
	}

	seen := make(map[constants.PlayerColor]int)
	for i, c := range cfg.Colors {
		if !constants.IsValidColor(c) {
			ce.add(ProblemUnknownColor, fmt.Sprintf("player %d has unknown color %q", i+1, c))
			continue
		}
		if prev, dup := seen[c]; dup {
			ce.add(ProblemDuplicateColor, fmt.Sprintf("players %d and %d share color %q", prev+1, i+1, c))
			continue
		}
		seen[c] = i
	}

	if cfg.BotCount > 0 {
		if _, err := ai.NewPolicy(cfg.BotLevel, nil); err != nil {
			ce.add(ProblemBotLevel, err.Error())
		}
	}

	if len(ce.Problems) > 0 {
		return ce
	}
	return nil
}
