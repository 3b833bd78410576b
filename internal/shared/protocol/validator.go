// internal/shared/protocol/validator.go
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

// Validator valide les messages et payloads
type Validator struct{}

// NewValidator crée un nouveau validateur
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateMessage valide un message entrant et retourne son payload décodé
// (RollDicePayload, MovePiecePayload, ou nil pour PING)
func (v *Validator) ValidateMessage(msg *models.NetworkMessage) (interface{}, error) {
	if msg == nil {
		return nil, fmt.Errorf("message is nil")
	}

	if msg.Type == "" {
		return nil, fmt.Errorf("message type is empty")
	}

	switch msg.Type {
	case constants.MsgRollDice:
		var data models.RollDicePayload
		if err := ExtractPayload(msg.Payload, &data); err != nil {
			return nil, err
		}
		if err := ValidatePlayerIndex(data.Player); err != nil {
			return nil, err
		}
		return data, nil
	case constants.MsgMovePiece:
		var data models.MovePiecePayload
		if err := ExtractPayload(msg.Payload, &data); err != nil {
			return nil, err
		}
		// l'index du pion est jugé par le moteur (INVALID_PIECE)
		if err := ValidatePlayerIndex(data.Player); err != nil {
			return nil, err
		}
		return data, nil
	case constants.MsgPing:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported message type %q", msg.Type)
	}
}

// ExtractPayload extrait et convertit le payload
func ExtractPayload(payload interface{}, target interface{}) error {
	if payload == nil {
		return fmt.Errorf("payload is missing")
	}

	// Convertir le payload en JSON
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Décoder dans la structure cible
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

// CreateSessionPayload décrit une nouvelle session; les champs absents
// gardent la valeur de la configuration de base
type CreateSessionPayload struct {
	PlayerNames []string `json:"player_names,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	BotCount    *int     `json:"bot_count,omitempty"`
	BotLevel    string   `json:"bot_level,omitempty"`
}

// ToGameConfig applique le payload sur base.
// Les règles de jeu (humain requis, couleurs uniques) restent au moteur.
func (p CreateSessionPayload) ToGameConfig(base models.GameConfig) (models.GameConfig, error) {
	cfg := base

	if len(p.PlayerNames) > constants.MaxPlayers {
		return cfg, fmt.Errorf("at most %d player names, got %d", constants.MaxPlayers, len(p.PlayerNames))
	}
	if len(p.Colors) > constants.MaxPlayers {
		return cfg, fmt.Errorf("at most %d colors, got %d", constants.MaxPlayers, len(p.Colors))
	}

	for i, name := range p.PlayerNames {
		if err := ValidatePlayerName(name); err != nil {
			return cfg, fmt.Errorf("player %d: %w", i+1, err)
		}
		cfg.PlayerNames[i] = strings.TrimSpace(name)
	}
	for i, c := range p.Colors {
		cfg.Colors[i] = constants.PlayerColor(strings.ToLower(strings.TrimSpace(c)))
	}

	if p.BotCount != nil {
		cfg.BotCount = *p.BotCount
	}
	if p.BotLevel != "" {
		cfg.BotLevel = p.BotLevel
	}
	return cfg, nil
}

// ValidatePlayerName accepte un nom vide (remplacé par défaut) ou d'au plus 20 caractères
func ValidatePlayerName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) > constants.MaxNameLength {
		return fmt.Errorf("player name must be at most %d characters", constants.MaxNameLength)
	}

	for _, char := range name {
		if char < ' ' {
			return fmt.Errorf("player name contains control characters")
		}
	}

	return nil
}

// ValidatePlayerIndex vérifie un index de joueur
func ValidatePlayerIndex(index int) error {
	if index < 0 || index >= constants.MaxPlayers {
		return fmt.Errorf("player must be between 0 and %d", constants.MaxPlayers-1)
	}
	return nil
}
