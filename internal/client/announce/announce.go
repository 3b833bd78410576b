// internal/client/announce/announce.go
package announce

import (
	"embed"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/obrien-tchaleu/ludo-universe/internal/server/game"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

//go:embed locales/*.toml
var localeFS embed.FS

var supported = []language.Tag{language.English, language.Hindi, language.Arabic}

// Announcer produit les messages d'accessibilité localisés
type Announcer struct {
	lang      language.Tag
	localizer *i18n.Localizer
}

// NewBundle charge les fichiers de messages embarqués
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, tag := range supported {
		path := fmt.Sprintf("locales/active.%s.toml", tag)
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return bundle, nil
}

// New crée un annonceur pour la langue demandée; une langue inconnue retombe sur l'anglais
func New(lang string) (*Announcer, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}

	matcher := language.NewMatcher(supported)
	tag, _, _ := matcher.Match(language.Make(lang))
	base, _ := tag.Base()
	tag = language.Make(base.String())

	return &Announcer{
		lang:      tag,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
	}, nil
}

// Language retourne la langue effective
func (a *Announcer) Language() string {
	return a.lang.String()
}

// Supported retourne les langues disponibles
func Supported() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}

// Event retourne la ligne à annoncer pour un événement, "" si aucune
func (a *Announcer) Event(ev game.Event, players []models.Player) string {
	name := ""
	isBot := false
	if ev.Player >= 0 && ev.Player < len(players) {
		name = players[ev.Player].Name
		isBot = players[ev.Player].IsBot
	}

	switch ev.Kind {
	case game.EventRollStarted:
		return a.text("RollStarted", map[string]interface{}{"Name": name})
	case game.EventDiceResolved:
		return a.text("RolledDice", map[string]interface{}{"Value": ev.Dice})
	case game.EventPieceMoved:
		data := map[string]interface{}{"Name": name, "Piece": ev.Piece + 1, "Steps": ev.Dice}
		if ev.From.IsHome() {
			return a.text("PieceEntered", data)
		}
		return a.text("PieceMoved", data)
	case game.EventBonusTurnGranted:
		if isBot {
			return a.text("BonusTurnBot", map[string]interface{}{"Name": name})
		}
		return a.text("BonusTurn", nil)
	case game.EventNoLegalMove:
		return a.text("NoValidMoves", map[string]interface{}{"Name": name})
	case game.EventTurnChanged:
		return a.text("PlayerTurn", map[string]interface{}{"Name": name})
	case game.EventSessionEnded:
		return a.text("SessionEnded", nil)
	}
	return ""
}

var rejectionMessages = map[string]string{
	constants.ErrNotYourTurn:    "NotYourTurn",
	constants.ErrNoRollPending:  "RollFirst",
	constants.ErrInvalidMove:    "CannotMove",
	constants.ErrInvalidPiece:   "CannotMove",
	constants.ErrRollInProgress: "RollInProgress",
	constants.ErrMovePending:    "MovePending",
	constants.ErrBotControlled:  "BotControlled",
	constants.ErrGameNotStarted: "GameNotStarted",
	constants.ErrAlreadyStarted: "GameAlreadyStarted",
	constants.ErrSessionClosed:  "SessionClosed",
}

// Rejection retourne la ligne à annoncer pour une requête ou une configuration refusée
func (a *Announcer) Rejection(err error) string {
	if err == nil {
		return ""
	}

	var ce *game.ConfigError
	if errors.As(err, &ce) {
		switch {
		case ce.Has(game.ProblemNoHuman):
			return a.text("ErrorNoPlayers", nil)
		case ce.Has(game.ProblemDuplicateColor):
			return a.text("ErrorDuplicateColors", nil)
		}
		return a.text("InvalidConfig", nil)
	}

	if id, ok := rejectionMessages[game.RejectionCode(err)]; ok {
		return a.text(id, nil)
	}
	return err.Error()
}

// ColorName retourne le nom localisé d'une couleur
func (a *Announcer) ColorName(c constants.PlayerColor) string {
	switch c {
	case constants.ColorRed:
		return a.text("ColorRed", nil)
	case constants.ColorBlue:
		return a.text("ColorBlue", nil)
	case constants.ColorGreen:
		return a.text("ColorGreen", nil)
	case constants.ColorYellow:
		return a.text("ColorYellow", nil)
	}
	return string(c)
}

// text retourne l'identifiant lui-même si la traduction échoue
func (a *Announcer) text(id string, data map[string]interface{}) string {
	msg, err := a.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
