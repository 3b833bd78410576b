package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest est la cible errors.Is de toutes les requêtes rejetées
	ErrInvalidRequest = errors.New("invalid request")
	// ErrConfiguration est la cible errors.Is des configurations refusées
	ErrConfiguration = errors.New("invalid game configuration")
)

// RequestError décrit une requête de lancer ou de déplacement rejetée.
// Aucun état n'est modifié quand elle est retournée.
type RequestError struct {
	Code   string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Catégories de problèmes de configuration
const (
	ProblemBotCount       = "bot_count"
	ProblemNoHuman        = "no_human"
	ProblemUnknownColor   = "unknown_color"
	ProblemDuplicateColor = "duplicate_color"
	ProblemBotLevel       = "bot_level"
)

// ConfigError liste les problèmes qui empêchent l'initialisation.
// Kinds contient la catégorie de chaque entrée de Problems.
type ConfigError struct {
	Problems []string
	Kinds    []string
}

func (e *ConfigError) add(kind, problem string) {
	e.Kinds = append(e.Kinds, kind)
	e.Problems = append(e.Problems, problem)
}

// Has indique si un problème de la catégorie donnée a été relevé
func (e *ConfigError) Has(kind string) bool {
	for _, k := range e.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, strings.Join(e.Problems, "; "))
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func reject(code, reason string) *RequestError {
	return &RequestError{Code: code, Reason: reason}
}

// RejectionCode extrait le code d'une requête rejetée, "" sinon
func RejectionCode(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
