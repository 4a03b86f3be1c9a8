package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// SanitizeText retire tout HTML d'un texte saisi par l'utilisateur
func SanitizeText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
