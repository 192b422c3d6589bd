package gym

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Draft is unsaved form input for a new record or an edit in progress.
type Draft struct {
	Name  string `json:"name" yaml:"name"`
	City  string `json:"city" yaml:"city"`
	Notes string `json:"notes" yaml:"notes"`
}

// Normalize trims every field and applies Unicode NFC so visually identical
// input compares and stores identically.
func (d Draft) Normalize() Draft {
	return Draft{
		Name:  normalizeText(d.Name),
		City:  normalizeText(d.City),
		Notes: normalizeText(d.Notes),
	}
}

// Validate reports ErrNameRequired when the normalised name is empty.
// No other field is validated.
func (d Draft) Validate() error {
	if d.Normalize().Name == "" {
		return ErrNameRequired
	}
	return nil
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
