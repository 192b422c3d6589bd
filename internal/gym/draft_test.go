package gym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraft_Normalize(t *testing.T) {
	d := Draft{Name: "  Café Fit ", City: "\tMadrid\n", Notes: "  "}.Normalize()

	assert.Equal(t, "Café Fit", d.Name)
	assert.Equal(t, "Madrid", d.City)
	assert.Equal(t, "", d.Notes)
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		err   error
	}{
		{"empty", Draft{}, ErrNameRequired},
		{"spaces", Draft{Name: "   "}, ErrNameRequired},
		{"only city", Draft{City: "Madrid"}, ErrNameRequired},
		{"padded", Draft{Name: "  Gold's Gym  "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
