package gym

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is the persisted form of CreatedAt.
// Fixed width, so lexical order equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var (
	// ErrNameRequired is returned when the trimmed name is empty.
	ErrNameRequired = errors.New("name is required")
	// ErrMissingID is returned for a record without an id.
	ErrMissingID = errors.New("id is required")
	// ErrMissingCreatedAt is returned for a record without a creation time.
	ErrMissingCreatedAt = errors.New("created at is required")
)

// Gym is a single tracked gym.
//
// City and Notes are optional: nil means absent. ID and CreatedAt are
// assigned once at creation and never change.
type Gym struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	City      *string   `json:"city,omitempty" yaml:"city,omitempty"`
	Notes     *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// New builds a validated Gym from a draft.
// The draft is normalised first; createdAt is truncated to millisecond
// precision so the in-memory value matches what storage round-trips.
func New(id string, draft Draft, createdAt time.Time) (Gym, error) {
	d := draft.Normalize()
	g := Gym{
		ID:        strings.TrimSpace(id),
		Name:      d.Name,
		City:      Optional(d.City),
		Notes:     Optional(d.Notes),
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
	if err := g.Validate(); err != nil {
		return Gym{}, err
	}
	return g, nil
}

// Validate checks the record invariants.
func (g Gym) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrNameRequired
	}
	if g.CreatedAt.IsZero() {
		return ErrMissingCreatedAt
	}
	return nil
}

// CityOr returns the city, or fallback when absent.
func (g Gym) CityOr(fallback string) string {
	if g.City == nil {
		return fallback
	}
	return *g.City
}

// NotesOr returns the notes, or fallback when absent.
func (g Gym) NotesOr(fallback string) string {
	if g.Notes == nil {
		return fallback
	}
	return *g.Notes
}

// Draft returns the record as form input. Absent fields become "".
func (g Gym) Draft() Draft {
	return Draft{
		Name:  g.Name,
		City:  g.CityOr(""),
		Notes: g.NotesOr(""),
	}
}

// Optional converts a trimmed string to an optional field value.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FormatTimestamp renders t in the persisted ISO-8601 layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp. RFC 3339 input with other
// precisions is accepted as well.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// SortNewestFirst orders gyms by CreatedAt descending, then ID descending.
func SortNewestFirst(gyms []Gym) {
	sort.SliceStable(gyms, func(i, j int) bool {
		return Newer(gyms[i], gyms[j])
	})
}

// Newer reports whether a sorts before b in display order.
func Newer(a, b Gym) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
