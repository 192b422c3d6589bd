package app

import (
	"fmt"

	"github.com/roach88/wtmobile/internal/gym"
)

// Display strings shared by every front end.
const (
	AddHeading   = "Add a gym"
	EditHeading  = "Edit gym"
	AddLabel     = "Add gym"
	SaveLabel    = "Save changes"
	EmptyMessage = "No gyms yet. Add your first above."
	MissingCity  = "—"
	DateLayout   = "2006-01-02"
)

// FormState is the form half of the controller state.
type FormState struct {
	Draft     gym.Draft
	EditingID string
	Error     string
}

// View is everything a front end needs to draw the page.
type View struct {
	Mode        Mode      `json:"mode"`
	Heading     string    `json:"heading"`
	SubmitLabel string    `json:"submitLabel"`
	ShowCancel  bool      `json:"showCancel"`
	Form        gym.Draft `json:"form"`
	EditingID   string    `json:"editingId,omitempty"`
	Error       string    `json:"error,omitempty"`
	Title       string    `json:"title"`
	Count       int       `json:"count"`
	Rows        []Row     `json:"rows"`
	Empty       string    `json:"empty,omitempty"`
}

// Row is one displayed record.
type Row struct {
	Position int     `json:"position"`
	Gym      gym.Gym `json:"gym"`
	City     string  `json:"cityLabel"`
	Added    string  `json:"added"`
	Notes    string  `json:"notesLabel,omitempty"`
	Editing  bool    `json:"editing,omitempty"`
}

// MarshalText lets Mode render as "add"/"edit" in JSON.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// BuildView maps a snapshot and form state to display state.
// The snapshot is shown in the order given; the controller keeps it newest
// first.
func BuildView(snapshot []gym.Gym, form FormState) View {
	v := View{
		Mode:        ModeAdd,
		Heading:     AddHeading,
		SubmitLabel: AddLabel,
		Form:        form.Draft,
		EditingID:   form.EditingID,
		Error:       form.Error,
		Count:       len(snapshot),
		Title:       fmt.Sprintf("Your gyms (%d)", len(snapshot)),
		Rows:        make([]Row, 0, len(snapshot)),
	}
	if form.EditingID != "" {
		v.Mode = ModeEdit
		v.Heading = EditHeading
		v.SubmitLabel = SaveLabel
		v.ShowCancel = true
	}
	if len(snapshot) == 0 {
		v.Empty = EmptyMessage
	}

	for i, g := range snapshot {
		v.Rows = append(v.Rows, Row{
			Position: i + 1,
			Gym:      g,
			City:     g.CityOr(MissingCity),
			Added:    g.CreatedAt.UTC().Format(DateLayout),
			Notes:    g.NotesOr(""),
			Editing:  g.ID == form.EditingID,
		})
	}
	return v
}
