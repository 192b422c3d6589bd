// Package render draws controller views as plain text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/wtmobile/internal/app"
	"github.com/roach88/wtmobile/internal/gym"
)

// Title heads the full page.
const Title = "WT Mobile — Gyms"

// Footer closes the full page.
const Footer = "Data is saved in your local database. It persists across restarts."

// Page writes the form, the list and the footer.
func Page(w io.Writer, v app.View) error {
	var b strings.Builder

	b.WriteString(Title + "\n\n")
	writeForm(&b, v)
	b.WriteString("\n")
	writeList(&b, v)
	b.WriteString("\n" + Footer + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// List writes only the list section.
func List(w io.Writer, v app.View) error {
	var b strings.Builder
	writeList(&b, v)
	_, err := io.WriteString(w, b.String())
	return err
}

// Gym writes a single record with every field.
func Gym(w io.Writer, g gym.Gym) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", g.Name)
	fmt.Fprintf(&b, "  id:      %s\n", g.ID)
	fmt.Fprintf(&b, "  city:    %s\n", g.CityOr(app.MissingCity))
	fmt.Fprintf(&b, "  notes:   %s\n", g.NotesOr(app.MissingCity))
	fmt.Fprintf(&b, "  created: %s\n", gym.FormatTimestamp(g.CreatedAt))
	_, err := io.WriteString(w, b.String())
	return err
}

func writeForm(b *strings.Builder, v app.View) {
	b.WriteString(v.Heading + "\n")
	field(b, "Name *:", v.Form.Name)
	field(b, "City:", v.Form.City)
	field(b, "Notes:", v.Form.Notes)
	if v.Error != "" {
		fmt.Fprintf(b, "  ! %s\n", v.Error)
	}
	if v.ShowCancel {
		fmt.Fprintf(b, "  [%s] [Cancel]\n", v.SubmitLabel)
	} else {
		fmt.Fprintf(b, "  [%s]\n", v.SubmitLabel)
	}
}

func writeList(b *strings.Builder, v app.View) {
	b.WriteString(v.Title + "\n")
	if len(v.Rows) == 0 {
		fmt.Fprintf(b, "  %s\n", v.Empty)
		return
	}
	for _, row := range v.Rows {
		marker := ""
		if row.Editing {
			marker = "  (editing)"
		}
		fmt.Fprintf(b, "  %d. %s%s\n", row.Position, row.Gym.Name, marker)
		fmt.Fprintf(b, "     %s · added %s\n", row.City, row.Added)
		if row.Notes != "" {
			fmt.Fprintf(b, "     %s\n", row.Notes)
		}
	}
}

// field writes "  label value", without trailing space when value is empty.
func field(b *strings.Builder, label, value string) {
	if value == "" {
		fmt.Fprintf(b, "  %s\n", label)
		return
	}
	fmt.Fprintf(b, "  %s %s\n", label, value)
}
