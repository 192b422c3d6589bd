package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/wtmobile/internal/app"
	"github.com/roach88/wtmobile/internal/gym"
)

// State is what assertions inspect. *app.Controller implements it.
type State interface {
	Gyms() []gym.Gym
	Mode() app.Mode
	Form() gym.Draft
	ValidationMessage() string
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}

	return buf.String()
}

// assertListOrder checks the displayed names, top to bottom.
func assertListOrder(gyms []gym.Gym, assertion Assertion, trace []TraceEvent) error {
	actual := make([]string, 0, len(gyms))
	for _, g := range gyms {
		actual = append(actual, g.Name)
	}
	if equalStrings(actual, assertion.Names) {
		return nil
	}
	return &AssertionError{
		Type:     AssertListOrder,
		Expected: fmt.Sprintf("%q", assertion.Names),
		Actual:   fmt.Sprintf("%q", actual),
		Trace:    trace,
	}
}

func assertCount(gyms []gym.Gym, assertion Assertion, trace []TraceEvent) error {
	if len(gyms) == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d records", assertion.Count),
		Actual:   fmt.Sprintf("%d records", len(gyms)),
		Trace:    trace,
	}
}

func assertMode(mode app.Mode, assertion Assertion, trace []TraceEvent) error {
	if mode.String() == assertion.Mode {
		return nil
	}
	return &AssertionError{
		Type:     AssertMode,
		Expected: assertion.Mode,
		Actual:   mode.String(),
		Trace:    trace,
	}
}

func assertMessage(message string, assertion Assertion, trace []TraceEvent) error {
	if message == assertion.Message {
		return nil
	}
	return &AssertionError{
		Type:     AssertMessage,
		Expected: fmt.Sprintf("%q", assertion.Message),
		Actual:   fmt.Sprintf("%q", message),
		Trace:    trace,
	}
}

func assertForm(form gym.Draft, assertion Assertion, trace []TraceEvent) error {
	actual := map[string]string{
		"name":  form.Name,
		"city":  form.City,
		"notes": form.Notes,
	}
	return matchFields(AssertForm, "form", actual, assertion.Expect, trace)
}

// assertRecord checks fields of the record at a 1-based position.
func assertRecord(gyms []gym.Gym, assertion Assertion, trace []TraceEvent) error {
	if assertion.Position > len(gyms) {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("a record at position %d", assertion.Position),
			Actual:   fmt.Sprintf("%d records", len(gyms)),
			Trace:    trace,
		}
	}

	g := gyms[assertion.Position-1]
	actual := map[string]string{
		"id":         g.ID,
		"name":       g.Name,
		"city":       g.CityOr(""),
		"notes":      g.NotesOr(""),
		"created_at": gym.FormatTimestamp(g.CreatedAt),
	}
	return matchFields(AssertRecord, fmt.Sprintf("record %d", assertion.Position), actual, assertion.Expect, trace)
}

// matchFields compares the expected subset of fields. Mismatches are listed
// in key order so messages are stable.
func matchFields(kind, subject string, actual, expected map[string]string, trace []TraceEvent) error {
	keys := make([]string, 0, len(expected))
	for key := range expected {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var want, got []string
	for _, key := range keys {
		if actual[key] != expected[key] {
			want = append(want, fmt.Sprintf("%s=%q", key, expected[key]))
			got = append(got, fmt.Sprintf("%s=%q", key, actual[key]))
		}
	}
	if len(want) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: subject + " " + strings.Join(want, " "),
		Actual:   subject + " " + strings.Join(got, " "),
		Trace:    trace,
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(state State, assertions []Assertion, trace []TraceEvent) []string {
	var errors []string
	gyms := state.Gyms()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertListOrder:
			err = assertListOrder(gyms, assertion, trace)
		case AssertCount:
			err = assertCount(gyms, assertion, trace)
		case AssertMode:
			err = assertMode(state.Mode(), assertion, trace)
		case AssertMessage:
			err = assertMessage(state.ValidationMessage(), assertion, trace)
		case AssertForm:
			err = assertForm(state.Form(), assertion, trace)
		case AssertRecord:
			err = assertRecord(gyms, assertion, trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
