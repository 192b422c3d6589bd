package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted form session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup steps run before the flow and must all succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the session under test.
	Flow []Step `yaml:"flow"`

	// Assertions are checked after the flow.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one user action.
type Step struct {
	// Action is one of set, submit, edit, cancel, delete, reload.
	Action string `yaml:"action"`

	// Name, City and Notes are form values for set. Absent keys leave the
	// field alone; an empty string clears it.
	Name  *string `yaml:"name,omitempty"`
	City  *string `yaml:"city,omitempty"`
	Notes *string `yaml:"notes,omitempty"`

	// Ref selects a record for edit and delete: position, id or id prefix.
	Ref string `yaml:"ref,omitempty"`

	// Confirm answers the delete prompt.
	Confirm bool `yaml:"confirm,omitempty"`

	// Expect, if set, is checked against the step's outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause states what a step should produce.
type ExpectClause struct {
	// Outcome is the expected step outcome (ok, rejected, unknown, deleted,
	// declined).
	Outcome string `yaml:"outcome"`

	// ID, if set, is the record id the step should touch.
	ID string `yaml:"id,omitempty"`
}

// Assertion checks state after the flow.
type Assertion struct {
	// Type is one of list_order, count, mode, form, message, record.
	Type string `yaml:"type"`

	// Names is the expected display order (list_order).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected number of records (count).
	Count int `yaml:"count,omitempty"`

	// Mode is "add" or "edit" (mode).
	Mode string `yaml:"mode,omitempty"`

	// Message is the expected validation message (message).
	Message string `yaml:"message,omitempty"`

	// Position is the 1-based list position (record).
	Position int `yaml:"position,omitempty"`

	// Expect holds field values (form, record). Subset match; "" means
	// the field is empty or absent.
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Step actions.
const (
	ActionSet    = "set"
	ActionSubmit = "submit"
	ActionEdit   = "edit"
	ActionCancel = "cancel"
	ActionDelete = "delete"
	ActionReload = "reload"
)

// Assertion type constants.
const (
	AssertListOrder = "list_order"
	AssertCount     = "count"
	AssertMode      = "mode"
	AssertForm      = "form"
	AssertMessage   = "message"
	AssertRecord    = "record"
)

var (
	formFields   = map[string]bool{"name": true, "city": true, "notes": true}
	recordFields = map[string]bool{"id": true, "name": true, "city": true, "notes": true, "created_at": true}
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(step Step) error {
	switch step.Action {
	case ActionSet:
		if step.Name == nil && step.City == nil && step.Notes == nil {
			return fmt.Errorf("set needs at least one of name, city, notes")
		}
	case ActionEdit, ActionDelete:
		if step.Ref == "" {
			return fmt.Errorf("ref is required for %s", step.Action)
		}
	case ActionSubmit, ActionCancel, ActionReload:
	case "":
		return fmt.Errorf("action is required")
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	if step.Action != ActionSet && (step.Name != nil || step.City != nil || step.Notes != nil) {
		return fmt.Errorf("form values are only allowed with set")
	}
	if step.Expect != nil && step.Expect.Outcome == "" {
		return fmt.Errorf("expect: outcome is required")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertListOrder:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: names is required for list_order (use [] for an empty list)", index)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertMode:
		if a.Mode != "add" && a.Mode != "edit" {
			return fmt.Errorf("assertions[%d]: mode must be add or edit", index)
		}
	case AssertMessage:
	case AssertForm:
		if err := checkKeys(index, a.Expect, formFields); err != nil {
			return err
		}
	case AssertRecord:
		if a.Position < 1 {
			return fmt.Errorf("assertions[%d]: position must be 1 or more for record", index)
		}
		if err := checkKeys(index, a.Expect, recordFields); err != nil {
			return err
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func checkKeys(index int, expect map[string]string, allowed map[string]bool) error {
	if len(expect) == 0 {
		return fmt.Errorf("assertions[%d]: expect is required", index)
	}
	for key := range expect {
		if !allowed[key] {
			return fmt.Errorf("assertions[%d]: unknown field %q", index, key)
		}
	}
	return nil
}
