// Package harness runs scripted form sessions against the gym controller.
//
// A scenario drives one controller the way a user drives the form: set
// fields, submit, start and cancel edits, delete with a yes or no answer.
// Each step may state the outcome it expects, and the run ends with
// assertions over the list, the form and individual records.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: add_two_gyms
//	description: "Newest record is listed first"
//	setup:
//	  - action: set
//	    name: "Anytime Madrid"
//	    city: "Madrid"
//	  - action: submit
//	flow:
//	  - action: set
//	    name: "PowerHouse"
//	  - action: submit
//	    expect: { outcome: ok }
//	assertions:
//	  - type: list_order
//	    names: ["PowerHouse", "Anytime Madrid"]
//	  - type: record
//	    position: 2
//	    expect: { id: "gym-0001", city: "Madrid" }
//
// # Actions
//
//   - set: copy name, city and notes (whichever are present) into the form
//   - submit: add or save; outcome ok or rejected
//   - edit: load the record at ref into the form; outcome ok or unknown
//   - cancel: clear the form and leave edit mode
//   - delete: delete the record at ref, answering the prompt with confirm;
//     outcome deleted, declined or unknown
//   - reload: start a fresh controller over the same database
//
// # Assertion Types
//
//   - list_order: the displayed names, top to bottom
//   - count: the number of displayed records
//   - mode: "add" or "edit"
//   - form: the current form fields
//   - message: the validation message ("" for none)
//   - record: fields of the record at a 1-based position
//
// # Deterministic Runs
//
// Every run uses a private in-memory SQLite database, a step clock starting
// at testutil.DefaultEpoch and ids gym-0001, gym-0002, ... so traces and
// rendered pages can be compared against golden files.
package harness
