package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/wtmobile/internal/gym"
)

// Step outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeUnknown  = "unknown"
	OutcomeDeleted  = "deleted"
	OutcomeDeclined = "declined"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Phase   string `json:"phase"` // "setup" or "flow"
	Action  string `json:"action"`
	Args    string `json:"args,omitempty"`
	Outcome string `json:"outcome"`
	ID      string `json:"id,omitempty"` // record touched by the step, if any
}

// String formats the event as one trace line.
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", e.Seq, e.Action)
	if e.Args != "" {
		b.WriteString(" " + e.Args)
	}
	b.WriteString(" -> " + e.Outcome)
	if e.ID != "" {
		b.WriteString(" " + e.ID)
	}
	return b.String()
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Gyms is the final snapshot, newest first.
	Gyms []gym.Gym `json:"gyms"`

	// Page is the final rendered text page.
	Page string `json:"page"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event, numbering it.
func (r *Result) AddTrace(e TraceEvent) {
	e.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, e)
}
