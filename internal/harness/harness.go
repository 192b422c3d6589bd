package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/wtmobile/internal/app"
	"github.com/roach88/wtmobile/internal/gym"
	"github.com/roach88/wtmobile/internal/render"
	"github.com/roach88/wtmobile/internal/store"
	"github.com/roach88/wtmobile/internal/testutil"
)

// Harness is the scenario execution engine.
// It owns one database and the controller currently driving it.
type Harness struct {
	store  *store.Store
	ctrl   *app.Controller
	clock  *testutil.StepClock
	ids    *testutil.CountingIDs
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Open the database and load a controller
//  2. Execute setup steps; any outcome other than ok is an error
//  3. Execute flow steps, checking expect clauses
//  4. Evaluate assertions and render the final page
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewStepClock(testutil.DefaultEpoch, 0),
		ids:    testutil.NewCountingIDs("gym"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	if err := h.reload(ctx); err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Setup {
		event, err := h.execute(ctx, "setup", step)
		if err != nil {
			return nil, fmt.Errorf("setup step %d: %w", i, err)
		}
		if !setupSucceeded(event.Outcome) {
			return nil, fmt.Errorf("setup step %d: %s returned %s", i, step.Action, event.Outcome)
		}
		result.AddTrace(event)
	}

	for i, step := range scenario.Flow {
		event, err := h.execute(ctx, "flow", step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		result.AddTrace(event)

		if step.Expect == nil {
			continue
		}
		if step.Expect.Outcome != event.Outcome {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected outcome %s, got %s",
				i, step.Action, step.Expect.Outcome, event.Outcome))
		}
		if step.Expect.ID != "" && step.Expect.ID != event.ID {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected id %q, got %q",
				i, step.Action, step.Expect.ID, event.ID))
		}
	}

	for _, msg := range EvaluateAssertions(h.ctrl, scenario.Assertions, result.Trace) {
		result.AddError(msg)
	}

	result.Gyms = h.ctrl.Gyms()
	var page strings.Builder
	if err := render.Page(&page, h.ctrl.View()); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	result.Page = page.String()

	return result, nil
}

func setupSucceeded(outcome string) bool {
	return outcome == OutcomeOK || outcome == OutcomeDeleted
}

// reload replaces the controller with a fresh one over the same database,
// as if the program had been restarted.
func (h *Harness) reload(ctx context.Context) error {
	ctrl := app.New(h.store,
		app.WithClock(h.clock),
		app.WithIDGenerator(h.ids),
		app.WithLogger(h.logger),
	)
	if err := ctrl.Load(ctx); err != nil {
		return fmt.Errorf("failed to load gyms: %w", err)
	}
	h.ctrl = ctrl
	return nil
}

// execute runs one step. Rejections are outcomes; only storage failures are
// returned as errors.
func (h *Harness) execute(ctx context.Context, phase string, step Step) (TraceEvent, error) {
	event := TraceEvent{Phase: phase, Action: step.Action, Outcome: OutcomeOK}

	switch step.Action {
	case ActionSet:
		event.Args = formatSetArgs(step)
		for field, value := range map[app.Field]*string{
			app.FieldName:  step.Name,
			app.FieldCity:  step.City,
			app.FieldNotes: step.Notes,
		} {
			if value == nil {
				continue
			}
			if err := h.ctrl.SetField(field, *value); err != nil {
				return event, err
			}
		}

	case ActionSubmit:
		saved, err := h.ctrl.Submit(ctx)
		switch {
		case errors.Is(err, gym.ErrNameRequired):
			event.Outcome = OutcomeRejected
		case err != nil:
			return event, err
		default:
			event.ID = saved.ID
		}

	case ActionEdit:
		event.Args = "ref=" + strconv.Quote(step.Ref)
		g, err := h.ctrl.Resolve(step.Ref)
		if err == nil {
			err = h.ctrl.StartEdit(g.ID)
		}
		if errors.Is(err, app.ErrUnknownGym) {
			event.Outcome = OutcomeUnknown
			break
		}
		if err != nil {
			return event, err
		}
		event.ID = g.ID

	case ActionCancel:
		h.ctrl.Cancel()

	case ActionDelete:
		event.Args = fmt.Sprintf("ref=%s confirm=%t", strconv.Quote(step.Ref), step.Confirm)
		g, err := h.ctrl.Resolve(step.Ref)
		if errors.Is(err, app.ErrUnknownGym) {
			event.Outcome = OutcomeUnknown
			break
		}
		if err != nil {
			return event, err
		}
		answer := app.ConfirmFunc(func(string) (bool, error) { return step.Confirm, nil })
		deleted, err := h.ctrl.Delete(ctx, g.ID, answer)
		if err != nil {
			return event, err
		}
		event.ID = g.ID
		event.Outcome = OutcomeDeclined
		if deleted {
			event.Outcome = OutcomeDeleted
		}

	case ActionReload:
		if err := h.reload(ctx); err != nil {
			return event, err
		}

	default:
		return event, fmt.Errorf("unknown action %q", step.Action)
	}

	h.logger.Info("step completed",
		"phase", phase,
		"action", step.Action,
		"outcome", event.Outcome,
		"id", event.ID,
	)
	return event, nil
}

// formatSetArgs renders the present form values in a fixed order.
func formatSetArgs(step Step) string {
	var parts []string
	for _, kv := range []struct {
		key   string
		value *string
	}{
		{"name", step.Name},
		{"city", step.City},
		{"notes", step.Notes},
	} {
		if kv.value != nil {
			parts = append(parts, kv.key+"="+strconv.Quote(*kv.value))
		}
	}
	return strings.Join(parts, " ")
}
