package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/wtmobile/internal/gym"
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Delete this gym?"

// NameRequiredMessage is shown when a submit is rejected for a blank name.
const NameRequiredMessage = "Name is required"

// ErrUnknownGym is returned when a reference does not match a loaded record.
var ErrUnknownGym = errors.New("unknown gym")

// Store is the persistence the controller needs.
type Store interface {
	Insert(ctx context.Context, g gym.Gym) error
	Upsert(ctx context.Context, g gym.Gym) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]gym.Gym, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })

// Mode is the form state.
type Mode int

const (
	// ModeAdd is the initial state: the form creates a new record.
	ModeAdd Mode = iota
	// ModeEdit means the form is loaded from an existing record.
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "add"
}

// Field names a form input.
type Field string

const (
	FieldName  Field = "name"
	FieldCity  Field = "city"
	FieldNotes Field = "notes"
)

// Controller mediates between form input and the store.
type Controller struct {
	store  Store
	ids    gym.IDGenerator
	clock  gym.Clock
	logger *slog.Logger

	gyms      []gym.Gym
	form      gym.Draft
	editingID string
	errMsg    string
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator overrides the UUIDv7 id generator.
func WithIDGenerator(ids gym.IDGenerator) Option {
	return func(c *Controller) { c.ids = ids }
}

// WithClock overrides the wall clock used for createdAt.
func WithClock(clock gym.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New creates a controller in Add mode with an empty snapshot.
// Call Load to read the initial snapshot.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		ids:    gym.UUIDv7Generator{},
		clock:  gym.SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		gyms:   []gym.Gym{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the snapshot with the current contents of the store.
func (c *Controller) Load(ctx context.Context) error {
	gyms, err := c.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load gyms: %w", err)
	}
	if gyms == nil {
		gyms = []gym.Gym{}
	}
	c.gyms = gyms
	c.logger.Debug("snapshot loaded", "count", len(gyms))
	return nil
}

// Gyms returns a copy of the loaded snapshot.
func (c *Controller) Gyms() []gym.Gym {
	out := make([]gym.Gym, len(c.gyms))
	copy(out, c.gyms)
	return out
}

// Form returns the current draft as typed, without normalisation.
func (c *Controller) Form() gym.Draft {
	return c.form
}

// Mode reports whether the form adds or edits.
func (c *Controller) Mode() Mode {
	if c.editingID != "" {
		return ModeEdit
	}
	return ModeAdd
}

// EditingID returns the id being edited, or "".
func (c *Controller) EditingID() string {
	return c.editingID
}

// ValidationMessage returns the message from the last rejected submit.
func (c *Controller) ValidationMessage() string {
	return c.errMsg
}

// SetField updates one form input.
func (c *Controller) SetField(field Field, value string) error {
	switch field {
	case FieldName:
		c.form.Name = value
	case FieldCity:
		c.form.City = value
	case FieldNotes:
		c.form.Notes = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// SetDraft replaces all form inputs at once.
func (c *Controller) SetDraft(d gym.Draft) {
	c.form = d
}

// Submit saves the draft.
//
// In Add mode a new record is inserted with a fresh id and createdAt. In Edit
// mode the record is replaced, keeping its original createdAt, and the form
// returns to Add mode. On success the form is cleared and the snapshot
// reloaded.
//
// A blank name is rejected with gym.ErrNameRequired: the form keeps its
// contents, ValidationMessage is set and the store is not touched. Storage
// errors are returned with the form intact.
func (c *Controller) Submit(ctx context.Context) (gym.Gym, error) {
	c.errMsg = ""
	if err := c.form.Validate(); err != nil {
		c.errMsg = NameRequiredMessage
		c.logger.Debug("submit rejected", "reason", err)
		return gym.Gym{}, err
	}

	var (
		saved gym.Gym
		err   error
	)
	if c.editingID != "" {
		saved, err = c.saveEdit(ctx)
	} else {
		saved, err = c.saveNew(ctx)
	}
	if err != nil {
		return gym.Gym{}, err
	}

	c.resetForm()
	if err := c.Load(ctx); err != nil {
		return saved, err
	}
	return saved, nil
}

func (c *Controller) saveNew(ctx context.Context) (gym.Gym, error) {
	g, err := gym.New(c.ids.NewID(), c.form, c.clock.Now())
	if err != nil {
		return gym.Gym{}, err
	}
	if err := c.store.Insert(ctx, g); err != nil {
		return gym.Gym{}, fmt.Errorf("add gym: %w", err)
	}
	c.logger.Info("gym added", "id", g.ID, "name", g.Name)
	return g, nil
}

func (c *Controller) saveEdit(ctx context.Context) (gym.Gym, error) {
	var createdAt time.Time
	if orig, ok := c.find(c.editingID); ok {
		createdAt = orig.CreatedAt
	} else {
		createdAt = c.clock.Now()
		c.logger.Warn("edited gym missing from snapshot, stamping new createdAt", "id", c.editingID)
	}

	g, err := gym.New(c.editingID, c.form, createdAt)
	if err != nil {
		return gym.Gym{}, err
	}
	if err := c.store.Upsert(ctx, g); err != nil {
		return gym.Gym{}, fmt.Errorf("save gym: %w", err)
	}
	c.logger.Info("gym saved", "id", g.ID, "name", g.Name)
	return g, nil
}

// StartEdit loads the record with the given id into the form.
// Returns ErrUnknownGym, leaving state unchanged, if the id is not in the
// snapshot.
func (c *Controller) StartEdit(id string) error {
	g, ok := c.find(id)
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrUnknownGym)
	}
	c.editingID = g.ID
	c.form = g.Draft()
	c.errMsg = ""
	return nil
}

// Cancel discards the draft and any validation message and returns to Add
// mode. Nothing is persisted.
func (c *Controller) Cancel() {
	c.resetForm()
}

// Delete removes a record after confirmation.
//
// Declining is not an error: deleted is false and state is unchanged.
// Deleting the record currently being edited also resets the form.
func (c *Controller) Delete(ctx context.Context, id string, confirm Confirmer) (deleted bool, err error) {
	ok, err := confirm.Confirm(DeletePrompt)
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		c.logger.Debug("delete declined", "id", id)
		return false, nil
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete gym: %w", err)
	}
	c.logger.Info("gym deleted", "id", id)

	if c.editingID == id {
		c.resetForm()
	}
	if err := c.Load(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Resolve finds a loaded record by reference: an exact id, a 1-based
// position in the displayed list, or a unique id prefix. A number outside
// the list is tried as an id prefix.
func (c *Controller) Resolve(ref string) (gym.Gym, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return gym.Gym{}, fmt.Errorf("empty reference: %w", ErrUnknownGym)
	}
	if g, ok := c.find(ref); ok {
		return g, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(c.gyms) {
		return c.gyms[n-1], nil
	}

	var match []gym.Gym
	for _, g := range c.gyms {
		if strings.HasPrefix(g.ID, ref) {
			match = append(match, g)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return gym.Gym{}, fmt.Errorf("no gym matches %q: %w", ref, ErrUnknownGym)
	default:
		return gym.Gym{}, fmt.Errorf("%q matches %d gyms: %w", ref, len(match), ErrUnknownGym)
	}
}

// View returns the display state for the current snapshot and form.
func (c *Controller) View() View {
	return BuildView(c.gyms, FormState{
		Draft:     c.form,
		EditingID: c.editingID,
		Error:     c.errMsg,
	})
}

func (c *Controller) find(id string) (gym.Gym, bool) {
	for _, g := range c.gyms {
		if g.ID == id {
			return g, true
		}
	}
	return gym.Gym{}, false
}

func (c *Controller) resetForm() {
	c.form = gym.Draft{}
	c.editingID = ""
	c.errMsg = ""
}
