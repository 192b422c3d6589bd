package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wtmobile/internal/gym"
	"github.com/roach88/wtmobile/internal/store/memory"
	"github.com/roach88/wtmobile/internal/testutil"
)

type fixture struct {
	ctrl  *Controller
	store *memory.Store
	clock *testutil.StepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	clock := testutil.NewStepClock(testutil.DefaultEpoch, 0)
	ctrl := New(st,
		WithClock(clock),
		WithIDGenerator(testutil.NewCountingIDs("gym")),
	)
	require.NoError(t, ctrl.Load(context.Background()))
	return &fixture{ctrl: ctrl, store: st, clock: clock}
}

func (f *fixture) add(t *testing.T, d gym.Draft) gym.Gym {
	t.Helper()
	f.ctrl.SetDraft(d)
	g, err := f.ctrl.Submit(context.Background())
	require.NoError(t, err)
	return g
}

func names(gyms []gym.Gym) []string {
	out := make([]string, 0, len(gyms))
	for _, g := range gyms {
		out = append(out, g.Name)
	}
	return out
}

var declineAll = ConfirmFunc(func(string) (bool, error) { return false, nil })

func TestNew_StartsInAddMode(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, ModeAdd, f.ctrl.Mode())
	assert.Equal(t, gym.Draft{}, f.ctrl.Form())
	assert.Empty(t, f.ctrl.EditingID())
	assert.Empty(t, f.ctrl.Gyms())
}

func TestSubmit_AddInsertsAndClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := f.clock.Peek()

	f.ctrl.SetDraft(gym.Draft{Name: "Anytime Madrid", City: "Madrid"})
	g, err := f.ctrl.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, "gym-0001", g.ID)
	assert.Equal(t, at, g.CreatedAt)
	assert.Equal(t, ModeAdd, f.ctrl.Mode())
	assert.Equal(t, gym.Draft{}, f.ctrl.Form())
	assert.Equal(t, []string{"Anytime Madrid"}, names(f.ctrl.Gyms()))

	n, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubmit_EachInsertGrowsListByOneWithUniqueID(t *testing.T) {
	f := newFixture(t)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		before := len(f.ctrl.Gyms())
		g := f.add(t, gym.Draft{Name: "Gym"})
		assert.Len(t, f.ctrl.Gyms(), before+1)
		assert.False(t, seen[g.ID])
		seen[g.ID] = true
	}
}

func TestSubmit_TrimsName(t *testing.T) {
	f := newFixture(t)

	g := f.add(t, gym.Draft{Name: "  Gold's Gym  "})
	assert.Equal(t, "Gold's Gym", g.Name)

	stored, err := f.store.Get(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gold's Gym", stored.Name)
}

func TestSubmit_BlankNameRejected(t *testing.T) {
	for _, name := range []string{"", "   "} {
		t.Run("name="+name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			draft := gym.Draft{Name: name, City: "Madrid", Notes: "keep me"}

			f.ctrl.SetDraft(draft)
			_, err := f.ctrl.Submit(ctx)
			assert.ErrorIs(t, err, gym.ErrNameRequired)

			assert.Equal(t, NameRequiredMessage, f.ctrl.ValidationMessage())
			assert.Equal(t, draft, f.ctrl.Form())
			n, err := f.store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)
		})
	}
}

func TestSubmit_ClearsPreviousValidationMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.Submit(ctx)
	require.ErrorIs(t, err, gym.ErrNameRequired)

	require.NoError(t, f.ctrl.SetField(FieldName, "PowerHouse"))
	_, err = f.ctrl.Submit(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.ctrl.ValidationMessage())
}

func TestSubmit_EditPreservesIDAndCreatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	anytime := f.add(t, gym.Draft{Name: "Anytime Madrid", City: "Madrid"})
	f.add(t, gym.Draft{Name: "PowerHouse"})

	require.NoError(t, f.ctrl.StartEdit(anytime.ID))
	assert.Equal(t, ModeEdit, f.ctrl.Mode())
	assert.Equal(t, gym.Draft{Name: "Anytime Madrid", City: "Madrid"}, f.ctrl.Form())

	require.NoError(t, f.ctrl.SetField(FieldCity, "Madrid Centro"))
	saved, err := f.ctrl.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, anytime.ID, saved.ID)
	assert.Equal(t, anytime.CreatedAt, saved.CreatedAt)
	assert.Equal(t, ModeAdd, f.ctrl.Mode())
	assert.Equal(t, gym.Draft{}, f.ctrl.Form())

	gyms := f.ctrl.Gyms()
	require.Len(t, gyms, 2)
	assert.Equal(t, []string{"PowerHouse", "Anytime Madrid"}, names(gyms))
	assert.Equal(t, "Madrid Centro", gyms[1].CityOr(""))
}

func TestSubmit_EditOfVanishedRecordStampsNow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.add(t, gym.Draft{Name: "Ghost"})
	require.NoError(t, f.ctrl.StartEdit(g.ID))

	// Removed behind the controller's back; snapshot is stale.
	require.NoError(t, f.store.Delete(ctx, g.ID))
	f.ctrl.gyms = nil

	at := f.clock.Peek()
	saved, err := f.ctrl.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, g.ID, saved.ID)
	assert.Equal(t, at, saved.CreatedAt)
}

func TestSubmit_StorageFailureKeepsForm(t *testing.T) {
	boom := errors.New("disk full")
	st := &failingStore{Store: memory.New(), err: boom}
	ctrl := New(st, WithClock(testutil.NewStepClock(testutil.DefaultEpoch, 0)))

	draft := gym.Draft{Name: "PowerHouse"}
	ctrl.SetDraft(draft)
	_, err := ctrl.Submit(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, draft, ctrl.Form())
	assert.Empty(t, ctrl.ValidationMessage())
}

func TestStartEdit_UnknownID(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetDraft(gym.Draft{Name: "typed"})

	err := f.ctrl.StartEdit("nope")
	assert.ErrorIs(t, err, ErrUnknownGym)
	assert.Equal(t, ModeAdd, f.ctrl.Mode())
	assert.Equal(t, gym.Draft{Name: "typed"}, f.ctrl.Form())
}

func TestStartEdit_ClearsValidationMessage(t *testing.T) {
	f := newFixture(t)
	g := f.add(t, gym.Draft{Name: "Anytime Madrid"})

	_, err := f.ctrl.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, NameRequiredMessage, f.ctrl.ValidationMessage())

	require.NoError(t, f.ctrl.StartEdit(g.ID))
	assert.Empty(t, f.ctrl.ValidationMessage())
	assert.Equal(t, "Anytime Madrid", f.ctrl.Form().Name)
}

func TestCancel_ResetsWithoutPersisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.add(t, gym.Draft{Name: "Anytime Madrid"})
	require.NoError(t, f.ctrl.StartEdit(g.ID))
	require.NoError(t, f.ctrl.SetField(FieldName, "Renamed"))
	require.NoError(t, f.ctrl.SetField(FieldName, "  "))
	_, err := f.ctrl.Submit(ctx)
	require.Error(t, err)

	f.ctrl.Cancel()

	assert.Equal(t, ModeAdd, f.ctrl.Mode())
	assert.Equal(t, gym.Draft{}, f.ctrl.Form())
	assert.Empty(t, f.ctrl.ValidationMessage())

	stored, err := f.store.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anytime Madrid", stored.Name)
}

func TestDelete_Confirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, gym.Draft{Name: "A"})
	f.add(t, gym.Draft{Name: "B"})

	var asked string
	deleted, err := f.ctrl.Delete(ctx, a.ID, ConfirmFunc(func(p string) (bool, error) {
		asked = p
		return true, nil
	}))
	require.NoError(t, err)

	assert.True(t, deleted)
	assert.Equal(t, DeletePrompt, asked)
	assert.Equal(t, []string{"B"}, names(f.ctrl.Gyms()))
}

func TestDelete_Declined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, gym.Draft{Name: "A"})
	require.NoError(t, f.ctrl.StartEdit(a.ID))

	deleted, err := f.ctrl.Delete(ctx, a.ID, declineAll)
	require.NoError(t, err)

	assert.False(t, deleted)
	assert.Equal(t, ModeEdit, f.ctrl.Mode())
	assert.Len(t, f.ctrl.Gyms(), 1)
}

func TestDelete_MissingIDIsNoop(t *testing.T) {
	f := newFixture(t)
	f.add(t, gym.Draft{Name: "A"})

	deleted, err := f.ctrl.Delete(context.Background(), "missing", AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, f.ctrl.Gyms(), 1)
}

func TestDelete_RecordBeingEditedResetsForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, gym.Draft{Name: "A", City: "Madrid"})
	require.NoError(t, f.ctrl.StartEdit(a.ID))

	_, err := f.ctrl.Delete(ctx, a.ID, AlwaysConfirm)
	require.NoError(t, err)

	assert.Equal(t, ModeAdd, f.ctrl.Mode())
	assert.Equal(t, gym.Draft{}, f.ctrl.Form())
	assert.Empty(t, f.ctrl.Gyms())
}

func TestDelete_OtherRecordKeepsEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, gym.Draft{Name: "A"})
	b := f.add(t, gym.Draft{Name: "B"})
	require.NoError(t, f.ctrl.StartEdit(a.ID))

	_, err := f.ctrl.Delete(ctx, b.ID, AlwaysConfirm)
	require.NoError(t, err)

	assert.Equal(t, ModeEdit, f.ctrl.Mode())
	assert.Equal(t, a.ID, f.ctrl.EditingID())
}

func TestDelete_ConfirmerError(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, gym.Draft{Name: "A"})

	boom := errors.New("stdin closed")
	_, err := f.ctrl.Delete(context.Background(), a.ID, ConfirmFunc(func(string) (bool, error) {
		return false, boom
	}))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.ctrl.Gyms(), 1)
}

func TestSetField_Unknown(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.ctrl.SetField("email", "x"))
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	f.add(t, gym.Draft{Name: "A"}) // gym-0001
	f.add(t, gym.Draft{Name: "B"}) // gym-0002

	g, err := f.ctrl.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, "B", g.Name)

	g, err = f.ctrl.Resolve("gym-0001")
	require.NoError(t, err)
	assert.Equal(t, "A", g.Name)

	_, err = f.ctrl.Resolve("gym-000")
	assert.ErrorIs(t, err, ErrUnknownGym)

	_, err = f.ctrl.Resolve("3")
	assert.ErrorIs(t, err, ErrUnknownGym)

	_, err = f.ctrl.Resolve("zzz")
	assert.ErrorIs(t, err, ErrUnknownGym)

	_, err = f.ctrl.Resolve(" ")
	assert.ErrorIs(t, err, ErrUnknownGym)
}

func TestResolve_NumericIDPrefix(t *testing.T) {
	ctrl := New(memory.New(),
		WithClock(testutil.NewStepClock(testutil.DefaultEpoch, 0)),
		WithIDGenerator(testutil.NewCountingIDs("01906123")),
	)
	require.NoError(t, ctrl.Load(context.Background()))
	ctrl.SetDraft(gym.Draft{Name: "PowerHouse"})
	saved, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "01906123-0001", saved.ID)

	g, err := ctrl.Resolve("01906123")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, g.ID)

	g, err = ctrl.Resolve("1")
	require.NoError(t, err, "in-range numbers stay positions")
	assert.Equal(t, saved.ID, g.ID)

	_, err = ctrl.Resolve("42")
	assert.ErrorIs(t, err, ErrUnknownGym)
}

func TestLoad_SeesExternalWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := gym.New("external", gym.Draft{Name: "External"}, testutil.DefaultEpoch)
	require.NoError(t, err)
	require.NoError(t, f.store.Insert(ctx, g))

	assert.Empty(t, f.ctrl.Gyms())
	require.NoError(t, f.ctrl.Load(ctx))
	assert.Equal(t, []string{"External"}, names(f.ctrl.Gyms()))
}

type failingStore struct {
	*memory.Store
	err error
}

func (s *failingStore) Insert(context.Context, gym.Gym) error { return s.err }
func (s *failingStore) Upsert(context.Context, gym.Gym) error { return s.err }
