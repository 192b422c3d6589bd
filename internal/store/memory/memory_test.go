package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wtmobile/internal/gym"
	"github.com/roach88/wtmobile/internal/store"
)

var epoch = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func newGym(t *testing.T, id, name string, offset time.Duration) gym.Gym {
	t.Helper()
	g, err := gym.New(id, gym.Draft{Name: name, City: "Madrid"}, epoch.Add(offset))
	require.NoError(t, err)
	return g
}

func TestStore_Lifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, newGym(t, "a", "A", 0)))
	require.NoError(t, s.Insert(ctx, newGym(t, "b", "B", time.Minute)))
	assert.ErrorIs(t, s.Insert(ctx, newGym(t, "a", "A2", 2*time.Minute)), store.ErrAlreadyExists)

	edited := newGym(t, "a", "A edited", 0)
	require.NoError(t, s.Upsert(ctx, edited))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "A edited", got[1].Name)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_ListAllEmpty(t *testing.T) {
	got, err := New().ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_RejectsInvalid(t *testing.T) {
	s := New()
	err := s.Upsert(context.Background(), gym.Gym{ID: "a", Name: "", CreatedAt: epoch})
	assert.ErrorIs(t, err, gym.ErrNameRequired)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, newGym(t, "a", "A", 0)))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	*got.City = "Barcelona"

	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Madrid", again.CityOr(""))
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, New().Insert(ctx, newGym(t, "a", "A", 0)), context.Canceled)
}
