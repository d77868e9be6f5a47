package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/selection"
	"legalconnect-engine/internal/shortlist"
)

func roster() []domain.Lawyer {
	return []domain.Lawyer{
		{ID: 1, Name: "Sarah Chen", Location: "Parramatta"},
		{ID: 2, Name: "James Okafor", Location: "Blacktown"},
		{ID: 3, Name: "Priya Patel", Location: "Liverpool"},
	}
}

func newRegistry(t *testing.T, size int) (*Registry, *shortlist.Shelf) {
	t.Helper()
	shelf := shortlist.NewShelf(shortlist.NewMemoryKV())
	r, err := NewRegistry(shelf, Options{CacheSize: size, Selection: selection.Options{Settle: 0}})
	require.NoError(t, err)
	return r, shelf
}

func TestRegistry_SwipePersists(t *testing.T) {
	ctx := context.Background()
	r, shelf := newRegistry(t, 4)

	st, err := r.Start(ctx, "u1", roster())
	require.NoError(t, err)
	require.NotNil(t, st.Current)
	assert.Equal(t, int64(1), st.Current.ID)

	st, err = r.Swipe(ctx, st.ID, "u1", selection.Right)
	require.NoError(t, err)
	require.NotNil(t, st.Outcome)
	assert.Equal(t, selection.DecisionAccept, st.Outcome.Decision)

	st, err = r.Key(ctx, st.ID, "u1", "ArrowLeft")
	require.NoError(t, err)
	st, err = r.Drag(ctx, st.ID, "u1", 80)
	require.NoError(t, err)

	assert.True(t, st.State.Exhausted)
	assert.Nil(t, st.Current)
	assert.Equal(t, shortlist.Counts{Shortlisted: 2, Viewed: 3}, st.Counts)

	entries, err := shelf.Book("u1").Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Sarah Chen", entries[0].Name)
	assert.Equal(t, "Priya Patel", entries[1].Name)
}

func TestRegistry_NoOpReturnsStateWithoutOutcome(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t, 4)
	st, err := r.Start(ctx, "u1", roster())
	require.NoError(t, err)

	st, err = r.Drag(ctx, st.ID, "u1", 20)
	require.NoError(t, err)
	assert.Nil(t, st.Outcome)
	assert.Equal(t, 0, st.State.Position)
	assert.Zero(t, st.Counts.Viewed)
}

func TestRegistry_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t, 4)
	st, err := r.Start(ctx, "u1", roster())
	require.NoError(t, err)

	_, err = r.Swipe(ctx, st.ID, "u2", selection.Right)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.State(ctx, "missing", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_ResetKeepsShortlist(t *testing.T) {
	ctx := context.Background()
	r, shelf := newRegistry(t, 4)
	st, _ := r.Start(ctx, "u1", roster())
	_, _ = r.Swipe(ctx, st.ID, "u1", selection.Right)

	st, err := r.Reset(ctx, st.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.State.Position)
	assert.Equal(t, []int64{1}, st.State.Accepted)

	ok, err := shelf.Book("u1").Contains(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistry_ResetAllClearsEverything(t *testing.T) {
	ctx := context.Background()
	r, shelf := newRegistry(t, 4)
	st, _ := r.Start(ctx, "u1", roster())
	_, _ = r.Swipe(ctx, st.ID, "u1", selection.Right)
	_, _ = r.Swipe(ctx, st.ID, "u1", selection.Left)

	st, err := r.ResetAll(ctx, st.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.State.Position)
	assert.Empty(t, st.State.Accepted)
	assert.Empty(t, st.State.Seen)
	assert.Equal(t, shortlist.Counts{}, st.Counts)

	viewed, err := shelf.Book("u1").Viewed(ctx)
	require.NoError(t, err)
	assert.Empty(t, viewed)
}

func TestRegistry_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t, 2)
	first, _ := r.Start(ctx, "u1", roster())
	_, _ = r.Start(ctx, "u1", roster())
	_, _ = r.Start(ctx, "u1", roster())

	assert.Equal(t, 2, r.Len())
	_, err := r.Get(first.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_Close(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t, 2)
	st, _ := r.Start(ctx, "u1", roster())
	assert.False(t, r.Close(st.ID, "u2"))
	assert.True(t, r.Close(st.ID, "u1"))
	assert.Zero(t, r.Len())
}

type failingKV struct {
	*shortlist.MemoryKV
	fail bool
}

func (kv *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if kv.fail {
		return errors.New("kv down")
	}
	return kv.MemoryKV.Set(ctx, key, value)
}

func TestRegistry_PersistFailureKeepsRecordCurrent(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{MemoryKV: shortlist.NewMemoryKV()}
	r, err := NewRegistry(shortlist.NewShelf(kv), Options{Selection: selection.Options{Settle: 0}})
	require.NoError(t, err)
	st, err := r.Start(ctx, "u1", roster())
	require.NoError(t, err)

	kv.fail = true
	_, err = r.Swipe(ctx, st.ID, "u1", selection.Right)
	require.Error(t, err)
	_, err = r.Drag(ctx, st.ID, "u1", -80)
	require.Error(t, err)

	st, err = r.State(ctx, st.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.State.Position)
	assert.Empty(t, st.State.Accepted)
	assert.Empty(t, st.State.Seen)
	assert.False(t, st.State.Dragging)

	kv.fail = false
	st, err = r.Swipe(ctx, st.ID, "u1", selection.Right)
	require.NoError(t, err)
	require.NotNil(t, st.Outcome)
	assert.Equal(t, int64(1), st.Outcome.ID)
	assert.Equal(t, shortlist.Counts{Shortlisted: 1, Viewed: 1}, st.Counts)
}
