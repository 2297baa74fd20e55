package favorites

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/attirehq/rentcart/internal/catalog"
	"github.com/attirehq/rentcart/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func product(id string) catalog.ProductSnapshot {
	return catalog.ProductSnapshot{ID: id, Name: "Costume " + id, Image: id + ".jpg", Price: 100}
}

func newTestStore(t *testing.T) (*Store, storage.SnapshotStore) {
	t.Helper()
	snapshots := storage.NewMemoryStore()
	return New(context.Background(), snapshots, testLogger()), snapshots
}

func Test_Add_IsIdempotent(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	// when
	store.Add(product("p1"))
	store.Add(product("p1"))
	// then
	assert.Equal(t, 1, store.Count())
}

func Test_Add_FirstWriteWins(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	first := product("p1")
	store.Add(first)
	entry, _ := store.EntryByID("p1")
	originalAddedAt := entry.AddedAt
	// when: a repeated add with a different snapshot
	changed := product("p1")
	changed.Name = "Renamed"
	store.Add(changed)
	// then: neither the snapshot nor the timestamp changed
	entry, found := store.EntryByID("p1")
	require.True(t, found)
	assert.Equal(t, first.Name, entry.Product.Name)
	assert.Equal(t, originalAddedAt, entry.AddedAt)
}

func Test_Add_IgnoresMissingProductID(t *testing.T) {
	store, _ := newTestStore(t)
	store.Add(catalog.ProductSnapshot{Name: "no id"})
	assert.Zero(t, store.Count())
}

func Test_Remove(t *testing.T) {
	testCases := []struct {
		name      string
		removeID  string
		wantCount int
	}{
		{name: "removes present product", removeID: "p1", wantCount: 1},
		{name: "no-op for absent product", removeID: "zz", wantCount: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			store, _ := newTestStore(t)
			store.Add(product("p1"))
			store.Add(product("p2"))
			// when
			store.Remove(tc.removeID)
			// then
			assert.Equal(t, tc.wantCount, store.Count())
		})
	}
}

func Test_Clear(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	store.Add(product("p1"))
	store.Add(product("p2"))
	// when
	store.Clear()
	// then
	assert.Zero(t, store.Count())
	assert.Empty(t, store.Entries())
}

func Test_Lookups(t *testing.T) {
	store, _ := newTestStore(t)
	store.Add(product("p1"))

	assert.True(t, store.IsFavorite("p1"))
	assert.False(t, store.IsFavorite("p2"))

	entry, found := store.EntryByID("p1")
	require.True(t, found)
	assert.Equal(t, "p1", entry.Product.ID)
	assert.False(t, entry.AddedAt.IsZero())
}

func Test_AddedSince(t *testing.T) {
	// given: entries added at controlled times
	store, _ := newTestStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return now.Add(-10 * 24 * time.Hour) }
	store.Add(product("old"))
	store.now = func() time.Time { return now.Add(-2 * 24 * time.Hour) }
	store.Add(product("recent"))
	store.now = func() time.Time { return now }
	// when
	recent := store.AddedSince(7 * 24 * time.Hour)
	// then
	require.Len(t, recent, 1)
	assert.Equal(t, "recent", recent[0].Product.ID)
}

func Test_PersistenceRoundTrip(t *testing.T) {
	// given
	snapshots := storage.NewMemoryStore()
	store := New(context.Background(), snapshots, testLogger())
	store.Add(product("p1"))
	store.Add(product("p2"))
	// when
	reloaded := New(context.Background(), snapshots, testLogger())
	// then
	require.Equal(t, 2, reloaded.Count())
	entry, found := reloaded.EntryByID("p1")
	require.True(t, found)
	assert.Equal(t, "Costume p1", entry.Product.Name)
}

func Test_Rehydrate_SanitizesInvalidEntries(t *testing.T) {
	// given: one valid entry and one without a product id
	snapshots := storage.NewMemoryStore()
	state := persistedState{
		Items: []Entry{
			{Product: catalog.ProductSnapshot{ID: "p1", Name: "Witch"}, AddedAt: time.Now().UTC()},
			{Product: catalog.ProductSnapshot{Name: "ghost"}, AddedAt: time.Now().UTC()},
		},
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	require.NoError(t, snapshots.Save(context.Background(), storage.FavoriteNamespace, data))
	// when
	store := New(context.Background(), snapshots, testLogger())
	// then
	require.Equal(t, 1, store.Count())
	assert.True(t, store.IsFavorite("p1"))
}

func Test_Subscribe_NotifiesOncePerMutation(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	var notified int
	unsubscribe := store.Subscribe(func() { notified++ })
	// when
	store.Add(product("p1"))
	store.Add(product("p1")) // idempotent repeat, no mutation
	store.Remove("p1")
	store.Clear()
	// then
	assert.Equal(t, 3, notified)

	unsubscribe()
	store.Add(product("p2"))
	assert.Equal(t, 3, notified)
}
