package cart

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/attirehq/rentcart/internal/catalog"
	"github.com/attirehq/rentcart/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func product(id string, price int64) catalog.ProductSnapshot {
	return catalog.ProductSnapshot{ID: id, Name: "Costume " + id, Image: id + ".jpg", Price: price}
}

func discounted(id string, price, discount int64) catalog.ProductSnapshot {
	p := product(id, price)
	p.DiscountPrice = &discount
	return p
}

func newTestStore(t *testing.T) (*Store, storage.SnapshotStore) {
	t.Helper()
	snapshots := storage.NewMemoryStore()
	return New(context.Background(), snapshots, testLogger()), snapshots
}

func Test_AddItem_MergesByProductID(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	// when
	store.AddItem(product("p1", 100), 2)
	store.AddItem(product("p1", 100), 3)
	// then
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int32(5), items[0].Quantity)
	assert.Equal(t, "p1", items[0].Product.ID)
}

func Test_AddItem_DefaultsQuantityToOne(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	// when
	store.AddItem(product("p1", 100), 0)
	store.AddItem(product("p2", 100), -3)
	// then
	require.Len(t, store.Items(), 2)
	assert.Equal(t, int32(2), store.TotalItems())
}

func Test_AddItem_IgnoresMissingProductID(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	// when
	store.AddItem(catalog.ProductSnapshot{Name: "no id"}, 1)
	// then
	assert.Empty(t, store.Items())
}

func Test_RemoveItem(t *testing.T) {
	testCases := []struct {
		name     string
		removeID string
		wantIDs  []string
	}{
		{name: "removes present product", removeID: "p1", wantIDs: []string{"p2", "p3"}},
		{name: "no-op for absent product", removeID: "zz", wantIDs: []string{"p1", "p2", "p3"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			store, _ := newTestStore(t)
			store.AddItem(product("p1", 100), 1)
			store.AddItem(product("p2", 200), 1)
			store.AddItem(product("p3", 300), 1)
			// when
			store.RemoveItem(tc.removeID)
			// then
			items := store.Items()
			gotIDs := make([]string, len(items))
			for i, it := range items {
				gotIDs[i] = it.Product.ID
			}
			assert.Equal(t, tc.wantIDs, gotIDs)
		})
	}
}

func Test_UpdateQuantity(t *testing.T) {
	testCases := []struct {
		name      string
		productID string
		quantity  int32
		wantLen   int
		wantQty   int32
	}{
		{name: "replaces quantity with absolute value", productID: "p1", quantity: 7, wantLen: 1, wantQty: 7},
		{name: "zero removes the line", productID: "p1", quantity: 0, wantLen: 0},
		{name: "negative removes the line", productID: "p1", quantity: -5, wantLen: 0},
		{name: "no-op for unknown id", productID: "zz", quantity: 9, wantLen: 1, wantQty: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			store, _ := newTestStore(t)
			store.AddItem(product("p1", 100), 2)
			// when
			store.UpdateQuantity(tc.productID, tc.quantity)
			// then
			items := store.Items()
			require.Len(t, items, tc.wantLen)
			if tc.wantLen > 0 {
				assert.Equal(t, tc.wantQty, items[0].Quantity)
			}
		})
	}
}

func Test_Clear_EmptiesEverything(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	store.AddItem(discounted("p1", 200, 150), 2)
	store.AddItem(product("p2", 100), 1)
	// when
	store.Clear()
	// then
	assert.Empty(t, store.Items())
	assert.Zero(t, store.Subtotal())
	assert.Zero(t, store.TotalItems())
	assert.Zero(t, store.TotalSavings())
}

func Test_Lookups(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	store.AddItem(product("p1", 100), 2)
	// then
	assert.True(t, store.Contains("p1"))
	assert.False(t, store.Contains("p2"))

	item, found := store.ItemByID("p1")
	require.True(t, found)
	assert.Equal(t, int32(2), item.Quantity)

	_, found = store.ItemByID("p2")
	assert.False(t, found)
}

func Test_Items_ReturnsCopy(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	store.AddItem(product("p1", 100), 1)
	// when
	items := store.Items()
	items[0].Quantity = 99
	// then
	fresh, _ := store.ItemByID("p1")
	assert.Equal(t, int32(1), fresh.Quantity)
}

func Test_MiniCartFlag(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	require.False(t, store.MiniCartOpen())
	// when / then
	store.OpenMiniCart()
	assert.True(t, store.MiniCartOpen())
	store.ToggleMiniCart()
	assert.False(t, store.MiniCartOpen())
	store.ToggleMiniCart()
	assert.True(t, store.MiniCartOpen())
	store.CloseMiniCart()
	assert.False(t, store.MiniCartOpen())
}

func Test_PersistenceRoundTrip(t *testing.T) {
	// given
	snapshots := storage.NewMemoryStore()
	store := New(context.Background(), snapshots, testLogger())
	store.AddItem(discounted("p1", 200, 150), 2)
	store.AddItem(product("p2", 100), 3)
	store.OpenMiniCart()
	// when: a second store rehydrates from the same backend
	reloaded := New(context.Background(), snapshots, testLogger())
	// then
	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, int32(2), items[0].Quantity)
	assert.Equal(t, "p2", items[1].Product.ID)
	assert.Equal(t, int32(3), items[1].Quantity)
	assert.True(t, reloaded.MiniCartOpen())
	assert.Equal(t, store.Subtotal(), reloaded.Subtotal())
}

func Test_Rehydrate_SanitizesInvalidEntries(t *testing.T) {
	// given: a snapshot with one valid entry, one missing its product id,
	// and one with a quantity below the floor
	snapshots := storage.NewMemoryStore()
	state := persistedState{
		Items: []Item{
			{Product: catalog.ProductSnapshot{ID: "p1", Name: "Pirate", Price: 100}, Quantity: 2},
			{Product: catalog.ProductSnapshot{Name: "ghost"}, Quantity: 1},
			{Product: catalog.ProductSnapshot{ID: "p3", Price: 50}, Quantity: 0},
		},
		IsMiniCartOpen: true,
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	require.NoError(t, snapshots.Save(context.Background(), storage.CartNamespace, data))
	// when
	store := New(context.Background(), snapshots, testLogger())
	// then
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.True(t, store.MiniCartOpen())
}

func Test_Rehydrate_CorruptSnapshotStartsEmpty(t *testing.T) {
	// given
	snapshots := storage.NewMemoryStore()
	require.NoError(t, snapshots.Save(context.Background(), storage.CartNamespace, []byte("{not json")))
	// when
	store := New(context.Background(), snapshots, testLogger())
	// then
	assert.Empty(t, store.Items())
}

func Test_Subscribe_NotifiesOncePerMutation(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	var notified int
	unsubscribe := store.Subscribe(func() { notified++ })
	// when
	store.AddItem(product("p1", 100), 1)
	store.UpdateQuantity("p1", 4)
	store.RemoveItem("p1")
	store.Clear()
	// then
	assert.Equal(t, 4, notified)

	// and: no delivery after unsubscribe
	unsubscribe()
	store.AddItem(product("p2", 100), 1)
	assert.Equal(t, 4, notified)
}

func Test_Subscribe_NoNotifyOnNoOpMutations(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	var notified int
	store.Subscribe(func() { notified++ })
	// when: removing and updating absent products changes nothing
	store.RemoveItem("zz")
	store.UpdateQuantity("zz", 3)
	// then
	assert.Zero(t, notified)
}
