package cart

import (
	"testing"

	"github.com/attirehq/rentcart/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func Test_ItemTotal(t *testing.T) {
	testCases := []struct {
		name     string
		item     Item
		expected int64
	}{
		{
			name:     "list price times quantity",
			item:     Item{Product: product("p1", 100), Quantity: 2},
			expected: 200,
		},
		{
			name:     "discount price wins when present",
			item:     Item{Product: discounted("p1", 200, 150), Quantity: 3},
			expected: 450,
		},
		{
			name:     "missing product reference prices at zero",
			item:     Item{Product: catalog.ProductSnapshot{Price: 100}, Quantity: 2},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.item.Total())
		})
	}
}

func Test_ItemSavings(t *testing.T) {
	testCases := []struct {
		name     string
		item     Item
		expected int64
	}{
		{
			name:     "discount below list price",
			item:     Item{Product: discounted("p1", 200, 150), Quantity: 1},
			expected: 50,
		},
		{
			name:     "scales with quantity",
			item:     Item{Product: discounted("p1", 200, 150), Quantity: 4},
			expected: 200,
		},
		{
			name:     "no discount means no savings",
			item:     Item{Product: product("p1", 100), Quantity: 2},
			expected: 0,
		},
		{
			name:     "discount equal to list price yields zero",
			item:     Item{Product: discounted("p1", 100, 100), Quantity: 2},
			expected: 0,
		},
		{
			name:     "discount above list price never goes negative",
			item:     Item{Product: discounted("p1", 100, 120), Quantity: 2},
			expected: 0,
		},
		{
			name:     "missing product reference saves nothing",
			item:     Item{Product: catalog.ProductSnapshot{Price: 200, DiscountPrice: new(int64)}, Quantity: 1},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.item.Savings())
		})
	}
}

func Test_Aggregates(t *testing.T) {
	// given: two lines, one discounted
	store, _ := newTestStore(t)
	store.AddItem(product("p1", 100), 2)
	store.AddItem(discounted("p2", 200, 150), 1)
	// then
	assert.Equal(t, int64(350), store.Subtotal())
	assert.Equal(t, int32(3), store.TotalItems())
	assert.Equal(t, int64(50), store.TotalSavings())
}

func Test_Aggregates_EmptyCart(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Zero(t, store.Subtotal())
	assert.Zero(t, store.TotalItems())
	assert.Zero(t, store.TotalSavings())
}

func Test_Aggregates_RecomputedAfterMutation(t *testing.T) {
	// given
	store, _ := newTestStore(t)
	store.AddItem(product("p1", 100), 2)
	assert.Equal(t, int64(200), store.Subtotal())
	// when
	store.UpdateQuantity("p1", 5)
	// then
	assert.Equal(t, int64(500), store.Subtotal())
	assert.Equal(t, int32(5), store.TotalItems())
}
