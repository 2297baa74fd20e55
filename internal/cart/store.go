// Package cart implements the shopper's working selection of rentable
// products. The collection is keyed by product identity, carries per-item
// quantities, and is persisted wholesale after every mutation so it survives
// restarts. All mutation goes through the Store; callers only ever see copies
// of the underlying items.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/attirehq/rentcart/internal/catalog"
	"github.com/attirehq/rentcart/internal/storage"
)

// Item is a single cart line: a frozen product snapshot plus a quantity.
// Invariant: Quantity >= 1. Driving a quantity to zero or below removes the
// line instead of keeping a zero-quantity entry.
type Item struct {
	Product  catalog.ProductSnapshot `json:"product"`
	Quantity int32                   `json:"quantity"`
}

// persistedState is the snapshot shape written under the cart namespace.
type persistedState struct {
	Items          []Item `json:"items"`
	IsMiniCartOpen bool   `json:"isMiniCartOpen"`
}

// Store holds the cart collection and its mini-cart visibility flag.
// Every operation is total: invalid input is absorbed, persistence failures
// are logged and never surfaced, because the cart is a convenience cache and
// the authoritative validation happens at checkout.
type Store struct {
	mu           sync.RWMutex
	items        []Item
	miniCartOpen bool

	snapshots storage.SnapshotStore
	logger    *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New creates a cart store backed by the given snapshot store and rehydrates
// it from the last persisted snapshot. Entries with a missing or invalid
// product reference, or a quantity below one, are dropped silently.
func New(ctx context.Context, snapshots storage.SnapshotStore, logger *slog.Logger) *Store {
	s := &Store{
		snapshots: snapshots,
		logger:    logger.With("component", "cart"),
		subs:      make(map[int]func()),
	}
	s.rehydrate(ctx)
	return s
}

// rehydrate loads and sanitizes the previously persisted collection.
func (s *Store) rehydrate(ctx context.Context) {
	data, err := s.snapshots.Load(ctx, storage.CartNamespace)
	if err != nil {
		if !errors.Is(err, storage.ErrSnapshotNotFound) {
			s.logger.Warn("failed to load cart snapshot, starting empty", "error", err)
		}
		return
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("failed to decode cart snapshot, starting empty", "error", err)
		return
	}

	items := make([]Item, 0, len(state.Items))
	for _, it := range state.Items {
		if !it.Product.Valid() || it.Quantity < 1 {
			continue
		}
		items = append(items, it)
	}
	if dropped := len(state.Items) - len(items); dropped > 0 {
		s.logger.Debug("dropped stale cart entries during rehydration", "count", dropped)
	}
	s.items = items
	s.miniCartOpen = state.IsMiniCartOpen
}

// AddItem inserts a product into the cart. If the product is already present
// the existing line's quantity is increased by quantity; otherwise a new line
// is appended. A quantity below one counts as one.
func (s *Store) AddItem(product catalog.ProductSnapshot, quantity int32) {
	if !product.Valid() {
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, Item{Product: product, Quantity: quantity})
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// RemoveItem deletes the line for the given product id. Removing an absent
// product is a no-op; the remaining lines keep their order.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
}

// UpdateQuantity replaces the line's quantity with the given absolute value.
// A quantity of zero or below removes the line, identical to RemoveItem.
// Unknown product ids are a no-op.
func (s *Store) UpdateQuantity(productID string, quantity int32) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	updated := false
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			updated = true
			break
		}
	}
	if updated {
		s.persistLocked()
	}
	s.mu.Unlock()

	if updated {
		s.notify()
	}
}

// Clear empties the whole collection unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Items returns a copy of the current collection in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Contains reports whether a line exists for the given product id.
func (s *Store) Contains(productID string) bool {
	_, ok := s.ItemByID(productID)
	return ok
}

// ItemByID returns the line for the given product id, if present.
func (s *Store) ItemByID(productID string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return Item{}, false
}

// OpenMiniCart marks the mini-cart panel as open.
func (s *Store) OpenMiniCart() { s.setMiniCart(true) }

// CloseMiniCart marks the mini-cart panel as closed.
func (s *Store) CloseMiniCart() { s.setMiniCart(false) }

// ToggleMiniCart flips the mini-cart panel state.
func (s *Store) ToggleMiniCart() {
	s.mu.Lock()
	s.miniCartOpen = !s.miniCartOpen
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// MiniCartOpen reports the mini-cart panel state.
func (s *Store) MiniCartOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.miniCartOpen
}

func (s *Store) setMiniCart(open bool) {
	s.mu.Lock()
	changed := s.miniCartOpen != open
	s.miniCartOpen = open
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Subscribe registers a listener invoked after every mutation. The returned
// function removes the listener.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// persistLocked serializes the whole collection and writes it under the cart
// namespace. Callers must hold the write lock.
func (s *Store) persistLocked() {
	state := persistedState{
		Items:          s.items,
		IsMiniCartOpen: s.miniCartOpen,
	}
	if state.Items == nil {
		state.Items = []Item{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error("failed to encode cart snapshot", "error", err)
		return
	}
	if err := s.snapshots.Save(context.Background(), storage.CartNamespace, data); err != nil {
		s.logger.Warn("failed to persist cart snapshot", "error", err)
	}
}

// notify invokes the registered listeners outside the collection lock.
func (s *Store) notify() {
	s.subMu.Lock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
