// Package favorites implements the shopper's saved-product set. Membership
// is keyed by product identity with no quantity; each entry remembers when it
// was added. Like the cart, the collection is persisted wholesale after every
// mutation and sanitized on load.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/attirehq/rentcart/internal/catalog"
	"github.com/attirehq/rentcart/internal/storage"
)

// Entry is a favorited product: a frozen snapshot plus the insertion time.
// AddedAt is set once and never mutated afterward; it only serves display
// and "added within N days" filtering.
type Entry struct {
	Product catalog.ProductSnapshot `json:"product"`
	AddedAt time.Time               `json:"addedAt"`
}

// persistedState is the snapshot shape written under the favorite namespace.
type persistedState struct {
	Items []Entry `json:"items"`
}

// Store holds the favorite set. All operations are total; adding a product
// that is already a member is a no-op and keeps the original snapshot and
// timestamp (first write wins).
type Store struct {
	mu    sync.RWMutex
	items []Entry

	snapshots storage.SnapshotStore
	logger    *slog.Logger
	now       func() time.Time

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New creates a favorite store backed by the given snapshot store and
// rehydrates it from the last persisted snapshot, dropping entries with a
// missing or invalid product reference.
func New(ctx context.Context, snapshots storage.SnapshotStore, logger *slog.Logger) *Store {
	s := &Store{
		snapshots: snapshots,
		logger:    logger.With("component", "favorites"),
		now:       time.Now,
		subs:      make(map[int]func()),
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	data, err := s.snapshots.Load(ctx, storage.FavoriteNamespace)
	if err != nil {
		if !errors.Is(err, storage.ErrSnapshotNotFound) {
			s.logger.Warn("failed to load favorites snapshot, starting empty", "error", err)
		}
		return
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("failed to decode favorites snapshot, starting empty", "error", err)
		return
	}

	items := make([]Entry, 0, len(state.Items))
	for _, e := range state.Items {
		if !e.Product.Valid() {
			continue
		}
		items = append(items, e)
	}
	if dropped := len(state.Items) - len(items); dropped > 0 {
		s.logger.Debug("dropped stale favorite entries during rehydration", "count", dropped)
	}
	s.items = items
}

// Add inserts a product into the set. Adding a product that is already a
// member changes nothing, not even the denormalized snapshot.
func (s *Store) Add(product catalog.ProductSnapshot) {
	if !product.Valid() {
		return
	}

	s.mu.Lock()
	for _, e := range s.items {
		if e.Product.ID == product.ID {
			s.mu.Unlock()
			return
		}
	}
	s.items = append(s.items, Entry{Product: product, AddedAt: s.now().UTC()})
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Remove deletes the entry for the given product id, or no-ops if absent.
func (s *Store) Remove(productID string) {
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

// Clear empties the whole set unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Entries returns a copy of the current set in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Entry, len(s.items))
	copy(items, s.items)
	return items
}

// AddedSince returns the entries added within the given duration of now.
func (s *Store) AddedSince(d time.Duration) []Entry {
	cutoff := s.now().UTC().Add(-d)

	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := make([]Entry, 0, len(s.items))
	for _, e := range s.items {
		if !e.AddedAt.Before(cutoff) {
			recent = append(recent, e)
		}
	}
	return recent
}

// IsFavorite reports whether the given product id is a member.
func (s *Store) IsFavorite(productID string) bool {
	_, ok := s.EntryByID(productID)
	return ok
}

// EntryByID returns the entry for the given product id, if present.
func (s *Store) EntryByID(productID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.items {
		if e.Product.ID == productID {
			return e, true
		}
	}
	return Entry{}, false
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
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

func (s *Store) persistLocked() {
	state := persistedState{Items: s.items}
	if state.Items == nil {
		state.Items = []Entry{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error("failed to encode favorites snapshot", "error", err)
		return
	}
	if err := s.snapshots.Save(context.Background(), storage.FavoriteNamespace, data); err != nil {
		s.logger.Warn("failed to persist favorites snapshot", "error", err)
	}
}

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
