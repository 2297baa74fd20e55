// Package events defines the change events emitted when the cart or favorite
// collections mutate, and the relay that bridges store subscriptions onto the
// message bus.
package events

import (
	"encoding/json"
	"time"
)

const (
	CartUpdatedSubject      = "rentcart.cart.updated"
	FavoritesUpdatedSubject = "rentcart.favorites.updated"
)

// CartUpdatedEvent carries the cart aggregates after a mutation.
type CartUpdatedEvent struct {
	Subtotal     int64     `json:"subtotal"`
	TotalItems   int32     `json:"total_items"`
	TotalSavings int64     `json:"total_savings"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (e CartUpdatedEvent) Subject() string {
	return CartUpdatedSubject
}

func (e CartUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// FavoritesUpdatedEvent carries the favorite-set size after a mutation.
type FavoritesUpdatedEvent struct {
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e FavoritesUpdatedEvent) Subject() string {
	return FavoritesUpdatedSubject
}

func (e FavoritesUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
