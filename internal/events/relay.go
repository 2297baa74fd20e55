package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/attirehq/rentcart/internal/cart"
	"github.com/attirehq/rentcart/internal/favorites"
	"github.com/attirehq/rentcart/pkg/messaging"
)

// Relay subscribes to the cart and favorite stores and publishes a change
// event for every mutation. Publish failures are logged and never affect the
// stores themselves.
type Relay struct {
	publisher messaging.Publisher
	cart      *cart.Store
	favorites *favorites.Store
	logger    *slog.Logger
	unsubs    []func()
}

// NewRelay creates a relay wired to the given stores and publisher.
func NewRelay(publisher messaging.Publisher, cartStore *cart.Store, favStore *favorites.Store, logger *slog.Logger) *Relay {
	return &Relay{
		publisher: publisher,
		cart:      cartStore,
		favorites: favStore,
		logger:    logger.With("component", "events"),
	}
}

// Start registers the store subscriptions.
func (r *Relay) Start() {
	r.unsubs = append(r.unsubs,
		r.cart.Subscribe(r.publishCart),
		r.favorites.Subscribe(r.publishFavorites),
	)
}

// Stop removes the store subscriptions.
func (r *Relay) Stop() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}

func (r *Relay) publishCart() {
	event := CartUpdatedEvent{
		Subtotal:     r.cart.Subtotal(),
		TotalItems:   r.cart.TotalItems(),
		TotalSavings: r.cart.TotalSavings(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := r.publisher.Publish(context.Background(), event); err != nil {
		r.logger.Error("failed to publish CartUpdatedEvent", "error", err)
	}
}

func (r *Relay) publishFavorites() {
	event := FavoritesUpdatedEvent{
		Count:     r.favorites.Count(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.publisher.Publish(context.Background(), event); err != nil {
		r.logger.Error("failed to publish FavoritesUpdatedEvent", "error", err)
	}
}
