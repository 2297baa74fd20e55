// Package app contains the application setup for the rentcart service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/attirehq/rentcart/internal/cart"
	"github.com/attirehq/rentcart/internal/config"
	"github.com/attirehq/rentcart/internal/events"
	"github.com/attirehq/rentcart/internal/favorites"
	"github.com/attirehq/rentcart/internal/storage"
	"github.com/attirehq/rentcart/internal/transport/rest"
	"github.com/attirehq/rentcart/pkg/bootstrap"
	pkgconfig "github.com/attirehq/rentcart/pkg/config"
	"github.com/attirehq/rentcart/pkg/messaging"
	"github.com/attirehq/rentcart/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Cart      *cart.Store
	Favorites *favorites.Store
	Logger    *slog.Logger
}

// SetupSnapshotStore selects and initializes the snapshot backend from
// configuration. The returned cleanup function releases backend resources
// and is safe to call on every path.
func SetupSnapshotStore(ctx context.Context, cfg *config.Config) (storage.SnapshotStore, func(), error) {
	switch cfg.Storage.Backend {
	case pkgconfig.StorageBackendRedis:
		client, err := bootstrap.NewRedisClient(ctx, cfg.Storage.Redis.Addr, cfg.Storage.Redis.DB, cfg.Storage.Timeout)
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to set up redis snapshot store: %w", err)
		}
		return storage.NewRedisStore(client, cfg.Storage.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	case pkgconfig.StorageBackendFile:
		store, err := storage.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to set up file snapshot store: %w", err)
		}
		return store, func() {}, nil
	default:
		return storage.NewMemoryStore(), func() {}, nil
	}
}

// SetupDependencies rehydrates both stores from the snapshot backend.
func SetupDependencies(ctx context.Context, snapshots storage.SnapshotStore, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Cart:      cart.New(ctx, snapshots, logger),
		Favorites: favorites.New(ctx, snapshots, logger),
		Logger:    logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the rentcart service.
// Used by tests to exercise the full handler stack without a real listener.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the rentcart service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.Cart, deps.Favorites, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the rentcart service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupEventRelay bridges store mutations onto the message bus.
func SetupEventRelay(deps *Dependencies, publisher messaging.Publisher) *events.Relay {
	relay := events.NewRelay(publisher, deps.Cart, deps.Favorites, deps.Logger)
	relay.Start()
	return relay
}
