// Package storage provides the durable snapshot store backing the cart and
// favorite collections. Snapshots are whole-collection JSON blobs written
// under a fixed namespace key on every mutation; there is no delta writing
// and no versioning beyond overwrite-wholesale.
package storage

import (
	"context"
	"errors"
)

// Namespace keys. One snapshot per store, always overwritten as a whole.
const (
	CartNamespace     = "cart-storage"
	FavoriteNamespace = "favorite-storage"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore is an interface for snapshot persistence operations.
// It abstracts the underlying key-value store, allowing for different
// implementations (filesystem, Redis, in-memory).
type SnapshotStore interface {
	// Save writes the snapshot for the given namespace, replacing any
	// previous one.
	Save(ctx context.Context, namespace string, data []byte) error

	// Load returns the last-written snapshot for the given namespace.
	// Returns ErrSnapshotNotFound if no snapshot has been written yet.
	Load(ctx context.Context, namespace string) ([]byte, error)

	// Delete removes the snapshot for the given namespace.
	// Deleting an absent snapshot is not an error.
	Delete(ctx context.Context, namespace string) error
}
