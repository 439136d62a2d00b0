// Package store persists the tracked element population. The sqlite
// store is the production backend; the memory store backs tests and
// dry runs.
package store

import (
	"context"

	"github.com/buildstation/voidmap/pkg/elements"
)

// Store persists the element population as a whole. Save replaces the
// stored population atomically so a failed commit leaves the previous
// state intact.
type Store interface {
	// Load reads the full population, deleted elements included.
	Load(ctx context.Context) (*elements.Set, error)

	// Save replaces the stored population with set in one transaction.
	Save(ctx context.Context, set *elements.Set) error

	// PurgeDeleted permanently removes elements in the deleted state
	// and reports how many were removed.
	PurgeDeleted(ctx context.Context) (int, error)

	// Snapshot writes a point-in-time copy of the store to path.
	Snapshot(ctx context.Context, path string) error

	// Close releases the underlying resources.
	Close() error
}
