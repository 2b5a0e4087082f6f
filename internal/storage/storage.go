// Package storage defines the object-storage capability used for product
// images. Implementations must be safe for concurrent use; swap the
// concrete type injected at startup to target another backend.
package storage

import (
	"context"
	"io"
)

// Store is the interface for writing, resolving and removing objects.
type Store interface {
	// Put writes the object bytes under path. Paths are caller-allocated
	// and never reused, so Put never overwrites a live object.
	Put(ctx context.Context, path string, r io.Reader) error
	// URL resolves a stored path into its public URL. Pure and
	// deterministic given a path.
	URL(path string) string
	// Delete removes the object at path.
	Delete(ctx context.Context, path string) error
}
