// Package readstate persists which notification IDs the user has
// acknowledged, independent of server state. The set survives restarts
// so a previously-seen item still shows as read when the server's copy
// is stale.
package readstate

import "context"

// Store is the acknowledged-ID set behind an interface so the SQLite
// implementation can be swapped for an in-memory one in tests without
// touching reconciler logic.
//
// Implementations are append-only: ids are added, never removed.
// Concurrent writers cannot contradict each other, so last-writer-wins
// is acceptable without coordination.
type Store interface {
	// Acknowledged returns the full set of acknowledged ids.
	Acknowledged(ctx context.Context) (map[string]bool, error)

	// Add records ids as acknowledged. Adding an id that is already
	// present is a no-op.
	Add(ctx context.Context, ids ...string) error

	// Close releases any underlying resources.
	Close() error
}
