package permission

import "errors"

// Use is the capability that unlocks infinite water.
const Use = "infinitewaterbucket.use"

// ErrUnknownPermission is returned when granting a permission that was never registered.
var ErrUnknownPermission = errors.New("unknown permission")

// Checker answers permission queries.
type Checker interface {
	// HasPermission reports whether the actor holds the named permission.
	// Unregistered permissions are never held.
	HasPermission(actorID, name string) (bool, error)
}

// Store is the interface for permission stores.
// Implementations can be in-memory, Redis-backed, SQLite-backed or any other storage.
type Store interface {
	Checker

	// Register declares a permission so it can be granted. Registering twice is a no-op.
	Register(name string) error

	// Grant gives the actor a registered permission.
	// Returns ErrUnknownPermission if name was never registered.
	Grant(actorID, name string) error

	// Revoke removes a permission from the actor. Revoking a permission the actor
	// does not hold is a no-op.
	Revoke(actorID, name string) error

	// Granted lists the actor's permissions in sorted order.
	Granted(actorID string) ([]string, error)
}
