package store

import "github.com/google/uuid"

// newNodeID returns a fresh random id. Collisions are checked by the caller against the arena.
func newNodeID() string {
	return uuid.NewString()
}
