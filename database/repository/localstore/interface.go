package localstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("localstore: key not found")

// Store is the durable key/value storage behind the persisted client state
// (auth token, display currency).
type Store interface {
	// Get returns the value at key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value at key with no expiry.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
