// Package kvstore provides the string key/value store that holds the match
// collection.  Values are opaque strings; callers own the serialization.
package kvstore

import (
	"context"
	"errors"
)

// Store is a minimal string key/value store.
type Store interface {
	// Get returns the value stored under key.  The boolean is false when the
	// key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set overwrites the value stored under key in a single write.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key.  Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("kvstore: unknown driver")
