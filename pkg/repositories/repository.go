package repositories

import "context"

// Store is a string key-value store.
// Get returns an *ErrNotFound when the key has no value.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Close(ctx context.Context) error
}
