package repositories

import (
	"context"
	"fmt"
	"net/url"
)

// NewStoreFromURL creates a store from a connection URL.
// Supported schemes are sqlite, postgresql (or postgres), redis and memory.
// On error the returned Store is always a nil interface.
func NewStoreFromURL(ctx context.Context, connStr string, redisPrefix string) (Store, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		store, err := NewSQLiteStore(ctx, sqlitePath(u))
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgresql", "postgres":
		store, err := NewPostgresStore(ctx, u.String())
		if err != nil {
			return nil, err
		}
		return store, nil
	case "redis", "rediss":
		if redisPrefix == "" {
			redisPrefix = DefaultRedisPrefix
		}
		store, err := NewRedisStore(ctx, u.String(), redisPrefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %s", u.Scheme)
	}
}

// sqlitePath accepts both sqlite://file.db and sqlite:///abs/path/file.db.
func sqlitePath(u *url.URL) string {
	return u.Host + u.Path
}
