package cache

import (
	"context"
	"time"
)

// Cache is the read-through cache used for hot room lookups. A miss is
// (false, nil); errors are reserved for backend failures.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
