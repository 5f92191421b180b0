package cache

import (
	"context"
	"time"
)

// Store is the key/value cache used for doctor profile caching and password
// reset codes. Get returns "" for a missing key. The redis-backed
// implementation is used when REDIS_URL is configured; otherwise the server
// runs on the in-process store, which matches the single-process deployment
// model.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
