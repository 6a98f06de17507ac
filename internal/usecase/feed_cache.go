package usecase

import (
	"context"
	"time"
)

// FeedCache is the read-through cache port for public, frequently
// re-queried listings. Implementations must treat unavailability as a
// miss, never as an error the caller has to handle.
type FeedCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
