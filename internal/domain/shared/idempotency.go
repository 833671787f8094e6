package shared

import (
	"context"
	"time"
)

// DefaultSubmissionTTL is how long a payment submission key or a forwarded
// event ID is remembered
const DefaultSubmissionTTL = 24 * time.Hour

// IdempotencyStore remembers keys for a bounded time
type IdempotencyStore interface {
	// MarkProcessed reports true only for the first caller within ttl
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}
