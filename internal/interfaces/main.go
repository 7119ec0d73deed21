package interfaces

import (
	"context"

	"github.com/go-redis/redis_rate/v10"
)

// Limiter returns limiter.ErrRateLimited once key has used up limit.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}
