package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewRateLimiter limits requests per client IP. rate uses the limiter format,
// e.g. "10-M". Counters live in Redis when client is non-nil and in process
// memory otherwise.
func NewRateLimiter(rate, prefix string, client *redis.Client) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   "rate_limiter:" + prefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis limiter store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix: "rate_limiter:" + prefix,
		})
	}

	return mgin.NewMiddleware(limiter.New(store, r)), nil
}
