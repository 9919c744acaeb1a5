package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/campus-hq/venue-portal/pkg/configuration"
)

// RateLimit builds the global limiter from configuration. The store is
// in-memory by default; redis when several replicas must share a budget.
func RateLimit(conf *configuration.Configuration, logger *logrus.Logger) (mux.MiddlewareFunc, error) {
	if !conf.RateLimit.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	rate := limiter.Rate{
		Period: time.Second,
		Limit:  int64(conf.RateLimit.GlobalRPS),
	}

	var store limiter.Store
	switch conf.RateLimit.Storage {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: conf.RateLimit.RedisURL})
		s, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: "venue_portal_rate",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
		store = s
	case "memory":
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown rate limit storage: %s", conf.RateLimit.Storage)
	}

	instance := limiter.New(store, rate)
	middleware := mhttp.NewMiddleware(instance)
	logger.Infof("rate limiting enabled: %d rps via %s store", conf.RateLimit.GlobalRPS, conf.RateLimit.Storage)

	return middleware.Handler, nil
}
