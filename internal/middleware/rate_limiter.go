package middleware

import (
	"math"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/utilities"
)

// NewRateLimitStore counts hits in Redis when client is set, so limits hold across
// instances, and in process memory otherwise.
func NewRateLimitStore(client *redis.Client, rate time.Duration, limit uint) ratelimit.Store {
	if client != nil {
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        rate,
			Limit:       limit,
		})
	}
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  rate,
		Limit: limit,
	})
}

func keyFunc(c *gin.Context) string {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		return "ip:" + c.ClientIP()
	}
	return "user:" + user.UserID.String()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	wait := time.Until(info.ResetTime).Seconds()
	c.Header("Retry-After", strconv.Itoa(int(math.Max(1, math.Ceil(wait)))))
	utilities.Fail(c, apperror.New(apperror.KindRateLimited, "too many requests, please try again later"))
}

// RateLimiter limits each caller, keyed by user when authenticated and by client IP otherwise.
func RateLimiter(store ratelimit.Store) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      keyFunc,
		ErrorHandler: errorHandler,
	})
}

// ScopedRateLimiter is RateLimiter with keys prefixed by scope, so a second limit on the same
// Redis client keeps its own counters.
func ScopedRateLimiter(scope string, store ratelimit.Store) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      func(c *gin.Context) string { return scope + ":" + keyFunc(c) },
		ErrorHandler: errorHandler,
	})
}
