package security

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	limiterpkg "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/time/rate"
)

// IPRateLimit limits requests per client IP over a one-minute window.
func IPRateLimit(requestsPerMinute int64) echo.MiddlewareFunc {
	limiter := limiterpkg.New(memory.NewStore(), limiterpkg.Rate{
		Period: time.Minute,
		Limit:  requestsPerMinute,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, err := limiter.Get(c.Request().Context(), c.RealIP())
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"success": false,
					"error":   "rate limit error",
				})
			}
			if ctx.Reached {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"success": false,
					"error":   "Rate limit exceeded. Please try again later.",
				})
			}
			return next(c)
		}
	}
}

// KeyedLimiter hands out one token bucket per key, e.g. per admin id for
// bulk operations.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewKeyedLimiter(every time.Duration, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Every(every),
		burst:    burst,
	}
}

func (k *KeyedLimiter) Allow(key int64) bool {
	k.mu.Lock()
	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = limiter
	}
	k.mu.Unlock()

	return limiter.Allow()
}
