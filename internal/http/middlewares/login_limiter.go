package middlewares

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles credential-guessing against the token endpoint with
// a redis fixed window keyed by client IP, so the limit holds across
// instances. Fails open when redis is down or not configured.
type LoginLimiter struct {
	rdb    *redis.Client
	log    *slog.Logger
	limit  int
	window time.Duration
}

func NewLoginLimiter(rdb *redis.Client, log *slog.Logger, limit int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		rdb:    rdb,
		log:    log,
		limit:  limit,
		window: window,
	}
}

func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rdb == nil {
			c.Next()
			return
		}

		key := "login_attempts:" + clientIP(c)
		ctx := c.Request.Context()

		count, err := l.rdb.Incr(ctx, key).Result()

		if err != nil {
			// never block logins on a redis outage
			l.log.WarnContext(ctx, "login limiter unavailable", "err", err)
			c.Next()
			return
		}

		if count == 1 {
			_ = l.rdb.Expire(ctx, key, l.window).Err()
		}

		if count > int64(l.limit) {
			ttl, err := l.rdb.TTL(ctx, key).Result()

			retryAfter := int(l.window.Seconds())

			if err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds())
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many login attempts. Please try again shortly.",
				},
			})
			return
		}

		c.Next()
	}
}
