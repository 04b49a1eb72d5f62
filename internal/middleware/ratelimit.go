package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	pkgredis "github.com/worksite/core/internal/pkg/redis"
	"github.com/worksite/core/internal/pkg/response"
)

const (
	rateLimitMax    = 50
	rateLimitWindow = time.Second

	loginLimitMax    = 10
	loginLimitWindow = time.Minute
)

// RateLimit enforces a per-IP window of 50 requests/second for
// unauthenticated traffic. Redis failures fail open: availability of the
// API is preferred over strict limiting.
func RateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := pkgredis.Key("rate_limit", ip, fmt.Sprint(time.Now().Unix()))

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}
		if count > rateLimitMax {
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "too many requests, slow down")
			return
		}

		c.Next()
	}
}

// LoginRateLimit throttles credential-guessing: 10 login attempts per IP
// per minute. Applied to /auth/login only.
func LoginRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		window := time.Now().Unix() / int64(loginLimitWindow.Seconds())
		key := pkgredis.Key("login_limit", ip, fmt.Sprint(window))

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, loginLimitWindow+time.Second)
		}
		if count > loginLimitMax {
			c.Header("Retry-After", "60")
			response.TooManyRequests(c, "too many login attempts, try again later")
			return
		}

		c.Next()
	}
}
