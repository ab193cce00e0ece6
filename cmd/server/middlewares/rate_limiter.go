package middlewares

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/logger"
)

// BuildRateLimiter allows max requests per client IP and route within each
// expiration window. max <= 0 disables it. Paths under skipPrefixes are
// never counted.
func BuildRateLimiter(max int, expiration time.Duration, skipPrefixes ...string) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	retryAfter := strconv.Itoa(int(expiration.Seconds()))

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		Next: func(c *fiber.Ctx) bool {
			path := c.Path()
			for _, p := range skipPrefixes {
				if strings.HasPrefix(path, p) {
					return true
				}
			}
			return false
		},
		// login and register are budgeted separately
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + " " + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.L().Warn("rate limit reached", "ip", c.IP(), "path", c.Path())
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return httperr.Fail(httperr.ErrTooManyRequests)
		},
	})
}
