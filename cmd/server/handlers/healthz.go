package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"note-shelf/internal/logger"
)

const HealthzTimeout = 5 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// Healthz returns a handler that pings every dependency.
// @Summary Health check
// @Description Pings the note store and, when configured, the category cache
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func Healthz(pingers map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
		defer cancel()

		for name, ping := range pingers {
			if err := ping(ctx); err != nil {
				logger.L().Warn("health check failed", "dependency", name, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "down",
					"error":  name + " unavailable",
				})
			}
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}
