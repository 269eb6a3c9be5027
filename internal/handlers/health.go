package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /api/health.
// It returns a simple JSON response indicating the server is alive and reachable.
// This endpoint is intentionally lightweight: no database queries, no authentication.
// It's used by container liveness probes and load balancers.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
