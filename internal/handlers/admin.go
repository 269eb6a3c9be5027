// This file handles the /api/admin routes (admin only, enforced by the routes).

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/services"
)

// Stats handles GET /api/admin/stats (admin only).
func Stats(admin *services.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := admin.Stats(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(st)
	}
}
