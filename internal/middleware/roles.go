package middleware

import "github.com/gofiber/fiber/v2"

// RequireAdmin allows only callers flagged is_admin and answers everyone else with
// 403 "Admin only". It must run after an Authenticator handler, which populates the
// admin flag in c.Locals:
//
//	api.Get("/admin/stats", auth.Required(), middleware.RequireAdmin(), handlers.Stats(admin))
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if admin, ok := c.Locals(LocalIsAdmin).(bool); !ok || !admin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin only"})
		}
		return c.Next()
	}
}
