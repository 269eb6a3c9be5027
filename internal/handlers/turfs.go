// This file handles the /api/turfs routes: browsing venues and their free slots, which
// is public, and managing venues, which is admin only (enforced by the routes).

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/services"
)

// ListTurfs handles GET /api/turfs.
func ListTurfs(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := turfs.ListTurfs(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}

// GetTurf handles GET /api/turfs/:id.
func GetTurf(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		turf, err := turfs.GetTurf(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(turf)
	}
}

// TurfSlots handles GET /api/turfs/:id/slots?date=YYYY-MM-DD.
func TurfSlots(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		slots, err := turfs.Slots(c.UserContext(), id, c.Query("date"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(slots)
	}
}

// CreateTurf handles POST /api/turfs (admin only).
func CreateTurf(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.TurfInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		turf, err := turfs.CreateTurf(c.UserContext(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Turf added!", "turf": turf})
	}
}

// UpdateTurf handles PUT /api/turfs/:id (admin only).
func UpdateTurf(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		var req services.TurfPatch
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		turf, err := turfs.UpdateTurf(c.UserContext(), id, req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Turf updated!", "turf": turf})
	}
}

// DeleteTurf handles DELETE /api/turfs/:id (admin only).
func DeleteTurf(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		if err := turfs.DeleteTurf(c.UserContext(), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Turf deleted"})
	}
}
