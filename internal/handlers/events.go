// This file handles the /api/events routes: pickup games hosted by players.
//
// --- Permission model ---
// Two layers of access control are used:
//
//  1. Route-level (Authenticator.Required, middleware.RequireAdmin): creating, joining,
//     leaving and cancelling need a login; /all/list is admin only.
//
//  2. Resource-level (inside services.EventService): only the host or an admin may
//     cancel an event, and the host can never leave their own event.

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/services"
)

// ListOpenEvents handles GET /api/events: open events that haven't started yet, soonest first.
func ListOpenEvents(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := events.ListOpen(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}

// GetEvent handles GET /api/events/:id, including the roster.
func GetEvent(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		ev, err := events.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ev)
	}
}

// CreateEvent handles POST /api/events. The caller becomes the host and takes the first slot.
func CreateEvent(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.EventInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		// The host is always the caller; a host_id in the body is ignored
		ev, err := events.Create(c.UserContext(), middleware.Caller(c).ID, req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Event created! 🎉", "event": ev})
	}
}

// JoinEvent handles POST /api/events/:id/join.
func JoinEvent(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		// Capacity checks happen in the service, inside the join transaction
		capacity, err := events.Join(c.UserContext(), id, middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message":      "Joined the game! 🙌",
			"filled_slots": capacity.FilledSlots,
			"total_slots":  capacity.TotalSlots,
			"status":       capacity.Status,
		})
	}
}

// LeaveEvent handles POST /api/events/:id/leave.
func LeaveEvent(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		capacity, err := events.Leave(c.UserContext(), id, middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message":      "Left the event",
			"filled_slots": capacity.FilledSlots,
			"total_slots":  capacity.TotalSlots,
			"status":       capacity.Status,
		})
	}
}

// CancelEvent handles PUT /api/events/:id/cancel (host or admin).
func CancelEvent(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		if err := events.Cancel(c.UserContext(), middleware.Caller(c), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Event cancelled"})
	}
}

// MyEvents handles GET /api/events/my/list: {hosted, joined}.
func MyEvents(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mine, err := events.ListMine(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(mine)
	}
}

// AllEvents handles GET /api/events/all/list (admin only).
func AllEvents(events *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := events.ListAll(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}
