// This file handles the /api/connections routes: sending connection requests and
// answering them. Every route needs a login.

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/services"
)

// RequestConnection handles POST /api/connections.
// A duplicate request (in either direction) gets 409 with the existing connection
// in the body, so the client can show its current state.
func RequestConnection(connections *services.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.ConnectionInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		conn, err := connections.Request(c.UserContext(), middleware.Caller(c).ID, req)
		if err != nil {
			// Duplicates carry the existing row, which the generic error body would drop
			var se *services.Error
			if errors.As(err, &se) && se.Kind == services.KindConflict && se.Detail != nil {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": se.Message, "connection": se.Detail})
			}
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Connect request sent!", "connection": conn})
	}
}

// MyConnections handles GET /api/connections/my.
func MyConnections(connections *services.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mine, err := connections.ListMine(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(mine)
	}
}

// AllConnections handles GET /api/connections/all (admin only).
func AllConnections(connections *services.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := connections.ListAll(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}

// AcceptConnection handles PUT /api/connections/:id/accept. Only the recipient may accept.
func AcceptConnection(connections *services.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		conn, err := connections.Accept(c.UserContext(), middleware.Caller(c).ID, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Connection accepted!", "connection": conn})
	}
}

// RejectConnection handles PUT /api/connections/:id/reject. Only the recipient may reject.
func RejectConnection(connections *services.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		conn, err := connections.Reject(c.UserContext(), middleware.Caller(c).ID, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Connection rejected", "connection": conn})
	}
}
