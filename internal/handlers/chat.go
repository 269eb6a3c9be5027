// This file handles the /api/chat routes. Every route needs a login, and a player only
// ever sees conversations they are part of: the caller's id always comes from the
// session, never from the request.

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/services"
)

// Conversations handles GET /api/chat/conversations.
func Conversations(chat *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := chat.Conversations(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}

// Thread handles GET /api/chat/messages/:playerId. Reading the thread marks the
// partner's messages as read.
func Thread(chat *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		partnerID, ok := idParam(c, "playerId")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		thread, err := chat.Thread(c.UserContext(), middleware.Caller(c).ID, partnerID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(thread)
	}
}

// SendMessage handles POST /api/chat/send. Responds 403 unless the two players are connected.
func SendMessage(chat *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.SendInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		msg, err := chat.Send(c.UserContext(), middleware.Caller(c).ID, req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}

// MarkRead handles PUT /api/chat/read/:playerId.
func MarkRead(chat *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fromID, ok := idParam(c, "playerId")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		if err := chat.MarkRead(c.UserContext(), middleware.Caller(c).ID, fromID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Marked as read"})
	}
}

// UnreadCount handles GET /api/chat/unread.
func UnreadCount(chat *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := chat.UnreadCount(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"unread": n})
	}
}
