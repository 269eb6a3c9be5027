// This file handles the /api/auth routes: registering, logging in and out, and
// reading the current player. Tokens are opaque strings the client sends back as
// "Authorization: Bearer <token>"; they mean nothing without the server's session store.

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/services"
)

// Register handles POST /api/auth/register.
// On success it responds 201 with the new player and a session token, so the client
// is logged in straight away.
func Register(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.RegisterInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		res, err := players.Register(c.UserContext(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Account created!",
			"token":   res.Token,
			"player":  res.Player,
		})
	}
}

// Login handles POST /api/auth/login. Each login issues a fresh token; tokens from
// earlier logins stay valid until they are logged out.
func Login(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.LoginInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		res, err := players.Login(c.UserContext(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Login successful!",
			"token":   res.Token,
			"player":  res.Player,
		})
	}
}

// Me handles GET /api/auth/me and returns the logged-in player.
func Me(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The caller was resolved from the bearer token by the auth middleware
		player, err := players.Get(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(player)
	}
}

// Logout handles POST /api/auth/logout. It always succeeds, even without a valid token.
func Logout(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The token was stored in Locals by the Optional auth middleware; empty when absent
		if err := players.Logout(c.UserContext(), middleware.Token(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Logged out"})
	}
}
