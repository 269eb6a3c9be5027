// This file handles the /api/players routes: public profiles, profile edits and
// matchmaking. Anyone may browse players; editing needs the player themself or an admin,
// and deleting is admin only.

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/services"
)

// ListPlayers handles GET /api/players.
// Optional query params: ?zone=Patia narrows to one zone, ?skill=7 to one skill level.
// Admin accounts are never listed.
func ListPlayers(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Query returns "" for a missing param, which PlayerFilter treats as "no filter"
		filter := services.PlayerFilter{Zone: c.Query("zone")}
		if s := c.Query("skill"); s != "" {
			skill, err := strconv.Atoi(s)
			if err != nil {
				return badRequest(c, "skill must be a number")
			}
			filter.Skill = skill
		}

		list, err := players.List(c.UserContext(), filter)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"count": len(list), "players": list})
	}
}

// ListAllPlayers handles GET /api/players/admin/all (admin only): every account, admins included.
func ListAllPlayers(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := players.ListAll(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}

// GetPlayer handles GET /api/players/:id.
func GetPlayer(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		player, err := players.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(player)
	}
}

// UpdatePlayer handles PUT /api/players/:id. Players may edit their own profile;
// admins may edit anyone's.
func UpdatePlayer(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		var req services.UpdatePlayerInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		player, err := players.Update(c.UserContext(), middleware.Caller(c), id, req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Profile updated!", "player": player})
	}
}

// DeletePlayer handles DELETE /api/players/:id (admin only).
func DeletePlayer(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		if err := players.Delete(c.UserContext(), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Player deleted"})
	}
}

// MatchPlayers handles GET /api/players/match/:id: suggested teammates for a player.
// Login is optional; when present, matches the caller is already connected with are flagged.
func MatchPlayers(players *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		res, err := players.Match(c.UserContext(), id, middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}
