// Package middleware contains HTTP middleware functions for the PlayMate API.
// Middleware sits between the HTTP server and route handlers: it runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like authentication and tracing.
package middleware

import (
	"errors"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/logger"
	"github.com/trentd187/playmate/internal/models"
	"github.com/trentd187/playmate/internal/services"
	"github.com/trentd187/playmate/internal/session"
)

// Keys of the values Auth stores in c.Locals for downstream handlers.
const (
	LocalPlayerID = "playerID" // int64
	LocalIsAdmin  = "isAdmin"  // bool
	LocalToken    = "token"    // string, the raw session token
)

// Authenticator resolves session tokens into callers.
type Authenticator struct {
	sessions session.Store
	db       *gorm.DB
	log      *log.Helper
}

// NewAuthenticator returns an Authenticator that resolves tokens through sessions and
// reads the admin flag from db on every request.
func NewAuthenticator(sessions session.Store, db *gorm.DB, l log.Logger) *Authenticator {
	return &Authenticator{
		sessions: sessions,
		db:       db,
		log:      logger.Module(l, "middleware.auth"),
	}
}

// Required rejects requests without a valid "Authorization: Bearer <token>" header
// with 401 "Login required". On success the caller's id, admin flag and token are
// stored in c.Locals.
func (a *Authenticator) Required() fiber.Handler {
	return a.handler(true, false)
}

// Optional authenticates the caller when a valid token is present and lets anonymous
// requests through otherwise.
func (a *Authenticator) Optional() fiber.Handler {
	return a.handler(false, false)
}

// Stream is Required, but also accepts the token as a ?token= query parameter.
// Browsers can't set headers on an EventSource.
func (a *Authenticator) Stream() fiber.Handler {
	return a.handler(true, true)
}

func (a *Authenticator) handler(required, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			if required {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Login required"})
			}
			return c.Next()
		}

		ctx := c.UserContext()
		playerID, ok, err := a.sessions.Resolve(ctx, token)
		if err != nil {
			a.log.WithContext(ctx).Errorw("msg", "resolve session", "err", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
		if !ok {
			if required {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Login required"})
			}
			return c.Next()
		}

		// The admin flag is read on every request so a demotion takes effect immediately.
		// A token whose player was deleted still authenticates; handlers that need the
		// row report it as not found.
		var player models.Player
		err = a.db.WithContext(ctx).Select("id", "is_admin").First(&player, playerID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.WithContext(ctx).Errorw("msg", "load caller", "player_id", playerID, "err", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}

		c.Locals(LocalPlayerID, playerID)
		c.Locals(LocalIsAdmin, player.IsAdmin)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// Caller returns the authenticated caller, or the zero Caller on anonymous requests.
func Caller(c *fiber.Ctx) services.Caller {
	id, _ := c.Locals(LocalPlayerID).(int64)
	admin, _ := c.Locals(LocalIsAdmin).(bool)
	return services.Caller{ID: id, IsAdmin: admin}
}

// Token returns the session token the request authenticated with, if any.
func Token(c *fiber.Ctx) string {
	if t, ok := c.Locals(LocalToken).(string); ok {
		return t
	}
	return bearerToken(c)
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
