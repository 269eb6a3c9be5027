// Package handlers contains the HTTP route handler functions for the PlayMate API.
// Each handler corresponds to one API endpoint and is responsible for reading the
// request, calling the matching service and writing a response.
//
// Each exported function follows the "handler factory" pattern: it takes the services
// it needs and returns a fiber.Handler. This lets us inject dependencies without
// global variables.
//
// Services report failures as *services.Error. fail maps the error's Kind onto an
// HTTP status and writes the standard {"error": "..."} body.
package handlers

import (
	"errors"
	"strconv"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/services"
)

// statusFor maps a service error kind onto its HTTP status code.
func statusFor(k services.Kind) int {
	switch k {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as a JSON error response. Internal errors are logged with the
// request id and reported to the client as a generic 500.
func fail(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	if kind == services.KindInternal {
		// The cause stays in the logs; the client only learns that something broke.
		log.Context(c.UserContext()).Errorw(
			"msg", "request failed",
			"request_id", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"err", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	// Every non-internal kind comes from a *services.Error, whose Message is safe to show.
	var se *services.Error
	errors.As(err, &se)
	return c.Status(statusFor(kind)).JSON(fiber.Map{"error": se.Message})
}

// badRequest writes a 400 with msg.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// idParam parses the named route parameter as a positive integer id.
func idParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseBody decodes the JSON request body into dst. An empty body leaves dst untouched.
func parseBody(c *fiber.Ctx, dst any) bool {
	if len(c.Body()) == 0 {
		return true
	}
	return c.BodyParser(dst) == nil
}

const (
	msgInvalidBody = "Invalid request body"
	msgInvalidID   = "Invalid id"
)
