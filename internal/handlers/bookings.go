// This file handles the /api/bookings routes. Every route needs a login; players see
// and cancel their own bookings, admins see and cancel all of them.

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/services"
)

// CreateBooking handles POST /api/bookings.
// Responds 409 when another confirmed booking already holds the slot.
func CreateBooking(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.BookingInput
		if !parseBody(c, &req) {
			return badRequest(c, msgInvalidBody)
		}
		booking, err := turfs.CreateBooking(c.UserContext(), middleware.Caller(c).ID, req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Booking confirmed!", "booking": booking})
	}
}

// MyBookings handles GET /api/bookings/my.
func MyBookings(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := turfs.ListMyBookings(c.UserContext(), middleware.Caller(c).ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}

// AllBookings handles GET /api/bookings/all (admin only).
func AllBookings(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := turfs.ListAllBookings(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	}
}

// CancelBooking handles DELETE /api/bookings/:id. The booking row is kept with
// status "cancelled" and the slot becomes bookable again.
func CancelBooking(turfs *services.TurfService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return badRequest(c, msgInvalidID)
		}
		if err := turfs.CancelBooking(c.UserContext(), middleware.Caller(c), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Booking cancelled"})
	}
}
