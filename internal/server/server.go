// Package server assembles the Fiber application: global middleware, services and
// the full /api route table.
package server

import (
	"errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/handlers"
	"github.com/trentd187/playmate/internal/logger"
	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/notify"
	"github.com/trentd187/playmate/internal/services"
	"github.com/trentd187/playmate/internal/session"
)

// Deps are the long-lived components the HTTP layer is built from.
type Deps struct {
	DB       *gorm.DB
	Sessions session.Store
	Hub      *notify.Hub // Notification fan-out; nil disables notifications and the stream route
	Logger   log.Logger

	BcryptCost  int    // 0 uses bcrypt.DefaultCost
	CORSOrigins string // Comma-separated; empty allows any origin
	StaticDir   string // Optional directory served at /
	AccessLog   bool   // Log one line per request
}

// New returns the configured Fiber app. It does not start listening.
func New(d Deps) *fiber.App {
	helper := logger.Module(d.Logger, "server")

	app := fiber.New(fiber.Config{
		AppName:      "PlayMate API",
		ErrorHandler: errorHandler(helper),
	})

	// --- Global middleware ---
	// These run on every request before any route handler.
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if d.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	origins := d.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.Tracing())

	// A nil *notify.Hub must not reach the services as a non-nil Notifier interface.
	var notifier services.Notifier
	if d.Hub != nil {
		notifier = d.Hub
	}
	players := services.NewPlayerService(d.DB, d.Sessions, d.BcryptCost)
	turfs := services.NewTurfService(d.DB)
	connections := services.NewConnectionService(d.DB, notifier)
	events := services.NewEventService(d.DB)
	chat := services.NewChatService(d.DB, notifier)
	admin := services.NewAdminService(d.DB)

	auth := middleware.NewAuthenticator(d.Sessions, d.DB, d.Logger)
	login := auth.Required()
	adminOnly := middleware.RequireAdmin()

	api := app.Group("/api")
	api.Get("/health", handlers.HealthCheck)

	// Auth
	api.Post("/auth/register", handlers.Register(players))
	api.Post("/auth/login", handlers.Login(players))
	api.Get("/auth/me", login, handlers.Me(players))
	api.Post("/auth/logout", auth.Optional(), handlers.Logout(players))

	// Players. Static segments are registered before /:id so they aren't read as ids.
	api.Get("/players", handlers.ListPlayers(players))
	api.Get("/players/admin/all", login, adminOnly, handlers.ListAllPlayers(players))
	api.Get("/players/match/:id", auth.Optional(), handlers.MatchPlayers(players))
	api.Get("/players/:id", handlers.GetPlayer(players))
	api.Put("/players/:id", login, handlers.UpdatePlayer(players))
	api.Delete("/players/:id", login, adminOnly, handlers.DeletePlayer(players))

	// Turfs
	api.Get("/turfs", handlers.ListTurfs(turfs))
	api.Get("/turfs/:id", handlers.GetTurf(turfs))
	api.Get("/turfs/:id/slots", handlers.TurfSlots(turfs))
	api.Post("/turfs", login, adminOnly, handlers.CreateTurf(turfs))
	api.Put("/turfs/:id", login, adminOnly, handlers.UpdateTurf(turfs))
	api.Delete("/turfs/:id", login, adminOnly, handlers.DeleteTurf(turfs))

	// Bookings
	api.Post("/bookings", login, handlers.CreateBooking(turfs))
	api.Get("/bookings/my", login, handlers.MyBookings(turfs))
	api.Get("/bookings/all", login, adminOnly, handlers.AllBookings(turfs))
	api.Delete("/bookings/:id", login, handlers.CancelBooking(turfs))

	// Connections
	api.Post("/connections", login, handlers.RequestConnection(connections))
	api.Get("/connections/my", login, handlers.MyConnections(connections))
	api.Get("/connections/all", login, adminOnly, handlers.AllConnections(connections))
	api.Put("/connections/:id/accept", login, handlers.AcceptConnection(connections))
	api.Put("/connections/:id/reject", login, handlers.RejectConnection(connections))

	// Events
	api.Get("/events", handlers.ListOpenEvents(events))
	api.Post("/events", login, handlers.CreateEvent(events))
	api.Get("/events/my/list", login, handlers.MyEvents(events))
	api.Get("/events/all/list", login, adminOnly, handlers.AllEvents(events))
	api.Get("/events/:id", handlers.GetEvent(events))
	api.Post("/events/:id/join", login, handlers.JoinEvent(events))
	api.Post("/events/:id/leave", login, handlers.LeaveEvent(events))
	api.Put("/events/:id/cancel", login, handlers.CancelEvent(events))

	// Chat
	api.Get("/chat/conversations", login, handlers.Conversations(chat))
	api.Get("/chat/messages/:playerId", login, handlers.Thread(chat))
	api.Post("/chat/send", login, handlers.SendMessage(chat))
	api.Put("/chat/read/:playerId", login, handlers.MarkRead(chat))
	api.Get("/chat/unread", login, handlers.UnreadCount(chat))

	// Admin
	api.Get("/admin/stats", login, adminOnly, handlers.Stats(admin))

	// Notifications
	if d.Hub != nil {
		api.Get("/notifications/stream", auth.Stream(), handlers.NotificationStream(d.Hub))
	}

	if d.StaticDir != "" {
		app.Static("/", d.StaticDir)
	}

	// Anything that fell through every route.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	return app
}

// errorHandler turns errors that escape a handler (Fiber's own errors, recovered
// panics) into the standard {"error": "..."} body.
func errorHandler(helper *log.Helper) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		helper.WithContext(c.UserContext()).Errorw(
			"msg", "unhandled error",
			"request_id", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"err", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
