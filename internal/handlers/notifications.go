package handlers

import (
	"bufio"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/trentd187/playmate/internal/middleware"
	"github.com/trentd187/playmate/internal/notify"
)

// pingInterval keeps idle streams alive through proxies that close silent connections.
const pingInterval = 25 * time.Second

// NotificationStream handles GET /api/notifications/stream.
// It holds the response open as a Server-Sent Events stream and writes every
// notification addressed to the caller as it happens:
//
//	event: message
//	data: {"type":"message","data":{...},"at":"..."}
//
// The stream ends when the client goes away or the hub shuts down.
func NotificationStream(hub *notify.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		playerID := middleware.Caller(c).ID
		client := notify.NewClient(playerID)
		if !hub.Register(client) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Server is shutting down"})
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		// The writer runs after this handler returns, so it must not touch c.
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer hub.Unregister(client)
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()

			if _, err := w.WriteString(": connected\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
			for {
				select {
				case frame, ok := <-client.Send:
					if !ok {
						return
					}
					if err := frame.WriteSSE(w); err != nil {
						return
					}
				case <-ticker.C:
					if _, err := w.WriteString(": ping\n\n"); err != nil {
						return
					}
				}
				// Flush fails once the client has disconnected.
				if err := w.Flush(); err != nil {
					log.Debugw("msg", "notification stream closed", "player_id", playerID, "err", err)
					return
				}
			}
		}))
		return nil
	}
}
