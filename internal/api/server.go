package api

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"github.com/fathima-sithara/chat-backend/internal/auth"
	"github.com/fathima-sithara/chat-backend/internal/ws"
)

func NewServer(h *Handlers, wsrv *ws.Server, v *auth.Validator) *fiber.App {
	app := fiber.New()
	app.Use(fiberlogger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	msgs := app.Group("/api/messages", JWTAuth(v))
	registerMessageRoutes(msgs, h)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", JWTAuth(v), websocket.New(wsrv.Handle))

	return app
}

func registerMessageRoutes(r fiber.Router, h *Handlers) {
	r.Get("/users", h.sidebar)
	r.Put("/mark/:id", h.markSeen)
	r.Put("/view-once/:id", h.viewOnce)
	r.Post("/send/:id", h.send)
	r.Delete("/delete/me/:id", h.deleteForMe)
	r.Delete("/delete/everyone/:id", h.deleteForEveryone)
	// catch-all peer fetch, keep last
	r.Get("/:id", h.conversation)
}
