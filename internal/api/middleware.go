package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/chat-backend/internal/auth"
)

// JWTAuth resolves the caller's identity and stores it in locals. Websocket
// clients cannot set headers, so a token query parameter is accepted too.
func JWTAuth(v *auth.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ""
		if h := c.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else {
			token = c.Query("token")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "missing auth"})
		}
		userID, err := v.Validate(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "invalid token"})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}
