package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/domain"
)

// Every response uses the uniform envelope {success, message?, ...data}.
// Domain failures keep HTTP 200; callers branch on the success flag.

func success(c *fiber.Ctx, data fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(body)
}

func failure(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"success": false, "message": msg})
}

// domainFailure converts a service error into the failure envelope. Only the
// known taxonomy crosses the boundary; anything else is logged and reported
// as a generic internal error.
func domainFailure(c *fiber.Ctx, log *zap.SugaredLogger, err error) error {
	for _, known := range []error{
		domain.ErrNotFound,
		domain.ErrForbidden,
		domain.ErrEmptyMessage,
		domain.ErrNotViewOnce,
		domain.ErrAlreadyViewed,
		domain.ErrUpload,
	} {
		if errors.Is(err, known) {
			return failure(c, known.Error())
		}
	}
	log.Errorw("request failed", "path", c.Path(), "err", err)
	return failure(c, "internal error")
}
