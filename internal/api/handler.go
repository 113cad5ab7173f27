package api

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/domain"
	"github.com/fathima-sithara/chat-backend/internal/service"
)

// MessageAPI is what the handlers need from the service layer.
type MessageAPI interface {
	Send(ctx context.Context, senderID, receiverID string, in service.SendInput) (*domain.Message, error)
	FetchConversation(ctx context.Context, viewerID, peerID string) ([]*domain.Message, error)
	MarkSeen(ctx context.Context, id string) error
	MarkViewOnceViewed(ctx context.Context, id, viewerID string) error
	DeleteForMe(ctx context.Context, id, requesterID string) error
	DeleteForEveryone(ctx context.Context, id, requesterID string) (string, error)
	Sidebar(ctx context.Context, userID string) ([]*domain.User, map[string]int64, error)
}

type Handlers struct {
	svc MessageAPI
	log *zap.SugaredLogger
}

func NewHandlers(svc MessageAPI, log *zap.SugaredLogger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func (h *Handlers) sidebar(c *fiber.Ctx) error {
	users, counts, err := h.svc.Sidebar(c.Context(), callerID(c))
	if err != nil {
		return domainFailure(c, h.log, err)
	}
	return success(c, fiber.Map{"users": users, "unseenMessages": counts})
}

// conversation marks every message directed at the caller seen as part of
// the same request; this read is deliberately side-effecting.
func (h *Handlers) conversation(c *fiber.Ctx) error {
	msgs, err := h.svc.FetchConversation(c.Context(), callerID(c), c.Params("id"))
	if err != nil {
		return domainFailure(c, h.log, err)
	}
	return success(c, fiber.Map{"messages": msgs})
}

func (h *Handlers) markSeen(c *fiber.Ctx) error {
	if err := h.svc.MarkSeen(c.Context(), c.Params("id")); err != nil {
		return domainFailure(c, h.log, err)
	}
	return success(c, nil)
}

func (h *Handlers) viewOnce(c *fiber.Ctx) error {
	if err := h.svc.MarkViewOnceViewed(c.Context(), c.Params("id"), callerID(c)); err != nil {
		return domainFailure(c, h.log, err)
	}
	return success(c, nil)
}

type sendRequest struct {
	Text     string `json:"text"`
	Image    string `json:"image"`
	Voice    string `json:"voice"`
	Video    string `json:"video"`
	ViewOnce bool   `json:"viewOnce"`
}

func (h *Handlers) send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, "invalid body")
	}

	in := service.SendInput{Text: req.Text, ViewOnce: req.ViewOnce}
	var err error
	if in.Image, err = decodeMedia(req.Image); err != nil {
		return failure(c, "invalid image data")
	}
	if in.Voice, err = decodeMedia(req.Voice); err != nil {
		return failure(c, "invalid voice data")
	}
	if in.Video, err = decodeMedia(req.Video); err != nil {
		return failure(c, "invalid video data")
	}

	m, err := h.svc.Send(c.Context(), callerID(c), c.Params("id"), in)
	if err != nil {
		return domainFailure(c, h.log, err)
	}
	return success(c, fiber.Map{"newMessage": m})
}

func (h *Handlers) deleteForMe(c *fiber.Ctx) error {
	if err := h.svc.DeleteForMe(c.Context(), c.Params("id"), callerID(c)); err != nil {
		return domainFailure(c, h.log, err)
	}
	return success(c, nil)
}

func (h *Handlers) deleteForEveryone(c *fiber.Ctx) error {
	tombID, err := h.svc.DeleteForEveryone(c.Context(), c.Params("id"), callerID(c))
	if err != nil {
		return domainFailure(c, h.log, err)
	}
	return success(c, fiber.Map{"tombstoneId": tombID})
}

// decodeMedia accepts plain base64 or a data URI as produced by the client's
// FileReader.
func decodeMedia(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if i := strings.Index(s, ";base64,"); i >= 0 {
		s = s[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}
