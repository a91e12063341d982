package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "freshtrack/internal/log"
	"freshtrack/internal/services"
)

type NotificationHandler struct {
	Notifs *services.NotificationService
}

type notificationReq struct {
	Type          string         `json:"type" validate:"omitempty,oneof=expiry_alert low_stock system"`
	Title         string         `json:"title" validate:"required,max=120"`
	Message       string         `json:"message" validate:"required,max=1000"`
	Priority      string         `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	RelatedItemID string         `json:"relatedItemId" validate:"max=64"`
	Metadata      map[string]any `json:"metadata"`
}

// List supports ?unread=true and ?limit=N.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	list, err := h.Notifs.List(ownerID(c), c.QueryBool("unread"), c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, "notifications.list.fail", err)
	}
	return c.JSON(list)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.Notifs.UnreadCount(ownerID(c))
	if err != nil {
		return fail(c, "notifications.count.fail", err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var req notificationReq
	if !parse(c, &req) {
		return nil
	}
	n, err := h.Notifs.Create(c.UserContext(), ownerID(c), services.NotificationInput{
		Type:          req.Type,
		Title:         req.Title,
		Message:       req.Message,
		Priority:      req.Priority,
		RelatedItemID: req.RelatedItemID,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return fail(c, "notifications.create.fail", err)
	}
	applog.Audit(c, "notifications.create", map[string]any{"notification": n.ID})
	return c.Status(fiber.StatusCreated).JSON(n)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	if err := h.Notifs.MarkRead(ownerID(c), id); err != nil {
		return fail(c, "notifications.read.fail", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.Notifs.MarkAllRead(ownerID(c))
	if err != nil {
		return fail(c, "notifications.readall.fail", err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	if err := h.Notifs.Delete(ownerID(c), id); err != nil {
		return fail(c, "notifications.delete.fail", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	n, err := h.Notifs.Clear(ownerID(c))
	if err != nil {
		return fail(c, "notifications.clear.fail", err)
	}
	applog.Audit(c, "notifications.clear", map[string]any{"deleted": n})
	return c.JSON(fiber.Map{"deleted": n})
}
