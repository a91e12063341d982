package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "freshtrack/internal/log"
	"freshtrack/internal/services"
)

type ExpiryHandler struct {
	Expiry *services.ExpiryService
	Notifs *services.NotificationService
}

func (h *ExpiryHandler) Summary(c *fiber.Ctx) error {
	s, err := h.Expiry.Summary(ownerID(c))
	if err != nil {
		return fail(c, "expiry.summary.fail", err)
	}
	return c.JSON(s)
}

// Soon accepts ?days=N to widen or narrow the configured window.
func (h *ExpiryHandler) Soon(c *fiber.Ctx) error {
	days := c.QueryInt("days", -1)
	if days > 365 {
		return jsonError(c, fiber.StatusBadRequest, "days must be <= 365")
	}
	items, err := h.Expiry.Soon(ownerID(c), days)
	if err != nil {
		return fail(c, "expiry.soon.fail", err)
	}
	return c.JSON(items)
}

func (h *ExpiryHandler) Expired(c *fiber.Ctx) error {
	items, err := h.Expiry.Expired(ownerID(c))
	if err != nil {
		return fail(c, "expiry.expired.fail", err)
	}
	return c.JSON(items)
}

// Notify synthesizes and stores today's alerts for the caller. Repeating it the
// same day only reports skips.
func (h *ExpiryHandler) Notify(c *fiber.Ctx) error {
	res, err := h.Notifs.NotifyOwner(c.UserContext(), ownerID(c))
	if err != nil {
		return fail(c, "expiry.notify.fail", err)
	}
	applog.Audit(c, "expiry.notify", map[string]any{"created": res.Created, "skipped": res.Skipped})
	return c.JSON(res)
}
