package handlers

import (
	"github.com/gofiber/fiber/v2"

	"freshtrack/internal/expiry"
	"freshtrack/internal/services"
)

type DashboardHandler struct {
	Expiry *services.ExpiryService
	Policy expiry.Policy
}

func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	s, err := h.Expiry.Summary(ownerID(c))
	if err != nil {
		return err
	}
	return render(c, "dashboard", fiber.Map{"Summary": s, "Policy": h.Policy})
}
