package handlers

import (
	"github.com/gofiber/fiber/v2"

	"freshtrack/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.Inv.LowStock(ownerID(c))
	if err != nil {
		return fail(c, "inventory.lowstock.fail", err)
	}
	return c.JSON(items)
}

func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Inv.Stats(ownerID(c))
	if err != nil {
		return fail(c, "inventory.stats.fail", err)
	}
	return c.JSON(st)
}
