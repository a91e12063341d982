package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "freshtrack/internal/log"
	"freshtrack/internal/repos"
	"freshtrack/internal/services"
	"freshtrack/internal/validate"
)

type ItemHandler struct {
	Inv *services.InventoryService
}

type itemReq struct {
	Name              string              `json:"name" validate:"required,max=80"`
	CategoryID        string              `json:"categoryId" validate:"required,max=64"`
	Quantity          *decimal.Decimal    `json:"quantity" validate:"required,quantity"`
	Unit              string              `json:"unit" validate:"max=20"`
	LowStockThreshold decimal.NullDecimal `json:"lowStockThreshold" validate:"omitempty,quantity"`
	ExpiryDate        string              `json:"expiryDate" validate:"omitempty,date"`
	Notes             string              `json:"notes" validate:"max=500"`
}

func (r itemReq) input() services.ItemInput {
	exp, _ := validate.Date(r.ExpiryDate)
	return services.ItemInput{
		Name:              r.Name,
		CategoryID:        r.CategoryID,
		Quantity:          *r.Quantity,
		Unit:              r.Unit,
		LowStockThreshold: r.LowStockThreshold,
		ExpiryDate:        exp,
		Notes:             r.Notes,
	}
}

type consumeReq struct {
	Amount *decimal.Decimal `json:"amount" validate:"required,quantity"`
}

type restockReq struct {
	Quantity   *decimal.Decimal `json:"quantity" validate:"required,quantity"`
	ExpiryDate string           `json:"expiryDate" validate:"omitempty,date"`
}

// List supports ?status=&categoryId=&q= filters.
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var f repos.ItemFilter
	if s := c.Query("status"); s != "" {
		st, ok := validate.Status(s)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "unknown status")
		}
		f.Status = st
	}
	if s := c.Query("categoryId"); s != "" {
		id, ok := validate.ID(s)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid categoryId")
		}
		f.CategoryID = id
	}
	if s := c.Query("q"); s != "" {
		q, ok := validate.Q(s)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return jsonError(c, fiber.StatusBadRequest, "invalid search query")
		}
		f.Q = q
	}
	items, err := h.Inv.List(ownerID(c), f)
	if err != nil {
		return fail(c, "items.list.fail", err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	v, err := h.Inv.Get(ownerID(c), id)
	if err != nil {
		return fail(c, "items.get.fail", err)
	}
	return c.JSON(v)
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var req itemReq
	if !parse(c, &req) {
		return nil
	}
	v, err := h.Inv.Create(ownerID(c), req.input())
	if err != nil {
		return fail(c, "items.create.fail", err)
	}
	applog.Audit(c, "items.create", map[string]any{"item": v.ID, "status": v.Status})
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var req itemReq
	if !parse(c, &req) {
		return nil
	}
	v, err := h.Inv.Update(ownerID(c), id, req.input())
	if err != nil {
		return fail(c, "items.update.fail", err)
	}
	applog.Audit(c, "items.update", map[string]any{"item": id, "status": v.Status})
	return c.JSON(v)
}

func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	if err := h.Inv.Delete(ownerID(c), id); err != nil {
		return fail(c, "items.delete.fail", err)
	}
	applog.Audit(c, "items.delete", map[string]any{"item": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ItemHandler) Consume(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var req consumeReq
	if !parse(c, &req) {
		return nil
	}
	v, err := h.Inv.Consume(ownerID(c), id, *req.Amount)
	if err != nil {
		return fail(c, "items.consume.fail", err)
	}
	applog.Audit(c, "items.consume", map[string]any{"item": id, "amount": req.Amount.String(), "status": v.Status})
	return c.JSON(v)
}

func (h *ItemHandler) Restock(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var req restockReq
	if !parse(c, &req) {
		return nil
	}
	exp, _ := validate.Date(req.ExpiryDate)
	v, err := h.Inv.Restock(ownerID(c), id, *req.Quantity, exp)
	if err != nil {
		return fail(c, "items.restock.fail", err)
	}
	applog.Audit(c, "items.restock", map[string]any{"item": id, "quantity": req.Quantity.String(), "status": v.Status})
	return c.JSON(v)
}

func (h *ItemHandler) Waste(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	v, err := h.Inv.Waste(ownerID(c), id)
	if err != nil {
		return fail(c, "items.waste.fail", err)
	}
	applog.Audit(c, "items.waste", map[string]any{"item": id})
	return c.JSON(v)
}
