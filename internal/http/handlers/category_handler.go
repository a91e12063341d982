package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "freshtrack/internal/log"
	"freshtrack/internal/services"
)

type CategoryHandler struct {
	Cats *services.CategoryService
}

type categoryReq struct {
	Name  string `json:"name" validate:"required,max=50"`
	Icon  string `json:"icon" validate:"max=16"`
	Color string `json:"color" validate:"color"`
}

func (r categoryReq) input() services.CategoryInput {
	return services.CategoryInput{Name: r.Name, Icon: r.Icon, Color: r.Color}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Cats.List()
	if err != nil {
		return fail(c, "categories.list.fail", err)
	}
	return c.JSON(cats)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	cat, err := h.Cats.Get(id)
	if err != nil {
		return fail(c, "categories.get.fail", err)
	}
	return c.JSON(cat)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req categoryReq
	if !parse(c, &req) {
		return nil
	}
	cat, err := h.Cats.Create(req.input())
	if err != nil {
		return fail(c, "categories.create.fail", err)
	}
	applog.Audit(c, "categories.create", map[string]any{"category": cat.ID, "name": cat.Name})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var req categoryReq
	if !parse(c, &req) {
		return nil
	}
	cat, err := h.Cats.Update(id, req.input())
	if err != nil {
		return fail(c, "categories.update.fail", err)
	}
	applog.Audit(c, "categories.update", map[string]any{"category": id})
	return c.JSON(cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	if err := h.Cats.Delete(id); err != nil {
		return fail(c, "categories.delete.fail", err)
	}
	applog.Audit(c, "categories.delete", map[string]any{"category": id})
	return c.SendStatus(fiber.StatusNoContent)
}
