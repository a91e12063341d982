package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "freshtrack/internal/log"
	"freshtrack/internal/repos"
	"freshtrack/internal/services"
	"freshtrack/internal/validate"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	// Pick up the token the CSRF middleware put into Locals, else the cookie
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	} else if tok := c.Cookies("csrf_"); tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// fail maps service errors to status codes. Unknown errors are logged under
// action and answered with a generic 500.
func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidInput):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, repos.ErrConflict):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInsufficientQuantity):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrCategoryInUse):
		return jsonError(c, fiber.StatusConflict, "category is in use by existing items")
	case errors.Is(err, services.ErrBadCreds), errors.Is(err, services.ErrUnauthorized):
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	applog.Error(c, action, err, nil)
	return jsonError(c, fiber.StatusInternalServerError, "something went wrong, please try again")
}

// parse decodes the body and runs its validate tags. On failure it has already
// written a 400 and reports false.
func parse(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": "bad_body"})
		_ = jsonError(c, fiber.StatusBadRequest, "malformed request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": err.Error()})
		_ = jsonError(c, fiber.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID validates the :id route parameter, writing a 400 when it is malformed.
func pathID(c *fiber.Ctx) (string, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		_ = jsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	return id, ok
}
