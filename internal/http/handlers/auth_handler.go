package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"freshtrack/internal/log"
	"freshtrack/internal/services"
	"freshtrack/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
	TTL  time.Duration
}

type registerReq struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=100"`
	Name     string `json:"name" form:"name" validate:"required,max=80"`
	Password string `json:"password" form:"password" validate:"required,strongpw"`
}

type loginReq struct {
	Email    string `json:"email" form:"email" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required,max=64"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if !parse(c, &req) {
		return nil
	}
	u, tok, err := h.Auth.Register(req.Email, req.Name, req.Password)
	if err != nil {
		return fail(c, "auth.register.fail", err)
	}
	log.Audit(c, "auth.register", map[string]any{"user": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": tok, "user": u})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if !parse(c, &req) {
		return nil
	}
	u, tok, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return fail(c, "auth.login.fail", err)
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	return c.JSON(fiber.Map{"token": tok, "user": u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(currentClaims(c)); err != nil {
		return fail(c, "auth.logout.fail", err)
	}
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// ---------- HTML ----------

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) LoginWeb(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
	}

	_, tok, err := h.Auth.Login(email, pass)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.TTL),
	})
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/dashboard")
}

func (h *AuthHandler) LogoutWeb(c *fiber.Ctx) error {
	if tok := c.Cookies(tokenCookie); tok != "" {
		if _, claims, err := h.Auth.Authenticate(tok); err == nil {
			_ = h.Auth.Logout(claims)
		}
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}
