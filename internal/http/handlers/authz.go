package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"freshtrack/internal/domain"
	applog "freshtrack/internal/log"
	"freshtrack/internal/services"
)

const tokenCookie = "token"

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireUser authenticates API calls by bearer token.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearer(c)
		if tok == "" {
			return jsonError(c, fiber.StatusUnauthorized, "missing bearer token")
		}
		u, claims, err := auth.Authenticate(tok)
		if err != nil {
			applog.Security(c, "auth.token.reject", map[string]any{"reason": err.Error()})
			return jsonError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals("user", u)
		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", nil)
			return jsonError(c, fiber.StatusForbidden, "admin only")
		}
		return c.Next()
	}
}

// RequireWebUser authenticates dashboard pages by the token cookie; otherwise redirect to login.
func RequireWebUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Cookies(tokenCookie)
		if tok == "" {
			return c.Redirect("/login")
		}
		u, claims, err := auth.Authenticate(tok)
		if err != nil {
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		c.Locals("claims", claims)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func currentClaims(c *fiber.Ctx) *services.Claims {
	cl, _ := c.Locals("claims").(*services.Claims)
	return cl
}

// ownerID is the authenticated user's id; routes using it sit behind RequireUser.
func ownerID(c *fiber.Ctx) string {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return ""
}
