package middleware

import (
	"fmt"

	"eduvibe/internal/features/access"

	"github.com/gofiber/fiber/v2"
)

// RequireAccess guards a route with a permission-based access rule.
// It panics at registration for unmapped pairs and for ownership rules, which need
// the resource owner and are checked by the service instead.
func RequireAccess(action access.Action, resource access.Resource) fiber.Handler {
	rule := access.MustRule(action, resource)
	if rule.Ownership {
		panic(fmt.Sprintf("access rule %s:%s depends on ownership and cannot guard a route", resource, action))
	}

	return func(c *fiber.Ctx) error {
		actx, ok := AccessContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !access.CanPerform(actx, action, resource) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}

// RequireRole allows the request through only for the listed roles.
func RequireRole(roles ...access.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actx, ok := AccessContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !access.HasRole(actx.Role, roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: role not allowed",
			})
		}

		return c.Next()
	}
}
