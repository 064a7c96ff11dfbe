package middleware

import (
	"quizcore/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that lets only the given roles through.
// It must run after JWTMiddleware.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User not found", nil)
		}

		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
