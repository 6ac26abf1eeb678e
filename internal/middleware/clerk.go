package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cv-checker/internal/services"
)

// ClerkAuth verifies the bearer token against the identity provider and
// stores the provider user id in the request context.
func ClerkAuth(clerkService *services.ClerkService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			logger.Warn("missing or malformed authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":       "Missing or invalid authorization header",
				"status_code": fiber.StatusUnauthorized,
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")

		clerkUserID, err := clerkService.VerifyToken(c.Context(), token)
		if err != nil {
			logger.Warn("token verification failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":       "Invalid token",
				"status_code": fiber.StatusUnauthorized,
			})
		}

		c.Locals("clerk_user_id", clerkUserID)
		return c.Next()
	}
}
