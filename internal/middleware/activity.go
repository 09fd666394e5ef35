package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/services"
	"gorm.io/gorm"
)

// RequestLogger records request-level audit data after the handler runs.
// Failures (status >= 400) are written to the log store; the request
// itself is never failed by logging problems.
func RequestLogger(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if ferr, ok := err.(*fiber.Error); ok {
			status = ferr.Code
		}

		if status >= fiber.StatusBadRequest {
			user := "anonymous"
			if u, ok := c.Locals("user").(*models.User); ok {
				user = u.Email
			}
			services.LogWarning(db,
				fmt.Sprintf("%s %s -> %d (user: %s, ip: %s)",
					c.Method(), c.OriginalURL(), status, user, c.IP()),
				"RequestLogger")
		}

		return err
	}
}
