package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/access"
	"github.com/travelogue/guideapi/internal/models"
)

// currentUser returns the authenticated user placed in locals by the
// auth middleware, or nil for anonymous requests.
func currentUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals("user").(*models.User); ok {
		return u
	}
	return nil
}

// currentRoles returns the authenticated user's role set, empty for
// anonymous requests.
func currentRoles(c *fiber.Ctx) access.RoleSet {
	if rs, ok := c.Locals("roles").(access.RoleSet); ok {
		return rs
	}
	return access.RoleSet{}
}

// parseID extracts a positive numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}

// clientMeta extracts the request origin fields recorded with activities.
func clientMeta(c *fiber.Ctx) (ip, userAgent string) {
	ip = c.IP()
	userAgent = c.Get(fiber.HeaderUserAgent)
	if len(userAgent) > 500 {
		userAgent = userAgent[:500]
	}
	return ip, userAgent
}
