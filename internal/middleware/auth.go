package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/access"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/types"
	"gorm.io/gorm"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "guide_session"

// RequireAuth validates the session cookie and loads the user into
// request locals.
func RequireAuth(db *gorm.DB, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, db, jwtSecret, nil, "guides.authorization.user")
	}
}

// RequireRoles validates the session cookie and requires at least one
// of the given roles.
func RequireRoles(db *gorm.DB, jwtSecret string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, db, jwtSecret, roles, "guides.authorization.role")
	}
}

// OptionalAuth loads the user when a valid session cookie is present,
// but lets anonymous requests through. Catalog routes use it to mark
// favorites for signed-in readers.
func OptionalAuth(db *gorm.DB, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := c.Cookies(SessionCookie)
		if session == "" {
			return c.Next()
		}
		userID, err := services.ParseSessionToken(jwtSecret, session)
		if err != nil {
			return c.Next()
		}
		user, err := services.GetUserWithRoles(db, userID)
		if err != nil || !user.IsActive {
			return c.Next()
		}
		c.Locals("user", user)
		c.Locals("roles", access.NewRoleSet(user.RoleNames()...))
		return c.Next()
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, db *gorm.DB, jwtSecret string, roles []string, errorType string) error {
	// Get session cookie
	session := c.Cookies(SessionCookie)
	if session == "" {
		return types.NewError(fiber.StatusUnauthorized, errorType,
			"Session cookie %q not found", SessionCookie)
	}

	// Validate session token
	userID, err := services.ParseSessionToken(jwtSecret, session)
	if err != nil {
		return types.NewError(fiber.StatusUnauthorized, errorType,
			"Invalid session: %v", err)
	}

	user, err := services.GetUserWithRoles(db, userID)
	if err != nil {
		return types.NewError(fiber.StatusUnauthorized, errorType,
			"Session user no longer exists")
	}
	if !user.IsActive {
		return types.NewError(fiber.StatusForbidden, errorType,
			"Account is deactivated")
	}

	roleSet := access.NewRoleSet(user.RoleNames()...)
	if len(roles) > 0 && !roleSet.HasAny(roles...) {
		return types.NewError(fiber.StatusForbidden, errorType,
			"Insufficient role for this resource")
	}

	// Set user data in context
	c.Locals("user", user)
	c.Locals("roles", roleSet)

	return c.Next()
}
