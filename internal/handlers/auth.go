package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/config"
	"github.com/travelogue/guideapi/internal/middleware"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles registration and session routes
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Register handles POST /api/auth/register
// @Summary Register a reader account
// @Description Create a Customer account with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentialsBody true "Registration fields"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}
	if body.Email == "" || body.Password == "" {
		return utils.ValidationErrorResponse(c, map[string]string{
			"email":    "email is required",
			"password": "password is required",
		})
	}

	user, err := services.Register(h.DB, body.Email, body.Password, body.FullName, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.ErrorResponse(c, "An account with this email already exists", fiber.StatusConflict, "auth.register.duplicate")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "register")
	}

	ip, ua := clientMeta(c)
	_ = services.RecordActivity(h.DB, user.UserID, "Register", nil, ip, ua, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Account created",
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"userId":    user.UserID,
	})
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Validate credentials and set the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentialsBody true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	now := time.Now().UTC()
	user, err := services.Authenticate(h.DB, body.Email, body.Password, now)
	if err != nil {
		if errors.Is(err, services.ErrAccountDisabled) {
			return utils.ErrorResponse(c, "Account is deactivated", fiber.StatusForbidden, "auth.login.disabled")
		}
		return utils.ErrorResponse(c, "Invalid email or password", fiber.StatusUnauthorized, "auth.login.credentials")
	}

	token, err := services.MintSessionToken(h.Cfg.JWTSecret, user.UserID, h.Cfg.SessionTTL, now)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "login")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  now.Add(h.Cfg.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	ip, ua := clientMeta(c)
	_ = services.RecordActivity(h.DB, user.UserID, "Login", nil, ip, ua, nil)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Logged in",
		"ok":        true,
		"timestamp": now.Format(time.RFC3339),
		"fullName":  user.FullName,
		"roles":     user.RoleNames(),
	})
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Logged out",
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Dashboard handles GET /api/me/dashboard
// @Summary Reader dashboard
// @Description Subscription status, favorite count and recent activity for the signed-in user
// @Tags Auth
// @Produce json
// @Success 200 {object} services.UserDashboard
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /me/dashboard [get]
func (h *AuthHandler) Dashboard(c *fiber.Ctx) error {
	user := currentUser(c)
	dash, err := services.GetUserDashboard(h.DB, user, time.Now().UTC())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "dashboard")
	}
	return utils.SuccessResponse(c, dash, fiber.StatusOK)
}
