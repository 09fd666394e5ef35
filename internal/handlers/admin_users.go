package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/config"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/utils"
	"gorm.io/gorm"
)

// AdminUserHandler handles the admin dashboard and user management routes
type AdminUserHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Dashboard handles GET /api/admin/dashboard
// @Summary Admin dashboard
// @Description Aggregate user, subscription and guide counters plus recent activity
// @Tags AdminUsers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/dashboard [get]
func (h *AdminUserHandler) Dashboard(c *fiber.Ctx) error {
	now := time.Now().UTC()

	stats, err := services.DashboardStats(h.DB, now)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "adminDashboard")
	}
	recent, err := services.RecentActivities(h.DB, 20)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "adminDashboard")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"stats":            stats,
		"recentActivities": recent,
	})
}

// ListUsers handles GET /api/admin/users?filter=...
// @Summary List users
// @Description Users filtered by all, subscribed, non-subscribed or employees
// @Tags AdminUsers
// @Produce json
// @Param filter query string false "all | subscribed | non-subscribed | employees"
// @Success 200 {array} services.UserListItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /admin/users [get]
func (h *AdminUserHandler) ListUsers(c *fiber.Ctx) error {
	filter := c.Query("filter", "all")

	items, err := services.ListUsers(h.DB, filter, time.Now().UTC())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "admin.users.filter")
	}

	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// GetUser handles GET /api/admin/users/:id
// @Summary Get a user
// @Tags AdminUsers
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.UserListItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id} [get]
func (h *AdminUserHandler) GetUser(c *fiber.Ctx) error {
	item, err := services.GetUserDetail(h.DB, c.Params("id"), time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getUser")
	}
	return utils.SuccessResponse(c, item, fiber.StatusOK)
}

// ActivateSubscription handles POST /api/admin/users/:id/subscription
// @Summary Activate a subscription
// @Description Put the user on Monthly, Yearly or Lifetime. Unknown plans fall back to Monthly.
// @Tags AdminUsers
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body object true "Plan"
// @Success 200 {object} services.UserListItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id}/subscription [post]
func (h *AdminUserHandler) ActivateSubscription(c *fiber.Ctx) error {
	var body struct {
		Plan string `json:"plan"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "admin.users.validation.input")
	}

	now := time.Now().UTC()
	user, err := services.ActivateSubscription(h.DB, c.Params("id"), body.Plan, now)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "activateSubscription")
	}

	item, err := services.GetUserDetail(h.DB, user.UserID, now)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "activateSubscription")
	}
	return utils.SuccessResponse(c, item, fiber.StatusOK)
}

// ExpireSubscription handles DELETE /api/admin/users/:id/subscription
// @Summary Expire a subscription
// @Description End the user's subscription immediately. The end date is kept for display.
// @Tags AdminUsers
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.UserListItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id}/subscription [delete]
func (h *AdminUserHandler) ExpireSubscription(c *fiber.Ctx) error {
	now := time.Now().UTC()
	user, err := services.ExpireSubscription(h.DB, c.Params("id"), now)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "expireSubscription")
	}

	item, err := services.GetUserDetail(h.DB, user.UserID, now)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "expireSubscription")
	}
	return utils.SuccessResponse(c, item, fiber.StatusOK)
}

// CreateEmployee handles POST /api/admin/users/employees
// @Summary Create an employee account
// @Description Create a staff account (Admin, SuperAdmin or Uploader). Employees get a Lifetime subscription automatically.
// @Tags AdminUsers
// @Accept json
// @Produce json
// @Param body body object true "Employee fields"
// @Success 201 {object} services.UserListItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /admin/users/employees [post]
func (h *AdminUserHandler) CreateEmployee(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "admin.users.validation.input")
	}
	if body.Email == "" || body.Password == "" || body.Role == "" {
		return utils.ValidationErrorResponse(c, map[string]string{
			"email":    "email is required",
			"password": "password is required",
			"role":     "role is required",
		})
	}

	now := time.Now().UTC()
	user, err := services.CreateEmployee(h.DB, body.Email, body.Password, body.FullName, body.Role, now)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.ErrorResponse(c, "An account with this email already exists", fiber.StatusConflict, "admin.users.duplicate")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "createEmployee")
	}

	item, err := services.GetUserDetail(h.DB, user.UserID, now)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createEmployee")
	}
	return utils.SuccessResponse(c, item, fiber.StatusCreated)
}

// SetUserActive handles POST /api/admin/users/:id/active
// @Summary Activate or deactivate an account
// @Tags AdminUsers
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body object true "Active flag"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id}/active [post]
func (h *AdminUserHandler) SetUserActive(c *fiber.Ctx) error {
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "admin.users.validation.input")
	}

	if err := services.SetUserActive(h.DB, c.Params("id"), body.Active); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "setUserActive")
	}

	return utils.MutationSuccessResponse(c, "User updated", 1)
}

// DeleteUser handles DELETE /api/admin/users/:id
// @Summary Delete a user
// @Description Hard delete. Favorites cascade; audit records are retained.
// @Tags AdminUsers
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id} [delete]
func (h *AdminUserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := services.DeleteUser(h.DB, c.Params("id")); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteUser")
	}
	return utils.MutationSuccessResponse(c, "User deleted", 1)
}

// ListActivities handles GET /api/admin/activities
// @Summary List recent activities
// @Description Recent audit records, optionally scoped to a user
// @Tags AdminUsers
// @Produce json
// @Param user query string false "User ID"
// @Param limit query int false "Max records (default 50)"
// @Success 200 {array} services.ActivityItem
// @Router /admin/activities [get]
func (h *AdminUserHandler) ListActivities(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	var (
		items []services.ActivityItem
		err   error
	)
	if userID := c.Query("user"); userID != "" {
		items, err = services.UserActivities(h.DB, userID, limit)
	} else {
		items, err = services.RecentActivities(h.DB, limit)
	}
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listActivities")
	}

	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// ListLogs handles GET /api/admin/logs
// @Summary List recent logs
// @Tags AdminUsers
// @Produce json
// @Param level query string false "Minimum level filter"
// @Param limit query int false "Max records (default 100)"
// @Success 200 {array} models.LogEntry
// @Router /admin/logs [get]
func (h *AdminUserHandler) ListLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	level := c.Query("level")

	entries, err := services.RecentLogs(h.DB, limit, level)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listLogs")
	}

	return utils.SuccessResponse(c, entries, fiber.StatusOK)
}

// PruneAudit handles POST /api/admin/maintenance/prune
// @Summary Prune old audit records
// @Description Delete activities and logs older than the configured retention window
// @Tags AdminUsers
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /admin/maintenance/prune [post]
func (h *AdminUserHandler) PruneAudit(c *fiber.Ctx) error {
	activities, err := services.PruneActivities(h.DB, h.Cfg.RetentionDays)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "pruneAudit")
	}
	logs, err := services.PruneLogs(h.DB, h.Cfg.RetentionDays)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "pruneAudit")
	}

	return utils.MutationSuccessResponse(c, "Audit records pruned", activities+logs)
}
