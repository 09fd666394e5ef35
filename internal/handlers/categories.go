package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/types"
	"github.com/travelogue/guideapi/internal/utils"
	"gorm.io/gorm"
)

// CategoryHandler handles category routes, public listing plus admin
// management.
type CategoryHandler struct {
	DB *gorm.DB
}

// ListCategories handles GET /api/categories
// @Summary List categories
// @Description Active categories in display order
// @Tags Categories
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	// Staff see inactive categories too
	activeOnly := !currentRoles(c).IsStaff()

	categories, err := services.ListCategories(h.DB, activeOnly)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listCategories")
	}

	return utils.SuccessResponse(c, categories, fiber.StatusOK)
}

// GetCategory handles GET /api/categories/:slug
// @Summary Get a category
// @Tags Categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} models.Category
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/{slug} [get]
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	categorySlug := c.Params("slug")

	cat, err := services.GetCategoryBySlug(h.DB, categorySlug)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Category '%s' not found", categorySlug))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getCategory")
	}

	return utils.SuccessResponse(c, cat, fiber.StatusOK)
}

type categoryBody struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	IconClass    string `json:"iconClass"`
	DisplayOrder int    `json:"displayOrder"`
	IsActive     bool   `json:"isActive"`
}

func (b *categoryBody) toInput() services.CategoryInput {
	return services.CategoryInput{
		Name:         b.Name,
		Description:  b.Description,
		IconClass:    b.IconClass,
		DisplayOrder: b.DisplayOrder,
		IsActive:     b.IsActive,
	}
}

// CreateCategory handles POST /api/admin/categories
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param body body categoryBody true "Category fields"
// @Success 201 {object} models.Category
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/categories [post]
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var body categoryBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "categories.validation.input")
	}
	if body.Name == "" {
		return utils.ValidationErrorResponse(c, map[string]string{"name": "name is required"})
	}

	cat, err := services.CreateCategory(h.DB, body.toInput())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createCategory")
	}

	return utils.SuccessResponse(c, cat, fiber.StatusCreated)
}

// UpdateCategory handles PUT /api/admin/categories/:id
// @Summary Update a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param body body categoryBody true "Category fields"
// @Success 200 {object} models.Category
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid category id", fiber.StatusBadRequest, "categories.validation.id")
	}

	var body categoryBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "categories.validation.input")
	}
	if body.Name == "" {
		return utils.ValidationErrorResponse(c, map[string]string{"name": "name is required"})
	}

	cat, err := services.UpdateCategory(h.DB, id, body.toInput())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Category not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateCategory")
	}

	return utils.SuccessResponse(c, cat, fiber.StatusOK)
}

// DeleteCategory handles DELETE /api/admin/categories/:id
// @Summary Delete a category
// @Description Guides in the category are kept and become uncategorized
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid category id", fiber.StatusBadRequest, "categories.validation.id")
	}

	if err := services.DeleteCategory(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Category not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteCategory")
	}

	return utils.MutationSuccessResponse(c, "Category deleted", 1)
}

// ReorderCategories handles POST /api/admin/categories/reorder
// @Summary Reorder categories
// @Description Bulk update of display order. Accepts a single entry or an array.
// @Tags Categories
// @Accept json
// @Produce json
// @Param body body []services.CategoryOrder true "New display orders"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /admin/categories/reorder [post]
func (h *CategoryHandler) ReorderCategories(c *fiber.Ctx) error {
	var body struct {
		Orders types.FlexList[services.CategoryOrder] `json:"orders"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "categories.validation.input")
	}
	if len(body.Orders) == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "categories.validation.input")
	}

	affected, err := services.ReorderCategories(h.DB, body.Orders.Slice())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "reorderCategories")
	}

	return utils.MutationSuccessResponse(c, "Categories reordered", affected)
}
