package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/utils"
	"gorm.io/gorm"
)

// FavoriteHandler handles reader favorite routes
type FavoriteHandler struct {
	DB *gorm.DB
}

// ListFavorites handles GET /api/me/favorites
// @Summary List favorites
// @Description The signed-in reader's favorited guides, most recently favorited first
// @Tags Favorites
// @Produce json
// @Success 200 {array} services.GuideListItem
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /me/favorites [get]
func (h *FavoriteHandler) ListFavorites(c *fiber.Ctx) error {
	user := currentUser(c)

	items, err := services.ListFavorites(h.DB, user.UserID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listFavorites")
	}

	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// AddFavorite handles PUT /api/me/favorites/:id
// @Summary Add a favorite
// @Description Favorite a published guide. Conflict when the guide is already favorited.
// @Tags Favorites
// @Produce json
// @Param id path int true "Guide ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /me/favorites/{id} [put]
func (h *FavoriteHandler) AddFavorite(c *fiber.Ctx) error {
	user := currentUser(c)

	guideID, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid guide id", fiber.StatusBadRequest, "favorites.validation.id")
	}

	if err := services.AddFavorite(h.DB, user.UserID, guideID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return utils.NotFoundResponse(c, "Guide not found")
		case errors.Is(err, services.ErrDuplicate):
			return utils.ErrorResponse(c, "Guide is already favorited", fiber.StatusConflict, "favorites.add.duplicate")
		default:
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addFavorite")
		}
	}

	ip, ua := clientMeta(c)
	_ = services.RecordActivity(h.DB, user.UserID, "Add Favorite", &guideID, ip, ua, nil)

	return utils.MutationSuccessResponse(c, "Favorite added", 1)
}

// ToggleFavorite handles POST /api/me/favorites/:id
// @Summary Toggle a favorite
// @Description Add the guide to favorites, or remove it when already favorited
// @Tags Favorites
// @Produce json
// @Param id path int true "Guide ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /me/favorites/{id} [post]
func (h *FavoriteHandler) ToggleFavorite(c *fiber.Ctx) error {
	user := currentUser(c)

	guideID, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid guide id", fiber.StatusBadRequest, "favorites.validation.id")
	}

	favorited, err := services.ToggleFavorite(h.DB, user.UserID, guideID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Guide not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "toggleFavorite")
	}

	ip, ua := clientMeta(c)
	action := "Remove Favorite"
	if favorited {
		action = "Add Favorite"
	}
	_ = services.RecordActivity(h.DB, user.UserID, action, &guideID, ip, ua, nil)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "Favorite toggled",
		"ok":          true,
		"isFavorited": favorited,
	})
}

// RemoveFavorite handles DELETE /api/me/favorites/:id
// @Summary Remove a favorite
// @Tags Favorites
// @Produce json
// @Param id path int true "Guide ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /me/favorites/{id} [delete]
func (h *FavoriteHandler) RemoveFavorite(c *fiber.Ctx) error {
	user := currentUser(c)

	guideID, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid guide id", fiber.StatusBadRequest, "favorites.validation.id")
	}

	if err := services.RemoveFavorite(h.DB, user.UserID, guideID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Favorite not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "removeFavorite")
	}

	return utils.MutationSuccessResponse(c, "Favorite removed", 1)
}
