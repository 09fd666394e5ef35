package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/access"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/utils"
	"gorm.io/gorm"
)

// GuideHandler handles the public catalog and reader content routes
type GuideHandler struct {
	DB    *gorm.DB
	Files *services.FileStore
}

// ListGuides handles GET /api/guides?category=...
// @Summary List published guides
// @Description Published guides, newest first, optionally filtered by category slug. Signed-in readers get favorite flags.
// @Tags Guides
// @Produce json
// @Param category query string false "Category slug, or 'all'"
// @Success 200 {array} services.GuideListItem
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /guides [get]
func (h *GuideHandler) ListGuides(c *fiber.Ctx) error {
	categorySlug := c.Query("category")
	userID := ""
	if user := currentUser(c); user != nil {
		userID = user.UserID
	}

	var (
		items []services.GuideListItem
		err   error
	)
	if categorySlug == "" || categorySlug == "all" {
		items, err = services.ListPublishedWithFavorites(h.DB, userID)
	} else {
		items, err = services.ListPublishedByCategory(h.DB, categorySlug, userID)
	}
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listGuides")
	}

	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// GetGuide handles GET /api/guides/:slug
// @Summary Get a published guide
// @Description Guide detail by slug. Unpublished guides are not found.
// @Tags Guides
// @Produce json
// @Param slug path string true "Guide slug"
// @Success 200 {object} services.GuideDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /guides/{slug} [get]
func (h *GuideHandler) GetGuide(c *fiber.Ctx) error {
	guideSlug := c.Params("slug")

	guide, err := services.GetGuideBySlug(h.DB, guideSlug)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Guide '%s' not found", guideSlug))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getGuide")
	}
	if !guide.IsPublished {
		return utils.NotFoundResponse(c, fmt.Sprintf("Guide '%s' not found", guideSlug))
	}

	return utils.SuccessResponse(c, services.ToDetail(guide), fiber.StatusOK)
}

// ReadGuide handles GET /api/guides/:slug/read
// @Summary Read a guide
// @Description Resolve entitlement and return the reader payload. Requires staff role, active subscription, or a free guide.
// @Tags Guides
// @Produce json
// @Param slug path string true "Guide slug"
// @Success 200 {object} services.GuideDetail
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /guides/{slug}/read [get]
func (h *GuideHandler) ReadGuide(c *fiber.Ctx) error {
	return h.serveContent(c, "Read Magazine", func(c *fiber.Ctx, guide *models.Guide) error {
		return utils.SuccessResponse(c, services.ToDetail(guide), fiber.StatusOK)
	})
}

// DownloadGuide handles GET /api/guides/:slug/download
// @Summary Download a guide PDF
// @Description Resolve entitlement and stream the PDF file.
// @Tags Guides
// @Produce application/pdf
// @Param slug path string true "Guide slug"
// @Success 200 {file} file
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /guides/{slug}/download [get]
func (h *GuideHandler) DownloadGuide(c *fiber.Ctx) error {
	return h.serveContent(c, "Download PDF", func(c *fiber.Ctx, guide *models.Guide) error {
		if guide.PdfPath == "" {
			return utils.NotFoundResponse(c, "Guide has no PDF")
		}
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", guide.Slug+".pdf"))
		return c.SendFile(h.Files.FullPath(guide.PdfPath))
	})
}

// serveContent runs the shared entitlement gate for read and download,
// records the activity, and hands the guide to the responder.
func (h *GuideHandler) serveContent(c *fiber.Ctx, action string, respond func(*fiber.Ctx, *models.Guide) error) error {
	guideSlug := c.Params("slug")
	user := currentUser(c)
	roles := currentRoles(c)

	guide, err := services.GetGuideBySlug(h.DB, guideSlug)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Guide '%s' not found", guideSlug))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "serveContent")
	}
	if !guide.IsPublished && !roles.IsStaff() {
		return utils.NotFoundResponse(c, fmt.Sprintf("Guide '%s' not found", guideSlug))
	}

	now := time.Now().UTC()
	if !access.CanAccess(user, guide, roles, now) {
		switch access.Explain(user, guide, roles, now) {
		case access.DenialInconsistent:
			return utils.DeniedResponse(c, "Something went wrong resolving your access. Please contact support.", "inconsistent")
		default:
			return utils.DeniedResponse(c, "An active subscription is required for this guide.", "purchase-required")
		}
	}

	ip, ua := clientMeta(c)
	meta := map[string]string{"slug": guide.Slug, "title": guide.Title}
	if err := services.RecordActivity(h.DB, user.UserID, action, &guide.GuideID, ip, ua, meta); err != nil {
		services.LogError(h.DB, "Failed to record activity", err.Error(), "GuideHandler")
	}

	return respond(c, guide)
}
