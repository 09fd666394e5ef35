package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/utils"
	"gorm.io/gorm"
)

// AdminGuideHandler handles staff guide management routes
type AdminGuideHandler struct {
	DB    *gorm.DB
	Files *services.FileStore
}

// ListAllGuides handles GET /api/admin/guides
// @Summary List all guides
// @Description Every guide including unpublished, newest first
// @Tags AdminGuides
// @Produce json
// @Success 200 {array} services.GuideListItem
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/guides [get]
func (h *AdminGuideHandler) ListAllGuides(c *fiber.Ctx) error {
	items, err := services.ListGuides(h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listAllGuides")
	}
	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// CreateGuide handles POST /api/admin/guides (multipart)
// @Summary Create a guide
// @Description Create a guide from multipart form fields plus cover image and PDF uploads
// @Tags AdminGuides
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param summary formData string false "Summary"
// @Param categoryId formData int false "Category ID"
// @Param currentPrice formData int false "Price in cents, 0 means free"
// @Param oldPrice formData int false "Previous price in cents"
// @Param isPublished formData bool false "Publish immediately"
// @Param cover formData file true "Cover image (jpg, jpeg, png, webp; max 5 MB)"
// @Param pdf formData file true "Guide PDF (max 50 MB)"
// @Success 201 {object} services.GuideDetail
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/guides [post]
func (h *AdminGuideHandler) CreateGuide(c *fiber.Ctx) error {
	in, fields := parseGuideForm(c)

	cover, err := formUpload(c, "cover")
	if err != nil {
		fields["cover"] = err.Error()
	}
	pdf, err := formUpload(c, "pdf")
	if err != nil {
		fields["pdf"] = err.Error()
	}
	if cover == nil {
		fields["cover"] = "cover image is required"
	}
	if pdf == nil {
		fields["pdf"] = "pdf file is required"
	}
	if len(fields) > 0 {
		return utils.ValidationErrorResponse(c, fields)
	}

	user := currentUser(c)
	guide, err := services.CreateGuide(h.DB, h.Files, in, cover, pdf, user.UserID)
	if err != nil {
		if vErr := validationFields(err); vErr != nil {
			return utils.ValidationErrorResponse(c, vErr)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createGuide")
	}

	ip, ua := clientMeta(c)
	_ = services.RecordActivity(h.DB, user.UserID, "Create Guide", &guide.GuideID, ip, ua,
		map[string]string{"slug": guide.Slug})

	return utils.SuccessResponse(c, services.ToDetail(guide), fiber.StatusCreated)
}

// UpdateGuide handles PUT /api/admin/guides/:id (multipart)
// @Summary Update a guide
// @Description Update guide fields. Cover and PDF uploads are optional; new files replace the old ones.
// @Tags AdminGuides
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Guide ID"
// @Param title formData string true "Title"
// @Param summary formData string false "Summary"
// @Param categoryId formData int false "Category ID"
// @Param currentPrice formData int false "Price in cents, 0 means free"
// @Param oldPrice formData int false "Previous price in cents"
// @Param isPublished formData bool false "Published"
// @Param cover formData file false "Replacement cover image"
// @Param pdf formData file false "Replacement PDF"
// @Success 200 {object} services.GuideDetail
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/guides/{id} [put]
func (h *AdminGuideHandler) UpdateGuide(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid guide id", fiber.StatusBadRequest, "guides.validation.id")
	}

	in, fields := parseGuideForm(c)

	cover, err := formUpload(c, "cover")
	if err != nil {
		fields["cover"] = err.Error()
	}
	pdf, err := formUpload(c, "pdf")
	if err != nil {
		fields["pdf"] = err.Error()
	}
	if len(fields) > 0 {
		return utils.ValidationErrorResponse(c, fields)
	}

	guide, err := services.UpdateGuide(h.DB, h.Files, id, in, cover, pdf)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Guide not found")
		}
		if vErr := validationFields(err); vErr != nil {
			return utils.ValidationErrorResponse(c, vErr)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateGuide")
	}

	user := currentUser(c)
	ip, ua := clientMeta(c)
	_ = services.RecordActivity(h.DB, user.UserID, "Update Guide", &guide.GuideID, ip, ua,
		map[string]string{"slug": guide.Slug})

	return utils.SuccessResponse(c, services.ToDetail(guide), fiber.StatusOK)
}

// DeleteGuide handles DELETE /api/admin/guides/:id
// @Summary Delete a guide
// @Description Remove a guide and its stored files
// @Tags AdminGuides
// @Produce json
// @Param id path int true "Guide ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/guides/{id} [delete]
func (h *AdminGuideHandler) DeleteGuide(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid guide id", fiber.StatusBadRequest, "guides.validation.id")
	}

	if err := services.DeleteGuide(h.DB, h.Files, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Guide not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteGuide")
	}

	user := currentUser(c)
	ip, ua := clientMeta(c)
	_ = services.RecordActivity(h.DB, user.UserID, "Delete Guide", &id, ip, ua, nil)

	return utils.MutationSuccessResponse(c, "Guide deleted", 1)
}

// TogglePublish handles POST /api/admin/guides/:id/publish
// @Summary Toggle guide publication
// @Tags AdminGuides
// @Produce json
// @Param id path int true "Guide ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/guides/{id}/publish [post]
func (h *AdminGuideHandler) TogglePublish(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid guide id", fiber.StatusBadRequest, "guides.validation.id")
	}

	published, err := services.TogglePublish(h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Guide not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "togglePublish")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "Publication toggled",
		"ok":          true,
		"isPublished": published,
	})
}

// parseGuideForm reads the multipart form fields into a GuideInput.
// Numeric parse failures surface as field messages.
func parseGuideForm(c *fiber.Ctx) (services.GuideInput, map[string]string) {
	fields := make(map[string]string)
	in := services.GuideInput{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Summary: strings.TrimSpace(c.FormValue("summary")),
	}

	if v := c.FormValue("categoryId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			fields["categoryId"] = "categoryId must be a number"
		} else {
			in.CategoryID = &id
		}
	}
	if v := c.FormValue("currentPrice"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fields["currentPrice"] = "currentPrice must be a number"
		} else {
			in.CurrentPrice = price
		}
	}
	if v := c.FormValue("oldPrice"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fields["oldPrice"] = "oldPrice must be a number"
		} else {
			in.OldPrice = &price
		}
	}
	in.IsPublished = c.FormValue("isPublished") == "true"

	for k, v := range in.Validate() {
		fields[k] = v
	}
	return in, fields
}

// formUpload buffers an optional multipart file. A missing part is
// (nil, nil); the services layer decides whether it was required.
func formUpload(c *fiber.Ctx, name string) (*services.Upload, error) {
	fileHeader, err := c.FormFile(name)
	if err != nil {
		return nil, nil
	}
	return bufferUpload(fileHeader)
}

func bufferUpload(fh *multipart.FileHeader) (*services.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// validationFields unwraps a services validation error into field
// messages, or nil when the error is not one.
func validationFields(err error) map[string]string {
	var v *services.ValidationError
	if errors.As(err, &v) {
		return v.Fields
	}
	return nil
}
