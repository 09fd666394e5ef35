package services

import (
	"fmt"
	"time"

	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/slug"
	"gorm.io/gorm"
)

// GuideInput carries the writable guide fields.
type GuideInput struct {
	Title        string
	Summary      string
	CategoryID   *uint64
	CurrentPrice int64
	OldPrice     *int64
	IsPublished  bool
}

// Validate checks the writable fields, returning field-level messages.
func (in *GuideInput) Validate() map[string]string {
	fields := make(map[string]string)
	if in.Title == "" {
		fields["title"] = "title is required"
	}
	if len(in.Title) > 200 {
		fields["title"] = "title must be at most 200 characters"
	}
	if in.CurrentPrice < 0 {
		fields["currentPrice"] = "price must not be negative"
	}
	if in.OldPrice != nil && *in.OldPrice < 0 {
		fields["oldPrice"] = "price must not be negative"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// CreateGuide uploads both files, derives a unique slug and inserts the
// guide. Failures are recorded on the persistent log before returning.
func CreateGuide(db *gorm.DB, files *FileStore, in GuideInput, cover, pdf *Upload, createdByID string) (*models.Guide, error) {
	coverPath, err := files.SaveCover(db, cover)
	if err != nil {
		return nil, err
	}
	pdfPath, err := files.SavePdf(db, pdf)
	if err != nil {
		return nil, err
	}

	finalSlug, err := slug.EnsureUnique(slug.Make(in.Title), func(candidate string) (bool, error) {
		return GuideSlugExists(db, candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	guide := models.Guide{
		Slug:           finalSlug,
		Title:          in.Title,
		Summary:        in.Summary,
		CoverImagePath: coverPath,
		PdfPath:        pdfPath,
		CategoryID:     in.CategoryID,
		CurrentPrice:   in.CurrentPrice,
		OldPrice:       in.OldPrice,
		IsPublished:    in.IsPublished,
		CreatedByID:    createdByID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := db.Create(&guide).Error; err != nil {
		LogError(db, fmt.Sprintf("Error creating guide: %s", in.Title), err.Error(), "GuideService")
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("Guide created: %s (ID: %d)", guide.Title, guide.GuideID), "GuideService")
	return &guide, nil
}

// UpdateGuide edits a guide. New uploads replace the stored files (the old
// ones are deleted best-effort). The slug is regenerated only when the
// title changed and the new slug is free.
func UpdateGuide(db *gorm.DB, files *FileStore, id uint64, in GuideInput, cover, pdf *Upload) (*models.Guide, error) {
	var guide models.Guide
	if err := db.Where("guide_id = ?", id).First(&guide).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if cover != nil {
		files.Delete(db, guide.CoverImagePath)
		coverPath, err := files.SaveCover(db, cover)
		if err != nil {
			return nil, err
		}
		guide.CoverImagePath = coverPath
	}
	if pdf != nil {
		files.Delete(db, guide.PdfPath)
		pdfPath, err := files.SavePdf(db, pdf)
		if err != nil {
			return nil, err
		}
		guide.PdfPath = pdfPath
	}

	guide.Title = in.Title
	guide.Summary = in.Summary
	guide.CategoryID = in.CategoryID
	guide.CurrentPrice = in.CurrentPrice
	guide.OldPrice = in.OldPrice
	guide.IsPublished = in.IsPublished
	now := time.Now().UTC()
	guide.UpdatedAt = &now

	newSlug := slug.Make(in.Title)
	if newSlug != guide.Slug {
		taken, err := GuideSlugExists(db, newSlug, id)
		if err != nil {
			return nil, err
		}
		if !taken {
			guide.Slug = newSlug
		}
	}

	if err := db.Save(&guide).Error; err != nil {
		LogError(db, fmt.Sprintf("Error updating guide ID: %d", id), err.Error(), "GuideService")
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("Guide updated: %s (ID: %d)", guide.Title, guide.GuideID), "GuideService")
	return &guide, nil
}

// DeleteGuide removes a guide and its stored files. File deletion is
// best-effort; the row delete cascades to favorites.
func DeleteGuide(db *gorm.DB, files *FileStore, id uint64) error {
	var guide models.Guide
	if err := db.Where("guide_id = ?", id).First(&guide).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	files.Delete(db, guide.CoverImagePath)
	files.Delete(db, guide.PdfPath)

	if err := db.Delete(&guide).Error; err != nil {
		LogError(db, fmt.Sprintf("Error deleting guide ID: %d", id), err.Error(), "GuideService")
		return err
	}

	LogInfo(db, fmt.Sprintf("Guide deleted: %s (ID: %d)", guide.Title, guide.GuideID), "GuideService")
	return nil
}

// TogglePublish flips the publish flag and returns the new state.
func TogglePublish(db *gorm.DB, id uint64) (bool, error) {
	var guide models.Guide
	if err := db.Where("guide_id = ?", id).First(&guide).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, ErrNotFound
		}
		return false, err
	}

	guide.IsPublished = !guide.IsPublished
	now := time.Now().UTC()
	guide.UpdatedAt = &now

	if err := db.Save(&guide).Error; err != nil {
		return false, err
	}

	LogInfo(db, fmt.Sprintf("Guide publish status toggled: %s (ID: %d), Published: %t",
		guide.Title, guide.GuideID, guide.IsPublished), "GuideService")
	return guide.IsPublished, nil
}
