package services

import (
	"errors"
	"fmt"

	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/slug"
	"github.com/travelogue/guideapi/internal/types"
	"gorm.io/gorm"
)

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name         string
	Description  string
	IconClass    string
	DisplayOrder int
	IsActive     bool
}

// CategoryOrder is one entry of a bulk display-order update. Ids arrive
// as JSON numbers or strings depending on the client form layer.
type CategoryOrder struct {
	CategoryID   types.FlexUint64 `json:"categoryId"`
	DisplayOrder int              `json:"displayOrder"`
}

// ListCategories returns categories in display order. With activeOnly the
// inactive ones are skipped.
func ListCategories(db *gorm.DB, activeOnly bool) ([]models.Category, error) {
	query := db.Model(&models.Category{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []models.Category
	err := query.Order("display_order ASC, name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryBySlug loads one category.
func GetCategoryBySlug(db *gorm.DB, categorySlug string) (*models.Category, error) {
	var cat models.Category
	err := db.Where("slug = ?", categorySlug).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// CategorySlugExists reports whether a category slug is taken, optionally
// excluding one category id.
func CategorySlugExists(db *gorm.DB, categorySlug string, excludeID uint64) (bool, error) {
	query := db.Model(&models.Category{}).Where("slug = ?", categorySlug)
	if excludeID != 0 {
		query = query.Where("category_id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// CreateCategory inserts a category with a unique slug derived from its name.
func CreateCategory(db *gorm.DB, in CategoryInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	finalSlug, err := slug.EnsureUnique(slug.Make(in.Name), func(candidate string) (bool, error) {
		return CategorySlugExists(db, candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	cat := models.Category{
		Name:         in.Name,
		Slug:         finalSlug,
		Description:  in.Description,
		IconClass:    in.IconClass,
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive,
	}
	if err := db.Create(&cat).Error; err != nil {
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("Category created: %s", cat.Name), "CategoryService")
	return &cat, nil
}

// UpdateCategory edits a category. The slug follows the name the same way
// guide slugs do: regenerated only when free.
func UpdateCategory(db *gorm.DB, id uint64, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := db.Where("category_id = ?", id).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cat.Name = in.Name
	cat.Description = in.Description
	cat.IconClass = in.IconClass
	cat.DisplayOrder = in.DisplayOrder
	cat.IsActive = in.IsActive

	newSlug := slug.Make(in.Name)
	if newSlug != cat.Slug {
		taken, err := CategorySlugExists(db, newSlug, id)
		if err != nil {
			return nil, err
		}
		if !taken {
			cat.Slug = newSlug
		}
	}

	if err := db.Save(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes a category. Guides keep their rows; the store
// clears their category reference (SET NULL).
func DeleteCategory(db *gorm.DB, id uint64) error {
	res := db.Where("category_id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	LogInfo(db, fmt.Sprintf("Category deleted: ID %d", id), "CategoryService")
	return nil
}

// ReorderCategories applies a bulk display-order update.
func ReorderCategories(db *gorm.DB, orders []CategoryOrder) (int64, error) {
	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&models.Category{}).
				Where("category_id = ?", o.CategoryID.Uint64()).
				Update("display_order", o.DisplayOrder)
			if res.Error != nil {
				return res.Error
			}
			affected += res.RowsAffected
		}
		return nil
	})
	return affected, err
}
