package services

import (
	"errors"
	"strings"
	"time"

	"github.com/travelogue/guideapi/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// GuideListItem is the catalog read shape.
type GuideListItem struct {
	GuideID       uint64    `json:"guideId"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary,omitempty"`
	CoverImage    string    `json:"coverImage"`
	IsPublished   bool      `json:"isPublished"`
	CategoryID    *uint64   `json:"categoryId,omitempty"`
	CategoryName  string    `json:"categoryName,omitempty"`
	CategorySlug  string    `json:"categorySlug,omitempty"`
	CurrentPrice  int64     `json:"currentPrice"`
	OldPrice      *int64    `json:"oldPrice,omitempty"`
	IsFree        bool      `json:"isFree"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedByName string    `json:"createdByName"`
	IsFavorited   bool      `json:"isFavorited"`
}

// GuideDetail extends the list shape with reader fields.
type GuideDetail struct {
	GuideListItem
	PdfPath        string     `json:"pdfPath"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	CreatedByEmail string     `json:"createdByEmail"`
}

// ListGuides returns every guide, newest first. Admin use only.
func ListGuides(db *gorm.DB) ([]GuideListItem, error) {
	var guides []models.Guide
	err := db.Preload("Category").Preload("CreatedBy").
		Order("created_at DESC").
		Find(&guides).Error
	if err != nil {
		return nil, err
	}
	return toListItems(guides, nil), nil
}

// ListPublished returns the public catalog, newest first.
func ListPublished(db *gorm.DB) ([]GuideListItem, error) {
	return ListPublishedWithFavorites(db, "")
}

// ListPublishedWithFavorites returns the public catalog with the favorite
// flag set for the given user. An empty userID leaves all flags false.
func ListPublishedWithFavorites(db *gorm.DB, userID string) ([]GuideListItem, error) {
	return listPublished(db, "", userID)
}

// ListPublishedByCategory filters the public catalog by category slug.
// The slug "all" (or empty) means no filter.
func ListPublishedByCategory(db *gorm.DB, categorySlug, userID string) ([]GuideListItem, error) {
	return listPublished(db, categorySlug, userID)
}

func listPublished(db *gorm.DB, categorySlug, userID string) ([]GuideListItem, error) {
	query := db.Model(&models.Guide{}).
		Preload("Category").Preload("CreatedBy").
		Where("is_published = ?", true)

	// The publish-state index only pays off on MySQL; other dialects
	// reject the hint syntax.
	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_guides_published"))
	}

	if categorySlug != "" && !strings.EqualFold(categorySlug, "all") {
		query = query.Joins("JOIN categories ON categories.category_id = guides.category_id").
			Where("LOWER(categories.slug) = LOWER(?)", categorySlug)
	}

	var guides []models.Guide
	if err := query.Order("guides.created_at DESC").Find(&guides).Error; err != nil {
		return nil, err
	}

	var favorited map[uint64]struct{}
	if userID != "" {
		var err error
		favorited, err = favoritedGuideIDs(db, userID)
		if err != nil {
			return nil, err
		}
	}

	return toListItems(guides, favorited), nil
}

func favoritedGuideIDs(db *gorm.DB, userID string) (map[uint64]struct{}, error) {
	var ids []uint64
	err := db.Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("guide_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// GetGuideBySlug loads one guide with its relations. Returns ErrNotFound
// for an unknown slug.
func GetGuideBySlug(db *gorm.DB, guideSlug string) (*models.Guide, error) {
	var guide models.Guide
	err := db.Preload("Category").Preload("CreatedBy").
		Where("slug = ?", guideSlug).
		First(&guide).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &guide, nil
}

// GetGuideByID loads one guide with its relations by id.
func GetGuideByID(db *gorm.DB, id uint64) (*models.Guide, error) {
	var guide models.Guide
	err := db.Preload("Category").Preload("CreatedBy").
		Where("guide_id = ?", id).
		First(&guide).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &guide, nil
}

// GuideSlugExists reports whether a slug is taken, optionally excluding
// one guide id (for updates).
func GuideSlugExists(db *gorm.DB, guideSlug string, excludeID uint64) (bool, error) {
	query := db.Model(&models.Guide{}).Where("slug = ?", guideSlug)
	if excludeID != 0 {
		query = query.Where("guide_id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// ToDetail converts a loaded guide to its detail read shape.
func ToDetail(g *models.Guide) *GuideDetail {
	detail := GuideDetail{
		GuideListItem:  toListItem(g, nil),
		PdfPath:        g.PdfPath,
		UpdatedAt:      g.UpdatedAt,
		CreatedByEmail: "Unknown",
	}
	if g.CreatedBy != nil {
		detail.CreatedByEmail = g.CreatedBy.Email
	}
	return &detail
}

func toListItems(guides []models.Guide, favorited map[uint64]struct{}) []GuideListItem {
	items := make([]GuideListItem, 0, len(guides))
	for i := range guides {
		items = append(items, toListItem(&guides[i], favorited))
	}
	return items
}

func toListItem(g *models.Guide, favorited map[uint64]struct{}) GuideListItem {
	item := GuideListItem{
		GuideID:       g.GuideID,
		Slug:          g.Slug,
		Title:         g.Title,
		Summary:       g.Summary,
		CoverImage:    g.CoverImagePath,
		IsPublished:   g.IsPublished,
		CategoryID:    g.CategoryID,
		CurrentPrice:  g.CurrentPrice,
		OldPrice:      g.OldPrice,
		IsFree:        g.IsFree(),
		CreatedAt:     g.CreatedAt,
		CreatedByName: "Unknown",
	}
	if g.Category != nil {
		item.CategoryName = g.Category.Name
		item.CategorySlug = g.Category.Slug
	}
	if g.CreatedBy != nil {
		if g.CreatedBy.FullName != "" {
			item.CreatedByName = g.CreatedBy.FullName
		} else {
			item.CreatedByName = g.CreatedBy.Email
		}
	}
	if favorited != nil {
		_, item.IsFavorited = favorited[g.GuideID]
	}
	return item
}
