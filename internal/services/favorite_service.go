package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/travelogue/guideapi/internal/models"
	"gorm.io/gorm"
)

// AddFavorite marks a guide as favorite for the user. The guide must exist
// and be published. Returns ErrDuplicate when the pair already exists; the
// unique index on (user_id, guide_id) backs this up under races.
func AddFavorite(db *gorm.DB, userID string, guideID uint64) error {
	var guide models.Guide
	err := db.Where("guide_id = ? AND is_published = ?", guideID, true).First(&guide).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var count int64
	if err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND guide_id = ?", userID, guideID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	fav := models.Favorite{
		UserID:    userID,
		GuideID:   guideID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&fav).Error; err != nil {
		return err
	}

	LogInfo(db, fmt.Sprintf("User %s added guide %s to favorites", userID, guide.Title), "FavoriteService")
	return nil
}

// RemoveFavorite drops the (user, guide) pair. Returns ErrNotFound when
// the pair does not exist.
func RemoveFavorite(db *gorm.DB, userID string, guideID uint64) error {
	res := db.Where("user_id = ? AND guide_id = ?", userID, guideID).Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	LogInfo(db, fmt.Sprintf("User %s removed guide %d from favorites", userID, guideID), "FavoriteService")
	return nil
}

// ToggleFavorite adds or removes the pair and reports whether the guide is
// favorited afterwards.
func ToggleFavorite(db *gorm.DB, userID string, guideID uint64) (bool, error) {
	var guide models.Guide
	err := db.Where("guide_id = ?", guideID).First(&guide).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	var fav models.Favorite
	err = db.Where("user_id = ? AND guide_id = ?", userID, guideID).First(&fav).Error
	switch {
	case err == nil:
		if err := db.Delete(&fav).Error; err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		fav = models.Favorite{UserID: userID, GuideID: guideID, CreatedAt: time.Now().UTC()}
		if err := db.Create(&fav).Error; err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// ListFavorites returns the user's favorited guides, published only,
// newest favorite first.
func ListFavorites(db *gorm.DB, userID string) ([]GuideListItem, error) {
	var favs []models.Favorite
	err := db.Preload("Guide.Category").Preload("Guide.CreatedBy").
		Joins("JOIN guides ON guides.guide_id = favorites.guide_id").
		Where("favorites.user_id = ? AND guides.is_published = ?", userID, true).
		Order("favorites.created_at DESC").
		Find(&favs).Error
	if err != nil {
		return nil, err
	}

	items := make([]GuideListItem, 0, len(favs))
	for _, f := range favs {
		if f.Guide == nil {
			continue
		}
		item := toListItem(f.Guide, nil)
		item.IsFavorited = true
		items = append(items, item)
	}
	return items, nil
}
