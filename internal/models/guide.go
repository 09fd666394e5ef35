package models

import (
	"time"
)

// Category groups guides for browsing. Deleting a category leaves its
// guides in place with a cleared category reference.
type Category struct {
	CategoryID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:100;not null"`
	Slug         string `gorm:"uniqueIndex;size:50;not null"`
	Description  string `gorm:"size:500"`
	IconClass    string `gorm:"size:50"`
	IsActive     bool   `gorm:"not null;default:true"`
	DisplayOrder int    `gorm:"not null;default:0"`
	CreatedAt    time.Time

	Guides []Guide `gorm:"foreignKey:CategoryID;references:CategoryID;constraint:OnDelete:SET NULL"`
}

// Guide is a purchasable/subscribable PDF content item ("magazine" in
// user-facing text). Prices are stored in the smallest currency unit;
// a guide is free exactly when CurrentPrice is zero.
type Guide struct {
	GuideID        uint64  `gorm:"primaryKey;autoIncrement"`
	Slug           string  `gorm:"uniqueIndex;size:250;not null"`
	Title          string  `gorm:"size:200;not null"`
	Summary        string  `gorm:"type:text"`
	CoverImagePath string  `gorm:"size:500;not null"`
	PdfPath        string  `gorm:"size:500;not null"`
	CategoryID     *uint64 `gorm:"index"`
	CurrentPrice   int64   `gorm:"not null;default:0"`
	OldPrice       *int64
	IsPublished    bool   `gorm:"not null;default:false;index:idx_guides_published"`
	CreatedByID    string `gorm:"type:char(36);not null"`
	CreatedAt      time.Time
	UpdatedAt      *time.Time

	Category  *Category `gorm:"foreignKey:CategoryID;references:CategoryID"`
	CreatedBy *User     `gorm:"foreignKey:CreatedByID;references:UserID"`
}

// IsFree reports whether the guide is free content.
func (g *Guide) IsFree() bool {
	return g.CurrentPrice == 0
}

// Favorite marks a (user, guide) pair. The pair is unique; rows are
// removed with their user or guide.
type Favorite struct {
	FavoriteID uint64 `gorm:"primaryKey;autoIncrement"`
	UserID     string `gorm:"type:char(36);not null;index:idx_favorite_user_guide,unique"`
	GuideID    uint64 `gorm:"not null;index:idx_favorite_user_guide,unique"`
	CreatedAt  time.Time

	User  *User  `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
	Guide *Guide `gorm:"foreignKey:GuideID;references:GuideID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// TableName overrides the table name for Guide
func (Guide) TableName() string {
	return "guides"
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}
