package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/slug"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the full schema
// and the role catalog seeded.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Category{},
		&models.Guide{},
		&models.Favorite{},
		&models.UserActivity{},
		&models.LogEntry{},
	))

	for _, name := range models.AllRoles {
		require.NoError(t, db.Create(&models.Role{Name: name}).Error)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, roleNames ...string) *models.User {
	t.Helper()

	var roles []models.Role
	if len(roleNames) > 0 {
		require.NoError(t, db.Where("name IN ?", roleNames).Find(&roles).Error)
	}

	user := &models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: "x",
		FullName:     "Test " + email,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		Roles:        roles,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestGuide(t *testing.T, db *gorm.DB, title string, price int64, published bool, categoryID *uint64, createdByID string) *models.Guide {
	t.Helper()

	guide := &models.Guide{
		Slug:           slugify(t, db, title),
		Title:          title,
		CoverImagePath: "/guides/covers/test.jpg",
		PdfPath:        "/guides/pdfs/test.pdf",
		CategoryID:     categoryID,
		CurrentPrice:   price,
		IsPublished:    published,
		CreatedByID:    createdByID,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.Create(guide).Error)
	return guide
}

func slugify(t *testing.T, db *gorm.DB, title string) string {
	t.Helper()
	// Same derivation CreateGuide uses.
	s, err := slug.EnsureUnique(slug.Make(title), func(candidate string) (bool, error) {
		return GuideSlugExists(db, candidate, 0)
	})
	require.NoError(t, err)
	return s
}

func createTestCategory(t *testing.T, db *gorm.DB, name, slug string, order int) *models.Category {
	t.Helper()

	cat := &models.Category{
		Name:         name,
		Slug:         slug,
		IsActive:     true,
		DisplayOrder: order,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(cat).Error)
	return cat
}
