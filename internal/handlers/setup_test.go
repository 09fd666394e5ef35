package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travelogue/guideapi/internal/config"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/types"
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
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Category{},
		&models.Guide{},
		&models.Favorite{},
		&models.UserActivity{},
		&models.LogEntry{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	for _, name := range models.AllRoles {
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			t.Fatalf("Failed to seed role %s: %v", name, err)
		}
	}

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "handler-test-secret",
		SessionTTL: time.Hour,
	}
}

// newTestApp builds a Fiber app with the same error handler the server
// uses, so middleware errors render as JSON with the right status.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := err.Error()
			errorType := "unknown"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			if e, ok := err.(*types.CustomError); ok {
				code = e.Code
				message = e.Message
				errorType = e.Type
			}
			return c.Status(code).JSON(fiber.Map{
				"status":  code,
				"message": message,
				"ok":      false,
				"type":    errorType,
			})
		},
	})
}

func createUser(t *testing.T, db *gorm.DB, email string, roleNames ...string) *models.User {
	t.Helper()

	var roles []models.Role
	if len(roleNames) > 0 {
		if err := db.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
			t.Fatalf("Failed to load roles: %v", err)
		}
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
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func createGuide(t *testing.T, db *gorm.DB, title, slug string, price int64, published bool, createdByID string) *models.Guide {
	t.Helper()

	guide := &models.Guide{
		Slug:           slug,
		Title:          title,
		CoverImagePath: "/guides/covers/test.jpg",
		PdfPath:        "/guides/pdfs/test.pdf",
		CurrentPrice:   price,
		IsPublished:    published,
		CreatedByID:    createdByID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.Create(guide).Error; err != nil {
		t.Fatalf("Failed to create guide: %v", err)
	}
	return guide
}

// sessionCookie mints a session token for the user and wraps it in the
// cookie the middleware looks for.
func sessionCookie(t *testing.T, cfg *config.Config, userID string) *http.Cookie {
	t.Helper()

	token, err := services.MintSessionToken(cfg.JWTSecret, userID, cfg.SessionTTL, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to mint session token: %v", err)
	}
	return &http.Cookie{Name: "guide_session", Value: token}
}
