package database

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/travelogue/guideapi/data"
	"github.com/travelogue/guideapi/internal/config"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/subscription"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedCategory struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	IconClass    string `json:"iconClass"`
	DisplayOrder int    `json:"displayOrder"`
}

// Seed creates the role rows, the default categories and, when configured,
// the bootstrap SuperAdmin. All inserts are idempotent.
func Seed(db *gorm.DB, cfg *config.Config) error {
	for _, name := range models.AllRoles {
		role := models.Role{Name: name}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
	}

	var categories []seedCategory
	if err := json.Unmarshal(data.SeedCategories, &categories); err != nil {
		return fmt.Errorf("failed to parse seed categories: %w", err)
	}
	for _, sc := range categories {
		cat := models.Category{
			Name:         sc.Name,
			Slug:         sc.Slug,
			IconClass:    sc.IconClass,
			DisplayOrder: sc.DisplayOrder,
			IsActive:     true,
		}
		if err := db.Where(models.Category{Slug: sc.Slug}).FirstOrCreate(&cat).Error; err != nil {
			return fmt.Errorf("failed to seed category %s: %w", sc.Slug, err)
		}
	}

	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	return seedSuperAdmin(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func seedSuperAdmin(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleSuperAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("SuperAdmin role missing: %w", err)
	}

	now := time.Now().UTC()
	admin := models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Super Admin",
		IsActive:     true,
		CreatedAt:    now,
		Roles:        []models.Role{role},
	}
	subscription.Activate(&admin, subscription.PlanLifetime, now)

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create bootstrap SuperAdmin: %w", err)
	}
	log.Printf("Seeded bootstrap SuperAdmin: %s", email)
	return nil
}
