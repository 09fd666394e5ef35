package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/travelogue/guideapi/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register creates a reader account with the Customer role. The email must
// be unused.
func Register(db *gorm.DB, email, password, fullName string, now time.Time) (*models.User, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var customer models.Role
	if err := db.Where("name = ?", models.RoleCustomer).First(&customer).Error; err != nil {
		return nil, fmt.Errorf("Customer role missing: %w", err)
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		IsActive:     true,
		CreatedAt:    now,
		Roles:        []models.Role{customer},
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("New user registered: %s", user.Email), "AuthService")
	return &user, nil
}

// Authenticate verifies credentials and stamps the last login time.
// Disabled accounts cannot log in.
func Authenticate(db *gorm.DB, email, password string, now time.Time) (*models.User, error) {
	var user models.User
	err := db.Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	user.LastLoginAt = &now
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("User logged in: %s", user.Email), "AuthService")
	return &user, nil
}

// MintSessionToken issues a signed session token for the user.
func MintSessionToken(secret, userID string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken verifies a session token and returns the user id.
func ParseSessionToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.Subject, nil
}

// GetUserWithRoles loads a user and its role set.
func GetUserWithRoles(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.Preload("Roles").Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
