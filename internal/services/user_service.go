package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/subscription"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserListItem is the admin read shape for users.
type UserListItem struct {
	UserID                string     `json:"userId"`
	FullName              string     `json:"fullName"`
	Email                 string     `json:"email"`
	IsActive              bool       `json:"isActive"`
	IsSubscribed          bool       `json:"isSubscribed"`
	SubscriptionPlan      string     `json:"subscriptionPlan,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
	HasActiveSubscription bool       `json:"hasActiveSubscription"`
	CreatedAt             time.Time  `json:"createdAt"`
	Roles                 []string   `json:"roles"`
}

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	SubscribedUsers     int64 `json:"subscribedUsers"`
	NonSubscribedUsers  int64 `json:"nonSubscribedUsers"`
	TotalEmployees      int64 `json:"totalEmployees"`
	TotalGuides         int64 `json:"totalGuides"`
	PublishedGuides     int64 `json:"publishedGuides"`
	UnpublishedGuides   int64 `json:"unpublishedGuides"`
	FreeGuides          int64 `json:"freeGuides"`
	PaidGuides          int64 `json:"paidGuides"`
}

// DashboardStats aggregates the admin dashboard counters.
func DashboardStats(db *gorm.DB, now time.Time) (*AdminStats, error) {
	stats := &AdminStats{}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Where("is_subscribed = ? AND subscription_end_date > ?", true, now).
		Count(&stats.SubscribedUsers).Error; err != nil {
		return nil, err
	}
	stats.NonSubscribedUsers = stats.TotalUsers - stats.SubscribedUsers

	if err := db.Model(&models.User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.user_id").
		Joins("JOIN roles ON roles.role_id = user_roles.role_id").
		Where("roles.name IN ?", []string{models.RoleAdmin, models.RoleSuperAdmin, models.RoleUploader}).
		Distinct("users.user_id").
		Count(&stats.TotalEmployees).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Guide{}).Count(&stats.TotalGuides).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Guide{}).Where("is_published = ?", true).Count(&stats.PublishedGuides).Error; err != nil {
		return nil, err
	}
	stats.UnpublishedGuides = stats.TotalGuides - stats.PublishedGuides

	if err := db.Model(&models.Guide{}).Where("current_price = 0").Count(&stats.FreeGuides).Error; err != nil {
		return nil, err
	}
	stats.PaidGuides = stats.TotalGuides - stats.FreeGuides

	return stats, nil
}

// ListUsers returns users for the admin list. Filters: all, subscribed,
// non-subscribed, employees.
func ListUsers(db *gorm.DB, filter string, now time.Time) ([]UserListItem, error) {
	query := db.Model(&models.User{}).Preload("Roles")

	switch filter {
	case "subscribed":
		query = query.Where("is_subscribed = ? AND subscription_end_date > ?", true, now)
	case "non-subscribed":
		query = query.Where("is_subscribed = ? OR subscription_end_date IS NULL OR subscription_end_date <= ?", false, now)
	case "employees":
		query = query.
			Joins("JOIN user_roles ON user_roles.user_id = users.user_id").
			Joins("JOIN roles ON roles.role_id = user_roles.role_id").
			Where("roles.name IN ?", []string{models.RoleAdmin, models.RoleSuperAdmin, models.RoleUploader}).
			Distinct("users.*")
	case "", "all":
		// no filter
	default:
		return nil, fmt.Errorf("unknown user filter: %s", filter)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	items := make([]UserListItem, 0, len(users))
	for i := range users {
		items = append(items, toUserListItem(&users[i], now))
	}
	return items, nil
}

func toUserListItem(u *models.User, now time.Time) UserListItem {
	return UserListItem{
		UserID:                u.UserID,
		FullName:              u.FullName,
		Email:                 u.Email,
		IsActive:              u.IsActive,
		IsSubscribed:          u.IsSubscribed,
		SubscriptionPlan:      u.SubscriptionPlan,
		SubscriptionEndDate:   u.SubscriptionEndDate,
		HasActiveSubscription: subscription.HasActive(u, now),
		CreatedAt:             u.CreatedAt,
		Roles:                 u.RoleNames(),
	}
}

// GetUserDetail loads one user for the admin view.
func GetUserDetail(db *gorm.DB, userID string, now time.Time) (*UserListItem, error) {
	user, err := GetUserWithRoles(db, userID)
	if err != nil {
		return nil, err
	}
	item := toUserListItem(user, now)
	return &item, nil
}

// ActivateSubscription puts a user on a plan. Two admins racing here is
// last-write-wins; the store offers no compensating lock.
func ActivateSubscription(db *gorm.DB, userID, plan string, now time.Time) (*models.User, error) {
	user, err := GetUserWithRoles(db, userID)
	if err != nil {
		return nil, err
	}

	subscription.Activate(user, plan, now)
	if err := db.Model(user).Updates(map[string]interface{}{
		"is_subscribed":           user.IsSubscribed,
		"subscription_plan":       user.SubscriptionPlan,
		"subscription_start_date": user.SubscriptionStartDate,
		"subscription_end_date":   user.SubscriptionEndDate,
	}).Error; err != nil {
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("Subscription activated for %s: %s", user.Email, user.SubscriptionPlan), "UserService")
	return user, nil
}

// ExpireSubscription ends a user's subscription now. The end date is kept
// for display, not cleared.
func ExpireSubscription(db *gorm.DB, userID string, now time.Time) (*models.User, error) {
	user, err := GetUserWithRoles(db, userID)
	if err != nil {
		return nil, err
	}

	subscription.Expire(user, now)
	if err := db.Model(user).Updates(map[string]interface{}{
		"is_subscribed":         user.IsSubscribed,
		"subscription_end_date": user.SubscriptionEndDate,
	}).Error; err != nil {
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("Subscription expired for %s", user.Email), "UserService")
	return user, nil
}

// CreateEmployee creates a staff account. Employees get an automatic
// Lifetime subscription.
func CreateEmployee(db *gorm.DB, email, password, fullName, roleName string, now time.Time) (*models.User, error) {
	switch roleName {
	case models.RoleAdmin, models.RoleSuperAdmin, models.RoleUploader:
	default:
		return nil, fmt.Errorf("invalid employee role: %s", roleName)
	}

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

	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		return nil, fmt.Errorf("role %s missing: %w", roleName, err)
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		IsActive:     true,
		CreatedAt:    now,
		Roles:        []models.Role{role},
	}
	subscription.Activate(&user, subscription.PlanLifetime, now)

	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	LogInfo(db, fmt.Sprintf("Employee created: %s with role %s", email, roleName), "UserService")
	return &user, nil
}

// SetUserActive enables or disables an account.
func SetUserActive(db *gorm.DB, userID string, active bool) error {
	res := db.Model(&models.User{}).Where("user_id = ?", userID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser hard-deletes an account. Favorites go with it (cascade);
// audit records are retained.
func DeleteUser(db *gorm.DB, userID string) error {
	res := db.Where("user_id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	LogInfo(db, fmt.Sprintf("User deleted: %s", userID), "UserService")
	return nil
}

// UserDashboard is the reader-facing summary.
type UserDashboard struct {
	FullName              string     `json:"fullName"`
	Email                 string     `json:"email"`
	IsSubscribed          bool       `json:"isSubscribed"`
	SubscriptionPlan      string     `json:"subscriptionPlan,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
	HasActiveSubscription bool       `json:"hasActiveSubscription"`
	DaysUntilExpiry       int        `json:"daysUntilExpiry"`
	FavoriteCount         int64      `json:"favoriteCount"`
	RecentActivity        []ActivityItem `json:"recentActivity"`
}

// GetUserDashboard builds the reader dashboard for a loaded user.
func GetUserDashboard(db *gorm.DB, user *models.User, now time.Time) (*UserDashboard, error) {
	var favCount int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ?", user.UserID).Count(&favCount).Error; err != nil {
		return nil, err
	}

	recent, err := UserActivities(db, user.UserID, 10)
	if err != nil {
		return nil, err
	}

	return &UserDashboard{
		FullName:              user.FullName,
		Email:                 user.Email,
		IsSubscribed:          user.IsSubscribed,
		SubscriptionPlan:      user.SubscriptionPlan,
		SubscriptionEndDate:   user.SubscriptionEndDate,
		HasActiveSubscription: subscription.HasActive(user, now),
		DaysUntilExpiry:       subscription.DaysUntilExpiry(user, now),
		FavoriteCount:         favCount,
		RecentActivity:        recent,
	}, nil
}
