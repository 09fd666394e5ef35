package models

import (
	"time"
)

// Role names known to the system. Role rows are seeded at startup and
// compared by name everywhere else.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleUploader   = "Uploader"
	RoleCustomer   = "Customer"
)

// AllRoles lists every seeded role name.
var AllRoles = []string{RoleSuperAdmin, RoleAdmin, RoleUploader, RoleCustomer}

// Role represents a named role assignable to users
type Role struct {
	RoleID    uint64 `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"uniqueIndex;size:50;not null"`
	CreatedAt time.Time
}

// User represents an account: readers (customers) and staff alike.
// Subscription state lives directly on the user row; whether a
// subscription is currently active is always derived from IsSubscribed
// plus SubscriptionEndDate, never stored.
type User struct {
	UserID           string `gorm:"type:char(36);primaryKey"`
	Email            string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string `gorm:"size:255;not null"`
	FullName         string `gorm:"size:100"`
	ProfileImagePath string `gorm:"size:500"`
	IsActive         bool   `gorm:"not null;default:true"`
	CreatedAt        time.Time
	LastLoginAt      *time.Time

	IsSubscribed          bool   `gorm:"not null;default:false"`
	SubscriptionPlan      string `gorm:"size:20"`
	SubscriptionStartDate *time.Time
	SubscriptionEndDate   *time.Time

	Roles      []Role         `gorm:"many2many:user_roles;joinForeignKey:user_id;joinReferences:role_id"`
	Guides     []Guide        `gorm:"foreignKey:CreatedByID;references:UserID"`
	Favorites  []Favorite     `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
	Activities []UserActivity `gorm:"foreignKey:UserID;references:UserID"`
}

// RoleNames returns the names of the user's loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Role
func (Role) TableName() string {
	return "roles"
}
