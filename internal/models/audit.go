package models

import (
	"time"
)

// UserActivity is an append-only audit record of a user action. Rows are
// never updated; the only delete path is age-based retention pruning.
type UserActivity struct {
	ActivityID uint64    `gorm:"primaryKey;autoIncrement"`
	UserID     string    `gorm:"type:char(36);not null;index"`
	Action     string    `gorm:"size:100;not null"`
	GuideID    *uint64   `gorm:"index"`
	IPAddress  string    `gorm:"size:45"`
	UserAgent  string    `gorm:"size:500"`
	Metadata   JSON      `gorm:"type:json"`
	Timestamp  time.Time `gorm:"not null;index"`

	User  *User  `gorm:"foreignKey:UserID;references:UserID"`
	Guide *Guide `gorm:"foreignKey:GuideID;references:GuideID"`
}

// LogEntry is an append-only diagnostic record persisted alongside the
// domain data, pruned only by age.
type LogEntry struct {
	LogID     uint64    `gorm:"primaryKey;autoIncrement"`
	Level     string    `gorm:"size:50;not null"`
	Message   string    `gorm:"type:text;not null"`
	Exception string    `gorm:"type:text"`
	Source    string    `gorm:"size:200"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName overrides the table name for UserActivity
func (UserActivity) TableName() string {
	return "user_activities"
}

// TableName overrides the table name for LogEntry
func (LogEntry) TableName() string {
	return "log_entries"
}
