package services

import (
	"encoding/json"
	"time"

	"github.com/travelogue/guideapi/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityItem is the read shape for the audit trail.
type ActivityItem struct {
	ActivityID uint64            `json:"activityId"`
	UserName   string            `json:"userName"`
	Action     string            `json:"action"`
	GuideTitle string            `json:"guideTitle,omitempty"`
	IPAddress  string            `json:"ipAddress,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// RecordActivity appends an audit record. Append-only: nothing ever
// updates these rows. meta carries optional action context (slug,
// route, plan) stored as a JSON column; nil is fine.
func RecordActivity(db *gorm.DB, userID, action string, guideID *uint64, ip, userAgent string, meta map[string]string) error {
	activity := models.UserActivity{
		UserID:    userID,
		Action:    action,
		GuideID:   guideID,
		IPAddress: ip,
		UserAgent: userAgent,
		Timestamp: time.Now().UTC(),
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		activity.Metadata = models.JSON{JSON: datatypes.JSON(raw)}
	}
	return db.Create(&activity).Error
}

// RecentActivities returns the newest activity across all users.
func RecentActivities(db *gorm.DB, limit int) ([]ActivityItem, error) {
	return queryActivities(db, limit, nil)
}

// UserActivities returns the newest activity for one user.
func UserActivities(db *gorm.DB, userID string, limit int) ([]ActivityItem, error) {
	return queryActivities(db, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_activities.user_id = ?", userID)
	})
}

// GuideActivities returns the newest activity touching one guide.
func GuideActivities(db *gorm.DB, guideID uint64, limit int) ([]ActivityItem, error) {
	return queryActivities(db, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_activities.guide_id = ?", guideID)
	})
}

func queryActivities(db *gorm.DB, limit int, scope func(*gorm.DB) *gorm.DB) ([]ActivityItem, error) {
	if limit <= 0 {
		limit = 50
	}
	query := db.Model(&models.UserActivity{}).
		Preload("User").
		Preload("Guide").
		Order("timestamp DESC").
		Limit(limit)
	if scope != nil {
		query = scope(query)
	}

	var rows []models.UserActivity
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(rows))
	for _, a := range rows {
		item := ActivityItem{
			ActivityID: a.ActivityID,
			UserName:   "Unknown",
			Action:     a.Action,
			IPAddress:  a.IPAddress,
			Timestamp:  a.Timestamp,
		}
		if a.User != nil {
			if a.User.FullName != "" {
				item.UserName = a.User.FullName
			} else {
				item.UserName = a.User.Email
			}
		}
		if a.Guide != nil {
			item.GuideTitle = a.Guide.Title
		}
		if len(a.Metadata.JSON) > 0 {
			// Best effort: malformed rows keep a nil map
			_ = json.Unmarshal(a.Metadata.JSON, &item.Metadata)
		}
		items = append(items, item)
	}
	return items, nil
}

// CountActivitiesByAction counts records for one action, optionally only
// since a point in time.
func CountActivitiesByAction(db *gorm.DB, action string, since *time.Time) (int64, error) {
	query := db.Model(&models.UserActivity{}).Where("action = ?", action)
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// PruneActivities deletes audit records older than keepDays days. This is
// the only delete path for the audit trail.
func PruneActivities(db *gorm.DB, keepDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)
	res := db.Where("timestamp < ?", cutoff).Delete(&models.UserActivity{})
	return res.RowsAffected, res.Error
}
