package services

import (
	"log"
	"time"

	"github.com/travelogue/guideapi/internal/models"
	"gorm.io/gorm"
)

// Log levels persisted to the log_entries table.
const (
	LevelInfo    = "Info"
	LevelWarning = "Warning"
	LevelError   = "Error"
)

// WriteLog appends a diagnostic record. A failed append is reported on the
// process log and swallowed: diagnostics must never fail the operation
// being logged.
func WriteLog(db *gorm.DB, level, message, exception, source string) {
	entry := models.LogEntry{
		Level:     level,
		Message:   message,
		Exception: exception,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("failed to persist log entry (%s %s): %v", level, message, err)
	}
}

// LogInfo appends an Info record.
func LogInfo(db *gorm.DB, message, source string) {
	WriteLog(db, LevelInfo, message, "", source)
}

// LogWarning appends a Warning record.
func LogWarning(db *gorm.DB, message, source string) {
	WriteLog(db, LevelWarning, message, "", source)
}

// LogError appends an Error record with exception text.
func LogError(db *gorm.DB, message, exception, source string) {
	WriteLog(db, LevelError, message, exception, source)
}

// RecentLogs returns the newest entries, optionally filtered by level.
func RecentLogs(db *gorm.DB, limit int, level string) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := db.Model(&models.LogEntry{})
	if level != "" {
		query = query.Where("level = ?", level)
	}
	var entries []models.LogEntry
	err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// LogsBetween returns entries in [from, to], optionally filtered by level.
func LogsBetween(db *gorm.DB, from, to time.Time, level string) ([]models.LogEntry, error) {
	query := db.Where("created_at >= ? AND created_at <= ?", from, to)
	if level != "" {
		query = query.Where("level = ?", level)
	}
	var entries []models.LogEntry
	err := query.Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// PruneLogs deletes entries older than keepDays days and reports how many
// rows went away.
func PruneLogs(db *gorm.DB, keepDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)
	res := db.Where("created_at < ?", cutoff).Delete(&models.LogEntry{})
	return res.RowsAffected, res.Error
}
