package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelogue/guideapi/internal/models"
)

func TestRecordAndQueryActivities(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)
	reader := createTestUser(t, db, "reader@example.com", models.RoleCustomer)
	guide := createTestGuide(t, db, "Audited Guide", 0, true, nil, author.UserID)

	require.NoError(t, RecordActivity(db, reader.UserID, "Read Magazine", &guide.GuideID, "10.0.0.1", "test-agent",
		map[string]string{"slug": guide.Slug, "title": guide.Title}))
	require.NoError(t, RecordActivity(db, reader.UserID, "Download PDF", &guide.GuideID, "10.0.0.1", "test-agent", nil))
	require.NoError(t, RecordActivity(db, author.UserID, "Login", nil, "10.0.0.2", "test-agent", nil))

	recent, err := RecentActivities(db, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	mine, err := UserActivities(db, reader.UserID, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Test reader@example.com", mine[0].UserName)
	assert.Equal(t, "Audited Guide", mine[0].GuideTitle)

	// Metadata survives the JSON column round trip; rows recorded
	// without it stay empty
	assert.Nil(t, mine[0].Metadata)
	assert.Equal(t, map[string]string{"slug": guide.Slug, "title": "Audited Guide"}, mine[1].Metadata)

	guideTrail, err := GuideActivities(db, guide.GuideID, 10)
	require.NoError(t, err)
	assert.Len(t, guideTrail, 2)

	reads, err := CountActivitiesByAction(db, "Read Magazine", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reads)
}

func TestPruneActivitiesRetention(t *testing.T) {
	db := setupTestDB(t)
	reader := createTestUser(t, db, "reader@example.com", models.RoleCustomer)

	require.NoError(t, RecordActivity(db, reader.UserID, "Login", nil, "", "", nil))

	// Back-date one record beyond the retention window
	old := models.UserActivity{
		UserID:    reader.UserID,
		Action:    "Login",
		Timestamp: time.Now().UTC().AddDate(0, 0, -45),
	}
	require.NoError(t, db.Create(&old).Error)

	removed, err := PruneActivities(db, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := RecentActivities(db, 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestLogLevelsAndPrune(t *testing.T) {
	db := setupTestDB(t)

	LogInfo(db, "service started", "Test")
	LogWarning(db, "slow query", "Test")
	LogError(db, "write failed", "disk full", "Test")

	all, err := RecentLogs(db, 10, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	errs, err := RecentLogs(db, 10, LevelError)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "write failed", errs[0].Message)
	assert.Equal(t, "disk full", errs[0].Exception)

	// Back-date an entry past retention
	old := models.LogEntry{Level: LevelInfo, Message: "ancient", CreatedAt: time.Now().UTC().AddDate(0, 0, -90)}
	require.NoError(t, db.Create(&old).Error)

	removed, err := PruneLogs(db, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestLogsBetween(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	LogInfo(db, "inside window", "Test")
	old := models.LogEntry{Level: LevelInfo, Message: "outside window", CreatedAt: now.AddDate(0, 0, -10)}
	require.NoError(t, db.Create(&old).Error)

	entries, err := LogsBetween(db, now.Add(-time.Hour), now.Add(time.Hour), "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "inside window", entries[0].Message)
}
