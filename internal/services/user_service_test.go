package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/subscription"
)

func TestActivateAndExpireSubscription(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	user := createTestUser(t, db, "reader@example.com", models.RoleCustomer)

	activated, err := ActivateSubscription(db, user.UserID, subscription.PlanYearly, now)
	require.NoError(t, err)
	assert.True(t, activated.IsSubscribed)
	assert.Equal(t, subscription.PlanYearly, activated.SubscriptionPlan)
	assert.True(t, subscription.HasActive(activated, now))

	// Persisted, not just in-memory
	reloaded, err := GetUserWithRoles(db, user.UserID)
	require.NoError(t, err)
	assert.True(t, subscription.HasActive(reloaded, now))

	expired, err := ExpireSubscription(db, user.UserID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, expired.IsSubscribed)
	require.NotNil(t, expired.SubscriptionEndDate)
	assert.False(t, subscription.HasActive(expired, now.Add(time.Hour)))

	_, err = ActivateSubscription(db, "missing-id", subscription.PlanMonthly, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEmployee(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	emp, err := CreateEmployee(db, "staff@example.com", "pw12345", "Staff One", models.RoleUploader, now)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUploader}, emp.RoleNames())

	// Employees carry an automatic lifetime subscription
	assert.Equal(t, subscription.PlanLifetime, emp.SubscriptionPlan)
	assert.True(t, subscription.HasActive(emp, now.AddDate(50, 0, 0)))

	// Customer is not an employee role
	_, err = CreateEmployee(db, "other@example.com", "pw", "X", models.RoleCustomer, now)
	assert.Error(t, err)

	// Duplicate email
	_, err = CreateEmployee(db, "staff@example.com", "pw", "X", models.RoleAdmin, now)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestListUsersFilters(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	createTestUser(t, db, "plain@example.com", models.RoleCustomer)
	active := createTestUser(t, db, "subscribed@example.com", models.RoleCustomer)
	_, err := ActivateSubscription(db, active.UserID, subscription.PlanMonthly, now)
	require.NoError(t, err)

	lapsed := createTestUser(t, db, "lapsed@example.com", models.RoleCustomer)
	_, err = ActivateSubscription(db, lapsed.UserID, subscription.PlanMonthly, now.AddDate(0, -2, 0))
	require.NoError(t, err)

	_, err = CreateEmployee(db, "staff@example.com", "pw12345", "Staff", models.RoleAdmin, now)
	require.NoError(t, err)

	all, err := ListUsers(db, "all", now)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	subscribed, err := ListUsers(db, "subscribed", now)
	require.NoError(t, err)
	emails := make([]string, 0, len(subscribed))
	for _, u := range subscribed {
		emails = append(emails, u.Email)
	}
	// Employee lifetime counts as subscribed; a lapsed plan does not
	assert.ElementsMatch(t, []string{"subscribed@example.com", "staff@example.com"}, emails)

	nonSubscribed, err := ListUsers(db, "non-subscribed", now)
	require.NoError(t, err)
	assert.Len(t, nonSubscribed, 2)

	employees, err := ListUsers(db, "employees", now)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "staff@example.com", employees[0].Email)

	_, err = ListUsers(db, "bogus", now)
	assert.Error(t, err)
}

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	author, err := CreateEmployee(db, "staff@example.com", "pw12345", "Staff", models.RoleUploader, now)
	require.NoError(t, err)
	reader := createTestUser(t, db, "reader@example.com", models.RoleCustomer)
	_, err = ActivateSubscription(db, reader.UserID, subscription.PlanMonthly, now)
	require.NoError(t, err)
	createTestUser(t, db, "plain@example.com", models.RoleCustomer)

	createTestGuide(t, db, "Paid Published", 500, true, nil, author.UserID)
	createTestGuide(t, db, "Free Published", 0, true, nil, author.UserID)
	createTestGuide(t, db, "Paid Draft", 900, false, nil, author.UserID)

	stats, err := DashboardStats(db, now)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.SubscribedUsers)
	assert.Equal(t, int64(1), stats.NonSubscribedUsers)
	assert.Equal(t, int64(1), stats.TotalEmployees)
	assert.Equal(t, int64(3), stats.TotalGuides)
	assert.Equal(t, int64(2), stats.PublishedGuides)
	assert.Equal(t, int64(1), stats.UnpublishedGuides)
	assert.Equal(t, int64(1), stats.FreeGuides)
	assert.Equal(t, int64(2), stats.PaidGuides)
}

func TestSetUserActiveAndDelete(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "reader@example.com", models.RoleCustomer)

	require.NoError(t, SetUserActive(db, user.UserID, false))
	got, err := GetUserWithRoles(db, user.UserID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, SetUserActive(db, "missing-id", true), ErrNotFound)

	require.NoError(t, DeleteUser(db, user.UserID))
	_, err = GetUserWithRoles(db, user.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeleteUser(db, user.UserID), ErrNotFound)
}

func TestGetUserDashboard(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	author := createTestUser(t, db, "editor@example.com", models.RoleUploader)
	reader := createTestUser(t, db, "reader@example.com", models.RoleCustomer)

	guide := createTestGuide(t, db, "Favorited", 0, true, nil, author.UserID)
	require.NoError(t, AddFavorite(db, reader.UserID, guide.GuideID))
	require.NoError(t, RecordActivity(db, reader.UserID, "Read Magazine", &guide.GuideID, "", "", nil))

	_, err := ActivateSubscription(db, reader.UserID, subscription.PlanMonthly, now)
	require.NoError(t, err)

	loaded, err := GetUserWithRoles(db, reader.UserID)
	require.NoError(t, err)
	dash, err := GetUserDashboard(db, loaded, now)
	require.NoError(t, err)

	assert.True(t, dash.HasActiveSubscription)
	assert.Equal(t, int64(1), dash.FavoriteCount)
	assert.NotEmpty(t, dash.RecentActivity)
	assert.Greater(t, dash.DaysUntilExpiry, 25)
}
