package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/travelogue/guideapi/internal/handlers"
	"github.com/travelogue/guideapi/internal/middleware"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/subscription"
)

// TestListGuidesPublishedOnly tests the GET /api/guides endpoint
func TestListGuidesPublishedOnly(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com", models.RoleUploader)
	createGuide(t, db, "Lisbon Weekender", "lisbon-weekender", 0, true, author.UserID)
	createGuide(t, db, "Alpine Passes", "alpine-passes", 1299, true, author.UserID)
	createGuide(t, db, "Unfinished Draft", "unfinished-draft", 0, false, author.UserID)

	app := newTestApp()
	handler := &handlers.GuideHandler{DB: db}
	app.Get("/api/guides", handler.ListGuides)

	req := httptest.NewRequest("GET", "/api/guides", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var items []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 published guides, got %d", len(items))
	}
	for _, item := range items {
		if item["slug"] == "unfinished-draft" {
			t.Error("Draft guide leaked into the public catalog")
		}
	}
}

// TestGetGuideNotFound tests 404 responses for missing and draft guides
func TestGetGuideNotFound(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@example.com", models.RoleUploader)
	createGuide(t, db, "Unfinished Draft", "unfinished-draft", 0, false, author.UserID)

	app := newTestApp()
	handler := &handlers.GuideHandler{DB: db}
	app.Get("/api/guides/:slug", handler.GetGuide)

	for _, slug := range []string{"nonexistent", "unfinished-draft"} {
		req := httptest.NewRequest("GET", "/api/guides/"+slug, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != 404 {
			t.Errorf("Expected status 404 for %s, got %d", slug, resp.StatusCode)
		}
	}
}

// TestReadGuideRequiresSession tests that reader routes reject anonymous requests
func TestReadGuideRequiresSession(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	author := createUser(t, db, "author@example.com", models.RoleUploader)
	createGuide(t, db, "Lisbon Weekender", "lisbon-weekender", 0, true, author.UserID)

	app := newTestApp()
	handler := &handlers.GuideHandler{DB: db}
	app.Get("/api/guides/:slug/read", middleware.RequireAuth(db, cfg.JWTSecret), handler.ReadGuide)

	req := httptest.NewRequest("GET", "/api/guides/lisbon-weekender/read", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

// TestReadGuideEntitlement tests the paid-content gate end to end
func TestReadGuideEntitlement(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	author := createUser(t, db, "author@example.com", models.RoleUploader)
	reader := createUser(t, db, "reader@example.com", models.RoleCustomer)
	createGuide(t, db, "Alpine Passes", "alpine-passes", 1299, true, author.UserID)
	createGuide(t, db, "Lisbon Weekender", "lisbon-weekender", 0, true, author.UserID)

	app := newTestApp()
	handler := &handlers.GuideHandler{DB: db}
	app.Get("/api/guides/:slug/read", middleware.RequireAuth(db, cfg.JWTSecret), handler.ReadGuide)

	cookie := sessionCookie(t, cfg, reader.UserID)

	// Paid guide without a subscription is denied
	req := httptest.NewRequest("GET", "/api/guides/alpine-passes/read", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("Expected status 403, got %d", resp.StatusCode)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["reason"] != "purchase-required" {
		t.Errorf("Expected reason=purchase-required, got %v", result["reason"])
	}

	// Free guide is readable without a subscription
	req = httptest.NewRequest("GET", "/api/guides/lisbon-weekender/read", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 for free guide, got %d", resp.StatusCode)
	}

	// Activating a subscription opens the paid guide
	subscription.Activate(reader, subscription.PlanMonthly, time.Now().UTC())
	if err := db.Save(reader).Error; err != nil {
		t.Fatalf("Failed to save subscription: %v", err)
	}

	req = httptest.NewRequest("GET", "/api/guides/alpine-passes/read", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 after subscribing, got %d", resp.StatusCode)
	}

	// Reads are recorded as activity
	var count int64
	db.Model(&models.UserActivity{}).Where("action = ?", "Read Magazine").Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 read activities, got %d", count)
	}
}

// TestStaffReadsDraftAndPaid tests that staff bypass publication and price
func TestStaffReadsDraftAndPaid(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	uploader := createUser(t, db, "uploader@example.com", models.RoleUploader)
	createGuide(t, db, "Unfinished Draft", "unfinished-draft", 1999, false, uploader.UserID)

	app := newTestApp()
	handler := &handlers.GuideHandler{DB: db}
	app.Get("/api/guides/:slug/read", middleware.RequireAuth(db, cfg.JWTSecret), handler.ReadGuide)

	req := httptest.NewRequest("GET", "/api/guides/unfinished-draft/read", nil)
	req.AddCookie(sessionCookie(t, cfg, uploader.UserID))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 for staff, got %d", resp.StatusCode)
	}
}

// TestListGuidesFavoriteFlags tests favorite marking for signed-in readers
func TestListGuidesFavoriteFlags(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	author := createUser(t, db, "author@example.com", models.RoleUploader)
	reader := createUser(t, db, "reader@example.com", models.RoleCustomer)
	fav := createGuide(t, db, "Lisbon Weekender", "lisbon-weekender", 0, true, author.UserID)
	createGuide(t, db, "Alpine Passes", "alpine-passes", 1299, true, author.UserID)

	if err := db.Create(&models.Favorite{
		UserID:    reader.UserID,
		GuideID:   fav.GuideID,
		CreatedAt: time.Now().UTC(),
	}).Error; err != nil {
		t.Fatalf("Failed to create favorite: %v", err)
	}

	app := newTestApp()
	handler := &handlers.GuideHandler{DB: db}
	app.Get("/api/guides", middleware.OptionalAuth(db, cfg.JWTSecret), handler.ListGuides)

	req := httptest.NewRequest("GET", "/api/guides", nil)
	req.AddCookie(sessionCookie(t, cfg, reader.UserID))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var items []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	flagged := map[string]bool{}
	for _, item := range items {
		flagged[item["slug"].(string)] = item["isFavorited"] == true
	}
	if !flagged["lisbon-weekender"] {
		t.Error("Expected lisbon-weekender to be flagged as favorited")
	}
	if flagged["alpine-passes"] {
		t.Error("Expected alpine-passes to not be favorited")
	}
}
