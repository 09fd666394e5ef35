package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/travelogue/guideapi/internal/handlers"
	"github.com/travelogue/guideapi/internal/middleware"
	"github.com/travelogue/guideapi/internal/models"
)

// TestAddFavorite tests the explicit add route: add, conflict on repeat,
// 404 for drafts
func TestAddFavorite(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	author := createUser(t, db, "author@example.com", models.RoleUploader)
	reader := createUser(t, db, "reader@example.com", models.RoleCustomer)
	published := createGuide(t, db, "Lisbon Weekender", "lisbon-weekender", 0, true, author.UserID)
	draft := createGuide(t, db, "Unfinished Draft", "unfinished-draft", 0, false, author.UserID)

	app := newTestApp()
	handler := &handlers.FavoriteHandler{DB: db}
	requireAuth := middleware.RequireAuth(db, cfg.JWTSecret)
	app.Put("/api/me/favorites/:id", requireAuth, handler.AddFavorite)
	app.Get("/api/me/favorites", requireAuth, handler.ListFavorites)
	app.Post("/api/me/favorites/:id", requireAuth, handler.ToggleFavorite)

	cookie := sessionCookie(t, cfg, reader.UserID)

	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/me/favorites/%d", published.GuideID), nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	// Adding again is a conflict, not a second row
	req = httptest.NewRequest("PUT", fmt.Sprintf("/api/me/favorites/%d", published.GuideID), nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Errorf("Expected status 409 for duplicate favorite, got %d", resp.StatusCode)
	}

	// Draft guides cannot be favorited
	req = httptest.NewRequest("PUT", fmt.Sprintf("/api/me/favorites/%d", draft.GuideID), nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 for draft guide, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/me/favorites", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var items []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 favorite, got %d", len(items))
	}

	// Toggle removes the add-route favorite
	req = httptest.NewRequest("POST", fmt.Sprintf("/api/me/favorites/%d", published.GuideID), nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["isFavorited"] != false {
		t.Errorf("Expected isFavorited=false after toggle, got %v", result["isFavorited"])
	}
}
