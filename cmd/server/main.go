package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/travelogue/guideapi/internal/config"
	"github.com/travelogue/guideapi/internal/database"
	"github.com/travelogue/guideapi/internal/handlers"
	"github.com/travelogue/guideapi/internal/middleware"
	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/services"
	"github.com/travelogue/guideapi/internal/types"

	_ "github.com/travelogue/guideapi/docs/api" // Swagger docs
)

// @title Guide API
// @version 1.0.0
// @description Travel guide subscription service: catalog, entitlement, favorites and staff management
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/travelogue/guideapi

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name guide_session

func main() {
	// Load optional .env before reading configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed roles, starter categories and the bootstrap admin
	if err := database.Seed(db, cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	files := &services.FileStore{Root: cfg.UploadRoot}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		BodyLimit:             services.MaxPdfSize + (1 << 20),
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(middleware.RequestLogger(db))

	// Prometheus metrics
	prometheus := fiberprometheus.New("guideapi")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Stored covers are public; PDFs are only served through the
	// entitlement-gated download route.
	app.Static("/uploads/guides/covers", files.FullPath("guides/covers"))

	// Create handlers
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}
	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	guideHandler := &handlers.GuideHandler{DB: db, Files: files}
	favoriteHandler := &handlers.FavoriteHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	adminGuideHandler := &handlers.AdminGuideHandler{DB: db, Files: files}
	adminUserHandler := &handlers.AdminUserHandler{DB: db, Cfg: cfg}

	app.Get("/health", healthHandler.Health)

	// API routes under /api
	api := app.Group("/api")

	requireAuth := middleware.RequireAuth(db, cfg.JWTSecret)
	requireStaff := middleware.RequireRoles(db, cfg.JWTSecret,
		models.RoleAdmin, models.RoleSuperAdmin, models.RoleUploader)
	requireAdmin := middleware.RequireRoles(db, cfg.JWTSecret,
		models.RoleAdmin, models.RoleSuperAdmin)
	optionalAuth := middleware.OptionalAuth(db, cfg.JWTSecret)

	// Auth routes
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)

	// Public catalog (favorite flags for signed-in readers)
	api.Get("/guides", optionalAuth, guideHandler.ListGuides)
	api.Get("/guides/:slug", guideHandler.GetGuide)
	api.Get("/categories", optionalAuth, categoryHandler.ListCategories)
	api.Get("/categories/:slug", categoryHandler.GetCategory)

	// Reader routes (authentication required)
	api.Get("/guides/:slug/read", requireAuth, guideHandler.ReadGuide)
	api.Get("/guides/:slug/download", requireAuth, guideHandler.DownloadGuide)
	api.Get("/me/dashboard", requireAuth, authHandler.Dashboard)
	api.Get("/me/favorites", requireAuth, favoriteHandler.ListFavorites)
	api.Put("/me/favorites/:id", requireAuth, favoriteHandler.AddFavorite)
	api.Post("/me/favorites/:id", requireAuth, favoriteHandler.ToggleFavorite)
	api.Delete("/me/favorites/:id", requireAuth, favoriteHandler.RemoveFavorite)

	// Staff guide management
	admin := api.Group("/admin")
	admin.Get("/guides", requireStaff, adminGuideHandler.ListAllGuides)
	admin.Post("/guides", requireStaff, adminGuideHandler.CreateGuide)
	admin.Put("/guides/:id", requireStaff, adminGuideHandler.UpdateGuide)
	admin.Delete("/guides/:id", requireStaff, adminGuideHandler.DeleteGuide)
	admin.Post("/guides/:id/publish", requireStaff, adminGuideHandler.TogglePublish)

	// Category management
	admin.Post("/categories", requireAdmin, categoryHandler.CreateCategory)
	admin.Post("/categories/reorder", requireAdmin, categoryHandler.ReorderCategories)
	admin.Put("/categories/:id", requireAdmin, categoryHandler.UpdateCategory)
	admin.Delete("/categories/:id", requireAdmin, categoryHandler.DeleteCategory)

	// User management (admin only)
	admin.Get("/dashboard", requireAdmin, adminUserHandler.Dashboard)
	admin.Get("/users", requireAdmin, adminUserHandler.ListUsers)
	admin.Post("/users/employees", requireAdmin, adminUserHandler.CreateEmployee)
	admin.Get("/users/:id", requireAdmin, adminUserHandler.GetUser)
	admin.Delete("/users/:id", requireAdmin, adminUserHandler.DeleteUser)
	admin.Post("/users/:id/subscription", requireAdmin, adminUserHandler.ActivateSubscription)
	admin.Delete("/users/:id/subscription", requireAdmin, adminUserHandler.ExpireSubscription)
	admin.Post("/users/:id/active", requireAdmin, adminUserHandler.SetUserActive)

	// Audit (admin only)
	admin.Get("/activities", requireAdmin, adminUserHandler.ListActivities)
	admin.Get("/logs", requireAdmin, adminUserHandler.ListLogs)
	admin.Post("/maintenance/prune", requireAdmin, adminUserHandler.PruneAudit)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
