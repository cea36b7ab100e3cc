package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply session middleware if enabled
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - requests name their acting user
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Apply demo mode middleware if enabled
	if cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.Handler())
	}

	// Create controllers with appropriate interfaces
	var (
		pinger  Pinger
		counter TrackerCounter
	)
	if cfg.Database != nil {
		pinger = cfg.Database
	}
	if cfg.Tracker != nil {
		counter = cfg.Tracker
	}
	health := NewHealthController(pinger, counter, cfg.Version)
	usersController := NewUsersController(cfg.Tracker, cfg.AuthService)
	booksController := NewBooksController(cfg.Tracker)
	readingController := NewReadingController(cfg.Tracker)
	librariesController := NewLibrariesController(cfg.Tracker)
	recommendationsController := NewRecommendationsController(cfg.Tracker)
	exportController := NewExportController(cfg.Tracker, cfg.ExportAuditor)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Auth endpoints
	if cfg.AuthConfig.Mode == config.AuthModeLocal && cfg.SessionManager != nil {
		authController := cfg.AuthController
		if authController == nil {
			authController = auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig, cfg.AuthAuditor)
		}
		authController.RegisterRoutes(api.Group("/auth"))
	}

	// Users and friends
	api.POST("/users", usersController.CreateUser)
	api.GET("/users", usersController.ListUsers)
	api.GET("/users/:username", usersController.GetUser)
	api.DELETE("/users/:username", usersController.DeleteUser)
	api.POST("/users/:username/friends/:friend", usersController.AddFriend)
	api.DELETE("/users/:username/friends/:friend", usersController.RemoveFriend)
	api.GET("/users/:username/friends", usersController.ListFriends)

	// Books and reviews
	api.GET("/books", booksController.ListBooks)
	api.GET("/books/:id", booksController.GetBook)
	api.POST("/books/:id/reviews", booksController.AddReview)
	api.POST("/books/:id/reviews/:reviewer/likes", booksController.LikeReview)
	api.DELETE("/books/:id/reviews/:reviewer/likes/:username", booksController.UnlikeReview)

	// Reading sessions
	api.POST("/reading/start", readingController.StartReading)
	api.POST("/reading/turn", readingController.TurnPage)
	api.POST("/reading/stop", readingController.StopReading)
	api.GET("/users/:username/reading", readingController.ListReading)

	// Libraries
	api.GET("/users/:username/libraries", librariesController.ListLibraries)
	api.POST("/users/:username/libraries", librariesController.CreateLibrary)
	api.GET("/libraries/:id", librariesController.GetLibrary)
	api.PATCH("/libraries/:id", librariesController.RenameLibrary)
	api.POST("/libraries/:id/shelves", librariesController.CreateShelf)
	api.POST("/libraries/:id/books", librariesController.AddBook)
	api.DELETE("/libraries/:id/books/:bookId", librariesController.RemoveBook)
	api.POST("/libraries/:id/books/:bookId/move", librariesController.MoveBook)

	// Recommendations
	api.POST("/recommend", recommendationsController.Recommend)
	api.GET("/users/:username/recommendations", recommendationsController.ListRecommendations)

	// Export
	api.GET("/export", exportController.Export)

	// Demo mode status endpoint (always available)
	api.GET("/demo/status", cfg.DemoMiddleware.Status)

	// Audit trail (if available)
	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	// Backup settings (if SettingsStore is available)
	if cfg.BackupSettings != nil {
		backupController := NewBackupSettingsController(cfg.BackupSettings, cfg.BackupRunner, cfg.SettingsAudit)
		api.GET("/settings/backup", backupController.GetSettings)
		api.PUT("/settings/backup", backupController.UpdateSettings)
		api.DELETE("/settings/backup", backupController.ResetSettings)
		api.POST("/settings/backup/run", backupController.RunNow)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
