package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/demo"
	"github.com/mrlokans/bookshelf/internal/exporters"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/importers"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/settingsstore"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is syscall.SIGINT, kill (no param) sends syscall.SIGTERM.
	// SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path, database.ParseLogLevel(cfg.Database.LogLevel))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Audit events are written in the background; wait for them before
	// the database closes.
	auditService := audit.NewService(db.Audit)
	defer auditService.Wait()

	tracker := services.NewTracker(services.Stores{
		Users:           db.Users,
		Catalog:         db.Catalog,
		Libraries:       db.Libraries,
		Sessions:        db.Reading,
		Recommendations: db.Recommendations,
		Snapshot:        db,
	}, auditService)

	stats, err := tracker.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load tracker state: %v", err)
	}
	log.Printf("Loaded %d users and %d books", stats.Users, stats.Books)
	if stats.Skipped > 0 {
		log.Printf("WARNING: skipped %d stored rows that reference missing users or books", stats.Skipped)
	}

	if cfg.Catalog.SeedPath != "" {
		result, err := importers.NewPipeline(tracker).ImportFile(cfg.Catalog.SeedPath)
		if err != nil {
			log.Fatalf("Failed to import catalog %s: %v", cfg.Catalog.SeedPath, err)
		}
		log.Printf("Imported %d books from %s (%d rows skipped)", result.BooksImported, cfg.Catalog.SeedPath, result.RowsSkipped)
	}

	backups := settingsstore.New(db.Settings).Backups(cfg.Backup)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var queue scheduler.Enqueuer
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.FromSettings(cfg.Tasks)
		tasks.SetExportPolicy(taskCfg)

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewExportSnapshotQueue(tasks.ExportDeps{
				Source:   tracker,
				Exporter: exporters.NewSettingsFileExporter(backups.Dir),
				Auditor:  auditService,
				Status:   backups,
			}),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)
		queue = taskClient

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Scheduled backups follow the settings stored in the database, falling
	// back to the environment.
	backupScheduler := scheduler.NewBackupScheduler(scheduler.BackupDeps{
		Settings: backups,
		Queue:    queue,
		Source:   tracker,
		Auditor:  auditService,
	})
	if err := backupScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: Failed to start backup scheduler: %v", err)
	}

	auditCleanup := scheduler.NewAuditCleanupScheduler(cfg.Audit.RetentionDays, queue, auditService)
	if err := auditCleanup.Start(); err != nil {
		log.Printf("WARNING: Failed to start audit cleanup: %v", err)
	}

	// The auth service also hashes sign-up passwords, so it exists in every mode
	authService := auth.NewService(db.Users, cfg.Auth)

	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var authController *auth.AuthController

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		authController = auth.NewAuthController(authService, sessionManager, cfg.Auth, auditService)
	} else {
		log.Printf("Authentication mode: none (requests name their acting user)")
	}

	if cfg.Demo.Enabled {
		log.Printf("Demo mode enabled - write operations will be blocked")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Tracker:        tracker,
		Database:       db,
		AuditReader:    auditService,
		ExportAuditor:  auditService,
		AuthAuditor:    auditService,
		SettingsAudit:  auditService,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		AuthController: authController,
		AuthConfig:     cfg.Auth,
		BackupSettings: backups,
		BackupRunner:   backupScheduler,
		DemoMiddleware: demo.NewMiddleware(cfg.Demo.Enabled),
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		backupScheduler.Stop()
		auditCleanup.Stop()
		if authController != nil {
			authController.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
