package http

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/demo"
	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/services"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Tracker  *services.Tracker
	Database *database.Database

	// Audit trail (optional). Both are usually the same audit.Service.
	AuditReader   AuditReader
	ExportAuditor exporters.ExportAuditor
	AuthAuditor   auth.AuthAuditor
	SettingsAudit SettingsAuditor

	// Authentication. AuthService is required; the session pieces are only
	// set in local mode.
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthController *auth.AuthController // built by NewRouter when nil
	AuthConfig     config.Auth

	// Backups (optional)
	BackupSettings BackupSettingsStore
	BackupRunner   BackupRunner

	// Read-only demo mode (optional)
	DemoMiddleware *demo.Middleware

	// Task queue client (optional)
	TaskClient TaskQueue

	// Application info
	Version string
}
