package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/catalog"
	"github.com/mrlokans/bookshelf/internal/database/libraries"
	"github.com/mrlokans/bookshelf/internal/database/reading"
	"github.com/mrlokans/bookshelf/internal/database/recommendations"
	"github.com/mrlokans/bookshelf/internal/database/settings"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/importers"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/settingsstore"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.UserStore = (*users.Repository)(nil)
var _ services.CatalogStore = (*catalog.Repository)(nil)
var _ services.LibraryStore = (*libraries.Repository)(nil)
var _ services.SessionStore = (*reading.Repository)(nil)
var _ services.RecommendationStore = (*recommendations.Repository)(nil)
var _ services.SnapshotLoader = (*database.Database)(nil)

var _ auth.UserRepository = (*users.Repository)(nil)
var _ settingsstore.Repository = (*settings.Repository)(nil)

// =============================================================================
// Tracker
// =============================================================================

var _ http.UserService = (*services.Tracker)(nil)
var _ http.BookService = (*services.Tracker)(nil)
var _ http.ReadingService = (*services.Tracker)(nil)
var _ http.LibraryService = (*services.Tracker)(nil)
var _ http.RecommendationService = (*services.Tracker)(nil)
var _ http.TrackerCounter = (*services.Tracker)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ importers.BookSink = (*services.Tracker)(nil)
var _ exporters.SnapshotSource = (*services.Tracker)(nil)

var _ http.PasswordHasher = (*auth.Service)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ services.AuditLogger = (*audit.Service)(nil)
var _ auth.AuthAuditor = (*audit.Service)(nil)
var _ exporters.ExportAuditor = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.AuditReader = (*auditrepo.Repository)(nil)
var _ http.SettingsAuditor = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Snapshot Export
// =============================================================================

var _ exporters.SnapshotExporter = (*exporters.FileExporter)(nil)
var _ exporters.SnapshotExporter = (*exporters.SettingsFileExporter)(nil)

// =============================================================================
// Backups and Background Tasks
// =============================================================================

var _ scheduler.BackupSettings = (*settingsstore.Backups)(nil)
var _ http.BackupSettingsStore = (*settingsstore.Backups)(nil)
var _ tasks.StatusRecorder = (*settingsstore.Backups)(nil)
var _ http.BackupRunner = (*scheduler.BackupScheduler)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
