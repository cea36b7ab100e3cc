// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Persistence Interfaces (internal/services/interfaces.go)
//
//   - UserStore: accounts, friendships and cascading account deletion
//   - CatalogStore: books, reviews and review likes
//   - LibraryStore: a library with its shelves and placements
//   - SessionStore: active reading sessions
//   - RecommendationStore: append-only recommendations
//   - SnapshotLoader: every persisted row, read once at startup
//
// ## Service Interfaces (internal/http/stores.go)
//
// Each HTTP controller depends on the narrow slice of services.Tracker it
// uses: UserService, BookService, ReadingService, LibraryService and
// RecommendationService. AuditReader, SettingsAuditor, BackupSettingsStore,
// BackupRunner and TaskQueue cover the operational endpoints.
//
// ## Import and Export
//
//   - importers.BookSink: receives validated catalog rows
//   - exporters.SnapshotSource: provides the current tracker state
//   - exporters.SnapshotExporter: writes a snapshot somewhere durable
//   - exporters.ExportAuditor: records export outcomes
//
// ## Background Work
//
//   - scheduler.Enqueuer: hands a task to the backlite queue
//   - scheduler.BackupSettings: runtime backup configuration
//   - tasks.StatusRecorder: last backup outcome
//   - tasks.AuditEventCleaner: audit retention
//
// # Adding a New Catalog Format
//
//  1. Write a parser in internal/importers/ with the Parser signature:
//
//     func ParseCatalogXML(r io.Reader) ([]CatalogRow, []string, error)
//
//  2. Register its extension in ParserFor.
//
// # Adding a New Snapshot Destination
//
//  1. Implement SnapshotExporter in internal/exporters/
//
//     type S3Exporter struct { bucket string }
//
//     func (e *S3Exporter) Export(snap tracker.Snapshot) (ExportResult, error)
//
//  2. Add a compile-time check to checks.go and wire it in entrypoint.go.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
