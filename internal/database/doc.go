// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go        # Connection setup, migrations, snapshot loading
//	├── users/             # Accounts, friendships, cascading account deletion
//	├── catalog/           # Books, reviews and review likes
//	├── libraries/         # Libraries, shelves and shelf placements
//	├── reading/           # Active reading sessions
//	├── recommendations/   # Book recommendations
//	├── audit/             # Audit trail
//	└── settings/          # Runtime setting overrides
//
// # Using Sub-packages
//
// NewDatabase wires one Repository per sub-package:
//
//	db, err := database.NewDatabase("./bookshelf.db", logger.Warn)
//	snap, err := db.LoadSnapshot(ctx)
//	err = db.Libraries.SaveLibrary(lib.Row(0), lib.ShelfRows(), lib.BookRows())
//
// # Interface Implementations
//
//   - users.Repository: implements services.UserStore
//   - catalog.Repository: implements services.CatalogStore
//   - libraries.Repository: implements services.LibraryStore
//   - reading.Repository: implements services.SessionStore
//   - recommendations.Repository: implements services.RecommendationStore
//   - Database: implements services.SnapshotLoader
//
// The compile-time checks live in internal/interfaces.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the row types in NewDatabase's AutoMigrate call
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
