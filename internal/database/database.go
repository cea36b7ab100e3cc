package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/catalog"
	"github.com/mrlokans/bookshelf/internal/database/libraries"
	"github.com/mrlokans/bookshelf/internal/database/reading"
	"github.com/mrlokans/bookshelf/internal/database/recommendations"
	"github.com/mrlokans/bookshelf/internal/database/settings"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

// Database owns the gorm connection and one repository per domain.
type Database struct {
	DB *gorm.DB

	Users           *users.Repository
	Catalog         *catalog.Repository
	Libraries       *libraries.Repository
	Reading         *reading.Repository
	Recommendations *recommendations.Repository
	Audit           *audit.Repository
	Settings        *settings.Repository
}

// ParseLogLevel maps a config value to a gorm log level. Unknown values
// fall back to warn.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// sqliteParams lets background audit writes wait for the lock instead of
// failing with SQLITE_BUSY.
const sqliteParams = "_journal=WAL&_busy_timeout=5000"

func NewDatabase(dbPath string, logLevel logger.LogLevel) (*Database, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?" + sqliteParams
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Friendship{},
		&entities.Book{},
		&entities.Review{},
		&entities.ReviewLike{},
		&entities.Library{},
		&entities.LibraryShelf{},
		&entities.LibraryBook{},
		&entities.ReadingSession{},
		&entities.Recommendation{},
		&entities.AuditEvent{},
		&entities.Setting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{
		DB:              db,
		Users:           users.NewRepository(db),
		Catalog:         catalog.NewRepository(db),
		Libraries:       libraries.NewRepository(db),
		Reading:         reading.NewRepository(db),
		Recommendations: recommendations.NewRepository(db),
		Audit:           audit.NewRepository(db),
		Settings:        settings.NewRepository(db),
	}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is still usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// LoadSnapshot reads every domain table. The reads share one transaction so
// the snapshot is consistent.
func (d *Database) LoadSnapshot(ctx context.Context) (tracker.Snapshot, error) {
	var snap tracker.Snapshot
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loads := []struct {
			table string
			dest  any
			order string
		}{
			{"books", &snap.Books, "id"},
			{"users", &snap.Users, "username"},
			{"friends", &snap.Friendships, "user1, user2"},
			{"libraries", &snap.Libraries, "owner, position, id"},
			{"library_shelves", &snap.Shelves, "library_id, position"},
			{"library_books", &snap.LibraryBooks, "library_id, position"},
			{"reading_sessions", &snap.Sessions, "book_id"},
			{"reviews", &snap.Reviews, "created_at, book_id"},
			{"review_likes", &snap.ReviewLikes, "book_id, reviewer, liker"},
			{"recommendations", &snap.Recommendations, "id"},
		}
		for _, l := range loads {
			if err := tx.Order(l.order).Find(l.dest).Error; err != nil {
				return fmt.Errorf("failed to load %s: %w", l.table, err)
			}
		}
		return nil
	})
	if err != nil {
		return tracker.Snapshot{}, err
	}
	return snap, nil
}
