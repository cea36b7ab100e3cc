package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/services"
)

// store is an opened database with a loaded tracker on top of it.
type store struct {
	db      *database.Database
	audit   *audit.Service
	tracker *services.Tracker
}

// openStore opens the database at path and loads the tracker from it.
func openStore(path, logLevel string) (*store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absPath, database.ParseLogLevel(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	auditService := audit.NewService(db.Audit)
	tr := services.NewTracker(services.Stores{
		Users:           db.Users,
		Catalog:         db.Catalog,
		Libraries:       db.Libraries,
		Sessions:        db.Reading,
		Recommendations: db.Recommendations,
		Snapshot:        db,
	}, auditService)

	if _, err := tr.Load(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load tracker: %w", err)
	}

	return &store{db: db, audit: auditService, tracker: tr}, nil
}

// Close waits for pending audit writes before closing the database.
func (s *store) Close() error {
	s.audit.Wait()
	return s.db.Close()
}
