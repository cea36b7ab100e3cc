// Package reading provides database operations for active reading sessions.
package reading

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles reading session rows, keyed by (user, book_id).
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveSession inserts or replaces a session.
func (r *Repository) SaveSession(session *entities.ReadingSession) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(session).Error
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (r *Repository) DeleteSession(username string, bookID int) error {
	return r.db.
		Where(map[string]any{"user": username, "book_id": bookID}).
		Delete(&entities.ReadingSession{}).Error
}

// GetSessionsByUser returns a user's sessions ordered by book id.
func (r *Repository) GetSessionsByUser(username string) ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Where(map[string]any{"user": username}).Order("book_id").Find(&sessions).Error
	return sessions, err
}

func (r *Repository) GetAllSessions() ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Order(clause.OrderByColumn{Column: clause.Column{Name: "user"}}).Order("book_id").Find(&sessions).Error
	return sessions, err
}
