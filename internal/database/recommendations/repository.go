// Package recommendations provides database operations for book
// recommendations. Rows are append-only; they disappear only when the
// sender or recipient account is deleted.
package recommendations

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddRecommendation inserts a recommendation and fills in its ID.
func (r *Repository) AddRecommendation(rec *entities.Recommendation) error {
	return r.db.Create(rec).Error
}

// GetForUser returns what username received, oldest first.
func (r *Repository) GetForUser(username string) ([]entities.Recommendation, error) {
	var recs []entities.Recommendation
	err := r.db.Where("to_user = ?", username).Order("id").Find(&recs).Error
	return recs, err
}

func (r *Repository) GetAll() ([]entities.Recommendation, error) {
	var recs []entities.Recommendation
	err := r.db.Order("id").Find(&recs).Error
	return recs, err
}
