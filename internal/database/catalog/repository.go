// Package catalog provides database operations for books and the review ledger.
//
// Book ids come from the imported catalog; rows are upserted by id.
package catalog

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

var ErrBookNotFound = errors.New("book not found")

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveBooks inserts or replaces books by id.
func (r *Repository) SaveBooks(books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(books, 200).Error
}

func (r *Repository) GetBookByID(id int) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks returns the catalog ordered by id.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id").Find(&books).Error
	return books, err
}

func (r *Repository) CountBooks() (int64, error) {
	var n int64
	err := r.db.Model(&entities.Book{}).Count(&n).Error
	return n, err
}

// AddReview inserts a review. The (user, book_id) key rejects a second review.
func (r *Repository) AddReview(review *entities.Review) error {
	return r.db.Create(review).Error
}

// GetReviews returns every review, oldest first.
func (r *Repository) GetReviews() ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Order("created_at, book_id").Find(&reviews).Error
	return reviews, err
}

// AddLike records a like. Liking twice keeps one row.
func (r *Repository) AddLike(like *entities.ReviewLike) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

func (r *Repository) RemoveLike(like *entities.ReviewLike) error {
	return r.db.
		Where("reviewer = ? AND book_id = ? AND liker = ?", like.Reviewer, like.BookID, like.Liker).
		Delete(&entities.ReviewLike{}).Error
}

func (r *Repository) GetLikes() ([]entities.ReviewLike, error) {
	var likes []entities.ReviewLike
	err := r.db.Order("book_id, reviewer, liker").Find(&likes).Error
	return likes, err
}
