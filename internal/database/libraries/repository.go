// Package libraries provides database operations for libraries, their shelves
// and the books placed on them.
//
// A library is always written as a unit: SaveLibrary replaces the library row,
// its shelf rows and its placements inside one transaction.
package libraries

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all library database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new libraries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveLibrary writes the full state of one library.
func (r *Repository) SaveLibrary(library entities.Library, shelves []entities.LibraryShelf, books []entities.LibraryBook) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&library).Error; err != nil {
			return fmt.Errorf("failed to save library row: %w", err)
		}
		if err := tx.Where("library_id = ?", library.ID).Delete(&entities.LibraryShelf{}).Error; err != nil {
			return fmt.Errorf("failed to clear shelves: %w", err)
		}
		if err := tx.Where("library_id = ?", library.ID).Delete(&entities.LibraryBook{}).Error; err != nil {
			return fmt.Errorf("failed to clear library books: %w", err)
		}
		if len(shelves) > 0 {
			if err := tx.Create(&shelves).Error; err != nil {
				return fmt.Errorf("failed to save shelves: %w", err)
			}
		}
		if len(books) > 0 {
			if err := tx.Create(&books).Error; err != nil {
				return fmt.Errorf("failed to save library books: %w", err)
			}
		}
		return nil
	})
}

// GetLibrariesByOwner returns a user's libraries in list order.
func (r *Repository) GetLibrariesByOwner(owner string) ([]entities.Library, error) {
	var libs []entities.Library
	err := r.db.Where("owner = ?", owner).Order("position, id").Find(&libs).Error
	return libs, err
}

func (r *Repository) GetAllLibraries() ([]entities.Library, error) {
	var libs []entities.Library
	err := r.db.Order("owner, position, id").Find(&libs).Error
	return libs, err
}

func (r *Repository) GetAllShelves() ([]entities.LibraryShelf, error) {
	var shelves []entities.LibraryShelf
	err := r.db.Order("library_id, position").Find(&shelves).Error
	return shelves, err
}

func (r *Repository) GetAllLibraryBooks() ([]entities.LibraryBook, error) {
	var books []entities.LibraryBook
	err := r.db.Order("library_id, position").Find(&books).Error
	return books, err
}

// GetShelfBooks returns the ids on one shelf in shelf order.
func (r *Repository) GetShelfBooks(libraryID int, shelf string) ([]int, error) {
	var ids []int
	err := r.db.Model(&entities.LibraryBook{}).
		Where("library_id = ? AND shelf = ?", libraryID, shelf).
		Order("position").
		Pluck("book_id", &ids).Error
	return ids, err
}
