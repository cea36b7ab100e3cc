// Package users provides database operations for accounts and friendships.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	err := repo.AddFriendship("alice", "bob")
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// ErrUserNotFound is returned by lookups for unknown usernames.
var ErrUserNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new account row.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByUsername retrieves an account, including its password hash.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetPasswordHash replaces the stored password hash.
func (r *Repository) SetPasswordHash(username, hash string) error {
	result := r.db.Model(&entities.User{}).Where("username = ?", username).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes an account and every row that references it, in one
// transaction.
func (r *Repository) DeleteUser(username string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var libraryIDs []int
		if err := tx.Model(&entities.Library{}).Where("owner = ?", username).Pluck("id", &libraryIDs).Error; err != nil {
			return fmt.Errorf("failed to list libraries: %w", err)
		}
		if len(libraryIDs) > 0 {
			if err := tx.Where("library_id IN ?", libraryIDs).Delete(&entities.LibraryBook{}).Error; err != nil {
				return fmt.Errorf("failed to delete library books: %w", err)
			}
			if err := tx.Where("library_id IN ?", libraryIDs).Delete(&entities.LibraryShelf{}).Error; err != nil {
				return fmt.Errorf("failed to delete shelves: %w", err)
			}
			if err := tx.Where("id IN ?", libraryIDs).Delete(&entities.Library{}).Error; err != nil {
				return fmt.Errorf("failed to delete libraries: %w", err)
			}
		}

		steps := []struct {
			what  string
			model any
			query string
			args  []any
		}{
			{"friendships", &entities.Friendship{}, "user1 = ? OR user2 = ?", []any{username, username}},
			{"reading sessions", &entities.ReadingSession{}, "`user` = ?", []any{username}},
			{"review likes", &entities.ReviewLike{}, "reviewer = ? OR liker = ?", []any{username, username}},
			{"reviews", &entities.Review{}, "`user` = ?", []any{username}},
			{"recommendations", &entities.Recommendation{}, "from_user = ? OR to_user = ?", []any{username, username}},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.what, err)
			}
		}

		result := tx.Where("username = ?", username).Delete(&entities.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// AddFriendship stores both directions of a friendship. Existing rows are kept.
func (r *Repository) AddFriendship(user1, user2 string) error {
	rows := []entities.Friendship{
		{User1: user1, User2: user2},
		{User1: user2, User2: user1},
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := tx.Where(&row).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveFriendship deletes both directions of a friendship.
func (r *Repository) RemoveFriendship(user1, user2 string) error {
	return r.db.
		Where("(user1 = ? AND user2 = ?) OR (user1 = ? AND user2 = ?)", user1, user2, user2, user1).
		Delete(&entities.Friendship{}).Error
}

// GetFriends returns the usernames befriended by username, sorted.
func (r *Repository) GetFriends(username string) ([]string, error) {
	var friends []string
	err := r.db.Model(&entities.Friendship{}).
		Where("user1 = ?", username).
		Order("user2").
		Pluck("user2", &friends).Error
	return friends, err
}

// GetAllUsers returns every account ordered by username.
func (r *Repository) GetAllUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("username").Find(&users).Error
	return users, err
}

// GetAllFriendships returns every friendship row.
func (r *Repository) GetAllFriendships() ([]entities.Friendship, error) {
	var rows []entities.Friendship
	err := r.db.Order("user1, user2").Find(&rows).Error
	return rows, err
}
