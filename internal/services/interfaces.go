package services

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

// UserStore persists accounts and friendships.
type UserStore interface {
	CreateUser(user *entities.User) error
	// DeleteUser removes the account and every row that references it.
	DeleteUser(username string) error
	AddFriendship(user1, user2 string) error
	RemoveFriendship(user1, user2 string) error
}

// CatalogStore persists books and the review ledger.
type CatalogStore interface {
	SaveBooks(books []entities.Book) error
	AddReview(review *entities.Review) error
	AddLike(like *entities.ReviewLike) error
	RemoveLike(like *entities.ReviewLike) error
}

// LibraryStore persists a library with its shelves and placements as a unit.
type LibraryStore interface {
	SaveLibrary(library entities.Library, shelves []entities.LibraryShelf, books []entities.LibraryBook) error
}

// SessionStore persists active reading sessions.
type SessionStore interface {
	SaveSession(session *entities.ReadingSession) error
	DeleteSession(username string, bookID int) error
}

// RecommendationStore appends recommendations. AddRecommendation assigns the ID.
type RecommendationStore interface {
	AddRecommendation(rec *entities.Recommendation) error
}

// SnapshotLoader reads every persisted row at startup.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (tracker.Snapshot, error)
}

// AuditLogger records audit events without blocking the caller.
type AuditLogger interface {
	LogAsync(event *entities.AuditEvent)
}

// Stores groups the persistence collaborators the Tracker writes through.
type Stores struct {
	Users           UserStore
	Catalog         CatalogStore
	Libraries       LibraryStore
	Sessions        SessionStore
	Recommendations RecommendationStore
	Snapshot        SnapshotLoader
}
