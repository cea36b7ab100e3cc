package http

import (
	"context"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/settingsstore"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

// Each controller depends on the narrow slice of services.Tracker it uses.
// services.Tracker implements all of them; the checks live in
// internal/interfaces.

// UserService manages accounts and friendships.
type UserService interface {
	CreateUser(username, displayName, passwordHash string) (services.UserView, error)
	DeleteUser(username string) error
	GetUser(username string) (services.UserView, error)
	ListUsers() []services.UserView
	AddFriend(username, friend string) (bool, error)
	RemoveFriend(username, friend string) (bool, error)
	Friends(username string) ([]string, error)
}

// PasswordHasher turns a sign-up password into a stored hash.
// auth.Service implements it.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// BookService reads the catalog and manages reviews.
type BookService interface {
	ListBooks() []services.BookView
	GetBook(id int) (services.BookView, error)
	AddReview(bookID int, username, text string, rating int) (services.ReviewView, error)
	LikeReview(bookID int, reviewer, liker string) (services.ReviewView, error)
	UnlikeReview(bookID int, reviewer, liker string) (services.ReviewView, error)
}

// ReadingService drives reading sessions.
type ReadingService interface {
	StartReading(username string, bookID int) (services.SessionView, error)
	TurnPage(username string, bookID int, direction tracker.Direction, count int) (services.TurnResult, error)
	StopReading(username string, bookID int) (services.StopResult, error)
	ActiveReads(username string) ([]services.SessionView, error)
}

// LibraryService manages libraries, shelves and placements. Every mutation
// takes the acting user; ownership is checked by the tracker.
type LibraryService interface {
	Libraries(username string) ([]services.LibraryView, error)
	GetLibrary(id int) (services.LibraryView, error)
	CreateLibrary(username, name string) (services.LibraryView, error)
	RenameLibrary(id int, actor, name string) (services.LibraryView, error)
	CreateShelf(id int, actor, name string) (services.LibraryView, error)
	AddBookToLibrary(id int, actor string, bookID int, shelf string) (services.LibraryView, error)
	RemoveBookFromLibrary(id int, actor string, bookID int) (services.LibraryView, error)
	MoveBook(id int, actor string, bookID int, from, to string) (services.LibraryView, error)
}

// RecommendationService sends and lists recommendations.
type RecommendationService interface {
	Recommend(from, to string, bookID int, message *string) (services.RecommendationView, error)
	Recommendations(username string) ([]services.RecommendationView, error)
}

// AuditReader lists audit events.
type AuditReader interface {
	GetEvents(actor string, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, actor string, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// SettingsAuditor records settings changes.
type SettingsAuditor interface {
	LogSettings(actor, action, description string)
}

// BackupSettingsStore reads and writes the backup settings.
// settingsstore.Backups implements it.
type BackupSettingsStore interface {
	Config() settingsstore.BackupConfig
	ConfigInfo() settingsstore.BackupConfigInfo
	Status() settingsstore.BackupStatus
	SetEnabled(enabled bool) error
	SetSchedule(schedule string) error
	SetDir(dir string) error
	Clear() error
}

// BackupRunner is the scheduler the backup settings control.
// scheduler.BackupScheduler implements it.
type BackupRunner interface {
	IsRunning() bool
	NextRunTime() *time.Time
	RunNow(actor string) (string, error)
	Reschedule(ctx context.Context) error
}
