package entities

import "time"

// Library is a user-owned collection of shelves. Position orders the owner's
// libraries; position 0 is the primary library.
type Library struct {
	ID       int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name     string `gorm:"size:255" json:"name"`
	Owner    string `gorm:"index;size:100" json:"owner"`
	Position int    `json:"position"`
}

func (Library) TableName() string {
	return "libraries"
}

type LibraryShelf struct {
	LibraryID int    `gorm:"primaryKey" json:"library_id"`
	Name      string `gorm:"primaryKey;size:100" json:"name"`
	Position  int    `json:"position"`
}

func (LibraryShelf) TableName() string {
	return "library_shelves"
}

// LibraryBook places a book on one shelf. The (library_id, book_id) key keeps
// a book on at most one shelf per library.
type LibraryBook struct {
	LibraryID int    `gorm:"primaryKey" json:"library_id"`
	BookID    int    `gorm:"primaryKey" json:"book_id"`
	Shelf     string `gorm:"size:100" json:"shelf"`
	Position  int    `json:"position"`
}

func (LibraryBook) TableName() string {
	return "library_books"
}

type ReadingSession struct {
	User        string     `gorm:"column:user;primaryKey;size:100" json:"user"`
	BookID      int        `gorm:"primaryKey" json:"book_id"`
	CurrentPage int        `json:"current_page"`
	StartedAt   time.Time  `json:"started_at"`
	LastReadAt  *time.Time `json:"last_read_at"`
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}
