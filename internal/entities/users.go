package entities

import "time"

// User is the persisted form of an account. PasswordHash is empty for
// accounts created without a password.
type User struct {
	Username     string    `gorm:"primaryKey;size:100" json:"username"`
	DisplayName  string    `gorm:"size:255" json:"display_name"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Friendship is one direction of a friendship. Every friendship is stored as
// two rows, (a, b) and (b, a).
type Friendship struct {
	User1 string `gorm:"primaryKey;size:100" json:"user1"`
	User2 string `gorm:"primaryKey;size:100;index" json:"user2"`
}

func (Friendship) TableName() string {
	return "friends"
}

type Recommendation struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	FromUser string    `gorm:"index;size:100" json:"from_user"`
	ToUser   string    `gorm:"index;size:100" json:"to_user"`
	BookID   int       `gorm:"index" json:"book_id"`
	Message  *string   `gorm:"type:text" json:"message"`
	Date     time.Time `json:"date"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
