package entities

import "time"

// Book ids are assigned by the catalog, never by the database.
type Book struct {
	ID         int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name       string `gorm:"index;size:512" json:"name"`
	Author     string `gorm:"index;size:256" json:"author"`
	Year       int    `json:"year"`
	Publisher  string `gorm:"size:256" json:"publisher"`
	Language   string `gorm:"size:64" json:"language"`
	TotalPages int    `json:"total_pages"`
}

func (Book) TableName() string {
	return "books"
}

type Review struct {
	User      string    `gorm:"column:user;primaryKey;size:100" json:"user"`
	BookID    int       `gorm:"primaryKey" json:"book_id"`
	Text      string    `gorm:"type:text" json:"text"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewLike records that Liker liked the review Reviewer wrote on BookID.
type ReviewLike struct {
	Reviewer string `gorm:"primaryKey;size:100" json:"reviewer"`
	BookID   int    `gorm:"primaryKey" json:"book_id"`
	Liker    string `gorm:"primaryKey;size:100;index" json:"liker"`
}

func (ReviewLike) TableName() string {
	return "review_likes"
}
