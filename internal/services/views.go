package services

import (
	"time"

	"github.com/mrlokans/bookshelf/internal/tracker"
)

// Views are detached copies of tracker state, safe to use after the
// Tracker lock is released.

type UserView struct {
	Username    string        `json:"username"`
	DisplayName string        `json:"display_name"`
	CreatedAt   time.Time     `json:"created_at"`
	Friends     []string      `json:"friends"`
	Libraries   []LibraryView `json:"libraries"`
}

type ShelfView struct {
	Name  string `json:"name"`
	Books []int  `json:"books"`
}

type LibraryView struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Owner   string      `json:"owner"`
	Shelves []ShelfView `json:"shelves"`
}

type ReviewView struct {
	User      string    `json:"user"`
	BookID    int       `json:"book_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	LikedBy   []string  `json:"liked_by"`
	CreatedAt time.Time `json:"created_at"`
}

type BookView struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	Author     string       `json:"author"`
	Year       int          `json:"year"`
	Publisher  string       `json:"publisher"`
	Language   string       `json:"language"`
	TotalPages int          `json:"total_pages"`
	AvgRating  *float64     `json:"avg_rating"`
	Reviews    []ReviewView `json:"reviews,omitempty"`
}

type SessionView struct {
	Username    string     `json:"user"`
	BookID      int        `json:"book_id"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	StartedAt   time.Time  `json:"started_at"`
	LastReadAt  *time.Time `json:"last_read_at"`
}

type RecommendationView struct {
	ID       uint      `json:"id"`
	FromUser string    `json:"from_user"`
	ToUser   string    `json:"to_user"`
	BookID   int       `json:"book_id"`
	Message  *string   `json:"message"`
	Date     time.Time `json:"date"`
}

// TurnResult is the outcome of a page turn. Completed is set when the turn
// reached the last page and ended the session.
type TurnResult struct {
	Session   SessionView `json:"session"`
	Completed bool        `json:"completed"`
}

// StopResult is the outcome of StopReading. Session is nil when there was
// nothing to stop.
type StopResult struct {
	Session  *SessionView `json:"session"`
	Finished bool         `json:"finished"`
}

func newUserView(u *tracker.User) UserView {
	libs := u.Libraries()
	view := UserView{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		Friends:     u.Friends(),
		Libraries:   make([]LibraryView, 0, len(libs)),
	}
	for _, l := range libs {
		view.Libraries = append(view.Libraries, newLibraryView(l))
	}
	return view
}

func newLibraryView(l *tracker.Library) LibraryView {
	shelves := l.Shelves()
	view := LibraryView{ID: l.ID, Name: l.Name, Owner: l.Owner, Shelves: make([]ShelfView, 0, len(shelves))}
	for _, shelf := range shelves {
		view.Shelves = append(view.Shelves, ShelfView{Name: shelf, Books: l.Books(shelf)})
	}
	return view
}

func newReviewView(r *tracker.Review) ReviewView {
	return ReviewView{
		User:      r.Reviewer,
		BookID:    r.BookID,
		Rating:    r.Rating,
		Text:      r.Text,
		Likes:     r.LikesCount(),
		LikedBy:   r.Likers(),
		CreatedAt: r.CreatedAt,
	}
}

func newBookView(b *tracker.Book, withReviews bool) BookView {
	view := BookView{
		ID:         b.ID,
		Name:       b.Name,
		Author:     b.Author,
		Year:       b.Year,
		Publisher:  b.Publisher,
		Language:   b.Language,
		TotalPages: b.TotalPages,
	}
	if avg, ok := b.AverageRating(); ok {
		view.AvgRating = &avg
	}
	if withReviews {
		reviews := b.Reviews()
		view.Reviews = make([]ReviewView, 0, len(reviews))
		for _, r := range reviews {
			view.Reviews = append(view.Reviews, newReviewView(r))
		}
	}
	return view
}

func newSessionView(s *tracker.ReadingSession) SessionView {
	view := SessionView{
		Username:    s.Username,
		BookID:      s.BookID,
		CurrentPage: s.CurrentPage,
		TotalPages:  s.TotalPages,
		StartedAt:   s.StartedAt,
	}
	if s.LastReadAt != nil {
		at := *s.LastReadAt
		view.LastReadAt = &at
	}
	return view
}

func newRecommendationView(r tracker.Recommendation) RecommendationView {
	return RecommendationView{
		ID:       r.ID,
		FromUser: r.From,
		ToUser:   r.To,
		BookID:   r.BookID,
		Message:  r.Message,
		Date:     r.Date,
	}
}

// Counts summarizes the tracker for health reporting.
type Counts struct {
	Users       int `json:"users"`
	Books       int `json:"books"`
	Libraries   int `json:"libraries"`
	ActiveReads int `json:"active_reads"`
}
