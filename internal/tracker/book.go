package tracker

import (
	"sort"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Book is a catalog entry. Everything except the review ledger is fixed once
// the book is loaded; identity is the ID alone.
type Book struct {
	ID         int
	Name       string
	Author     string
	Year       int
	Publisher  string
	Language   string
	TotalPages int

	reviews []*Review
}

// NewBook builds a catalog entry from its persisted row.
func NewBook(row entities.Book) *Book {
	return &Book{
		ID:         row.ID,
		Name:       row.Name,
		Author:     row.Author,
		Year:       row.Year,
		Publisher:  row.Publisher,
		Language:   row.Language,
		TotalPages: row.TotalPages,
	}
}

func (b *Book) Row() entities.Book {
	return entities.Book{
		ID:         b.ID,
		Name:       b.Name,
		Author:     b.Author,
		Year:       b.Year,
		Publisher:  b.Publisher,
		Language:   b.Language,
		TotalPages: b.TotalPages,
	}
}

// Reviews returns the ledger in the order reviews were added.
func (b *Book) Reviews() []*Review {
	out := make([]*Review, len(b.reviews))
	copy(out, b.reviews)
	return out
}

// ReviewBy returns the review written by username, if any.
func (b *Book) ReviewBy(username string) (*Review, bool) {
	for _, r := range b.reviews {
		if r.Reviewer == username {
			return r, true
		}
	}
	return nil, false
}

// AddReview appends a review by reviewer. A user may review a book once.
func (b *Book) AddReview(reviewer, text string, rating int, at time.Time) (*Review, error) {
	if _, exists := b.ReviewBy(reviewer); exists {
		return nil, ErrDuplicateReview
	}
	review, err := NewReview(reviewer, b.ID, text, rating, at)
	if err != nil {
		return nil, err
	}
	b.reviews = append(b.reviews, review)
	return review, nil
}

// AverageRating is the mean of all review ratings. The second result is false
// when the book has no reviews.
func (b *Book) AverageRating() (float64, bool) {
	if len(b.reviews) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range b.reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(b.reviews)), true
}

// forgetUser drops the user's review and every like the user gave.
func (b *Book) forgetUser(username string) {
	kept := b.reviews[:0]
	for _, r := range b.reviews {
		if r.Reviewer == username {
			continue
		}
		delete(r.likes, username)
		kept = append(kept, r)
	}
	for i := len(kept); i < len(b.reviews); i++ {
		b.reviews[i] = nil
	}
	b.reviews = kept
}

// Review is one user's rating of a book. Reviews are never edited.
type Review struct {
	Reviewer  string
	BookID    int
	Text      string
	Rating    int
	CreatedAt time.Time

	likes map[string]struct{}
}

// NewReview validates the rating before anything is constructed.
func NewReview(reviewer string, bookID int, text string, rating int, at time.Time) (*Review, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}
	return &Review{
		Reviewer:  reviewer,
		BookID:    bookID,
		Text:      text,
		Rating:    rating,
		CreatedAt: at,
		likes:     make(map[string]struct{}),
	}, nil
}

// Like records a like from username. Liking twice is a no-op; the reviewer
// cannot like their own review.
func (r *Review) Like(username string) error {
	if username == r.Reviewer {
		return ErrSelfLike
	}
	r.likes[username] = struct{}{}
	return nil
}

// Unlike removes a like and reports whether one was present.
func (r *Review) Unlike(username string) bool {
	if _, ok := r.likes[username]; !ok {
		return false
	}
	delete(r.likes, username)
	return true
}

func (r *Review) LikedBy(username string) bool {
	_, ok := r.likes[username]
	return ok
}

func (r *Review) LikesCount() int {
	return len(r.likes)
}

// Likers returns the usernames that liked the review, sorted.
func (r *Review) Likers() []string {
	out := make([]string, 0, len(r.likes))
	for name := range r.likes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Review) Row() entities.Review {
	return entities.Review{
		User:      r.Reviewer,
		BookID:    r.BookID,
		Text:      r.Text,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

func (r *Review) LikeRows() []entities.ReviewLike {
	likers := r.Likers()
	rows := make([]entities.ReviewLike, 0, len(likers))
	for _, liker := range likers {
		rows = append(rows, entities.ReviewLike{Reviewer: r.Reviewer, BookID: r.BookID, Liker: liker})
	}
	return rows
}
