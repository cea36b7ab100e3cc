package tracker

import (
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Direction is the way a page turn moves through a book.
type Direction string

const (
	Forward Direction = "forward"
	Back    Direction = "back"
)

// ParseDirection accepts "forward" and "back".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Forward, Back:
		return Direction(s), nil
	}
	return "", ErrInvalidDirection
}

// ReadingSession tracks one user's progress through one book. CurrentPage
// stays within [1, TotalPages].
type ReadingSession struct {
	Username    string
	BookID      int
	TotalPages  int
	CurrentPage int
	StartedAt   time.Time
	LastReadAt  *time.Time
}

func newReadingSession(username string, book *Book, at time.Time) *ReadingSession {
	return &ReadingSession{
		Username:    username,
		BookID:      book.ID,
		TotalPages:  book.TotalPages,
		CurrentPage: 1,
		StartedAt:   at,
	}
}

// Finished reports whether the last page has been reached.
func (s *ReadingSession) Finished() bool {
	return s.CurrentPage >= s.TotalPages
}

// turn applies a page turn and records activity, even when the page does not
// change. Unknown directions only touch the timestamp. It reports whether the
// session reached the last page.
func (s *ReadingSession) turn(direction Direction, count int, at time.Time) bool {
	switch direction {
	case Forward:
		s.CurrentPage = s.clamp(s.CurrentPage + count)
	case Back:
		s.CurrentPage = s.clamp(s.CurrentPage - count)
	}
	s.LastReadAt = &at
	return s.Finished()
}

func (s *ReadingSession) clamp(page int) int {
	if page > s.TotalPages {
		page = s.TotalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

func (s *ReadingSession) Row() entities.ReadingSession {
	return entities.ReadingSession{
		User:        s.Username,
		BookID:      s.BookID,
		CurrentPage: s.CurrentPage,
		StartedAt:   s.StartedAt,
		LastReadAt:  s.LastReadAt,
	}
}
