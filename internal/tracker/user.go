package tracker

import (
	"sort"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Recommendation is a book suggestion sent from one friend to another.
// ID is zero until the recommendation has been stored.
type Recommendation struct {
	ID      uint
	From    string
	To      string
	BookID  int
	Message *string
	Date    time.Time
}

func (r Recommendation) Row() entities.Recommendation {
	return entities.Recommendation{
		ID:       r.ID,
		FromUser: r.From,
		ToUser:   r.To,
		BookID:   r.BookID,
		Message:  r.Message,
		Date:     r.Date,
	}
}

// User is an account. Friends, libraries, reading sessions and incoming
// recommendations all hang off the user and refer to other entities by id.
type User struct {
	Username    string
	DisplayName string
	CreatedAt   time.Time

	friends         map[string]struct{}
	libraries       []*Library
	activeReads     map[int]*ReadingSession
	recommendations []*Recommendation
}

func newUser(username, displayName string, createdAt time.Time) *User {
	return &User{
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   createdAt,
		friends:     make(map[string]struct{}),
		activeReads: make(map[int]*ReadingSession),
	}
}

// Row returns the persisted form of the user, without a password hash.
func (u *User) Row() entities.User {
	return entities.User{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// --- Friends ---

func (u *User) IsFriend(username string) bool {
	_, ok := u.friends[username]
	return ok
}

// Friends returns friend usernames, sorted.
func (u *User) Friends() []string {
	out := make([]string, 0, len(u.friends))
	for name := range u.friends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AddFriend befriends other on both sides at once. It reports whether
// anything changed; adding an existing friend or oneself is a no-op.
func (u *User) AddFriend(other *User) bool {
	if other == nil || other.Username == u.Username || u.IsFriend(other.Username) {
		return false
	}
	u.friends[other.Username] = struct{}{}
	other.friends[u.Username] = struct{}{}
	return true
}

// RemoveFriend ends a friendship on both sides. It reports whether the two
// were friends.
func (u *User) RemoveFriend(other *User) bool {
	if other == nil || !u.IsFriend(other.Username) {
		return false
	}
	delete(u.friends, other.Username)
	delete(other.friends, u.Username)
	return true
}

// FriendshipRows returns this user's side of each friendship.
func (u *User) FriendshipRows() []entities.Friendship {
	friends := u.Friends()
	rows := make([]entities.Friendship, 0, len(friends))
	for _, f := range friends {
		rows = append(rows, entities.Friendship{User1: u.Username, User2: f})
	}
	return rows
}

// --- Recommendations ---

// RecommendBook sends book to friend. Only current friends can receive
// recommendations. The returned pointer is the friend's copy, so a store can
// fill in the ID after saving it.
func (u *User) RecommendBook(book *Book, friend *User, message *string, at time.Time) (*Recommendation, error) {
	if friend == nil || !u.IsFriend(friend.Username) {
		return nil, ErrNotFriends
	}
	rec := &Recommendation{
		From:    u.Username,
		To:      friend.Username,
		BookID:  book.ID,
		Message: message,
		Date:    at,
	}
	friend.recommendations = append(friend.recommendations, rec)
	return rec, nil
}

// Recommendations returns incoming recommendations, oldest first.
func (u *User) Recommendations() []Recommendation {
	out := make([]Recommendation, 0, len(u.recommendations))
	for _, r := range u.recommendations {
		out = append(out, *r)
	}
	return out
}

// --- Libraries ---

func (u *User) Libraries() []*Library {
	out := make([]*Library, len(u.libraries))
	copy(out, u.libraries)
	return out
}

// PrimaryLibrary is the first library, created together with the account.
func (u *User) PrimaryLibrary() *Library {
	if len(u.libraries) == 0 {
		return nil
	}
	return u.libraries[0]
}

// Library returns the user's library with the given id.
func (u *User) Library(id int) (*Library, bool) {
	for _, l := range u.libraries {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// --- Reading ---

// StartReading opens a session for book, or returns the existing one
// unchanged. If the book is shelved in the primary library it moves to
// currently_reading.
func (u *User) StartReading(book *Book, at time.Time) *ReadingSession {
	if session, ok := u.activeReads[book.ID]; ok {
		return session
	}
	if lib := u.PrimaryLibrary(); lib != nil {
		if _, ok := lib.ShelfOf(book.ID); ok {
			lib.relocate(book.ID, ShelfCurrentlyReading)
		}
	}
	session := newReadingSession(u.Username, book, at)
	u.activeReads[book.ID] = session
	return session
}

// TurnPage moves the active session for book. Reaching the last page ends
// the session through StopReading; the second result reports that.
func (u *User) TurnPage(book *Book, direction Direction, count int, at time.Time) (*ReadingSession, bool, error) {
	session, ok := u.activeReads[book.ID]
	if !ok {
		return nil, false, ErrNoActiveSession
	}
	if !session.turn(direction, count, at) {
		return session, false, nil
	}
	u.StopReading(book)
	return session, true, nil
}

// StopReading ends the session for book, if there is one. A finished book
// that is shelved in the primary library moves to read; untracked books stay
// untracked. The removed session and whether it was finished are returned.
func (u *User) StopReading(book *Book) (*ReadingSession, bool) {
	session, ok := u.activeReads[book.ID]
	if !ok {
		return nil, false
	}
	delete(u.activeReads, book.ID)

	finished := session.CurrentPage >= book.TotalPages
	if finished {
		if lib := u.PrimaryLibrary(); lib != nil {
			if _, tracked := lib.ShelfOf(book.ID); tracked {
				lib.relocate(book.ID, ShelfRead)
			}
		}
	}
	return session, finished
}

// Session returns the active session for a book.
func (u *User) Session(bookID int) (*ReadingSession, bool) {
	s, ok := u.activeReads[bookID]
	return s, ok
}

// ActiveReads returns active sessions ordered by book id.
func (u *User) ActiveReads() []*ReadingSession {
	out := make([]*ReadingSession, 0, len(u.activeReads))
	for _, s := range u.activeReads {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookID < out[j].BookID })
	return out
}
