package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

// Tracker is the process-wide owner of the entity graph. It serializes every
// operation, applies it to the in-memory model, then writes the affected rows
// through the stores. A failed write is returned to the caller; the next
// startup rebuilds state from whatever was stored.
type Tracker struct {
	mu     sync.RWMutex
	users  *tracker.UserDirectory
	books  *tracker.BookDirectory
	stores Stores
	audit  AuditLogger
	now    func() time.Time
}

// NewTracker creates a Tracker with empty directories. Call Load before
// serving requests. audit may be nil.
func NewTracker(stores Stores, audit AuditLogger) *Tracker {
	return &Tracker{
		users:  tracker.NewUserDirectory(),
		books:  tracker.NewBookDirectory(),
		stores: stores,
		audit:  audit,
		now:    time.Now,
	}
}

// Load rebuilds the directories from storage. Primary libraries created for
// users that had none are saved back.
func (t *Tracker) Load(ctx context.Context) (tracker.ReconstructStats, error) {
	snap, err := t.stores.Snapshot.LoadSnapshot(ctx)
	if err != nil {
		return tracker.ReconstructStats{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.users = tracker.NewUserDirectory()
	t.books = tracker.NewBookDirectory()
	stats := tracker.Reconstruct(t.users, t.books, snap)

	for _, lib := range stats.CreatedLibraries {
		if err := t.saveLibrary(lib); err != nil {
			return stats, err
		}
	}

	log.Printf("Loaded %d users, %d books, %d libraries, %d sessions (%d rows skipped)",
		stats.Users, stats.Books, stats.Libraries+len(stats.CreatedLibraries), stats.Sessions, stats.Skipped)
	return stats, nil
}

// Snapshot exports the current state.
func (t *Tracker) Snapshot() tracker.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return tracker.Export(t.users, t.books)
}

// Counts reports the size of the in-memory graph.
func (t *Tracker) Counts() Counts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := Counts{Users: t.users.Len(), Books: t.books.Len()}
	for _, u := range t.users.All() {
		c.Libraries += len(u.Libraries())
		c.ActiveReads += len(u.ActiveReads())
	}
	return c
}

// --- Catalog ---

// ImportBooks saves catalog rows and makes them available immediately.
// Books with an id already in the catalog replace the earlier entry; their
// reviews are kept. A row that changes the page count of a book someone is
// reading is skipped, so open sessions stay within the book's bounds. The
// number of rows applied is returned.
func (t *Tracker) ImportBooks(rows []entities.Book) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	accepted := make([]entities.Book, 0, len(rows))
	for _, row := range rows {
		if existing, ok := t.books.Get(row.ID); ok && existing.TotalPages != row.TotalPages && t.beingRead(row.ID) {
			log.Printf("Skipping book %d: page count changes from %d to %d while it is being read",
				row.ID, existing.TotalPages, row.TotalPages)
			continue
		}
		accepted = append(accepted, row)
	}
	if len(accepted) == 0 {
		return 0, nil
	}
	if err := t.stores.Catalog.SaveBooks(accepted); err != nil {
		return 0, fmt.Errorf("failed to save books: %w", err)
	}

	for _, row := range accepted {
		book := tracker.NewBook(row)
		if existing, ok := t.books.Get(row.ID); ok {
			for _, r := range existing.Reviews() {
				restored, err := book.AddReview(r.Reviewer, r.Text, r.Rating, r.CreatedAt)
				if err != nil {
					continue
				}
				for _, liker := range r.Likers() {
					_ = restored.Like(liker)
				}
			}
		}
		t.books.Load(book)
	}
	return len(accepted), nil
}

func (t *Tracker) ListBooks() []BookView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	all := t.books.All()
	out := make([]BookView, 0, len(all))
	for _, b := range all {
		out = append(out, newBookView(b, false))
	}
	return out
}

func (t *Tracker) GetBook(id int) (BookView, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.books.Get(id)
	if !ok {
		return BookView{}, tracker.ErrBookNotFound
	}
	return newBookView(b, true), nil
}

// AddReview records a review by username. Ratings outside 1..5 and second
// reviews are rejected.
func (t *Tracker) AddReview(bookID int, username, text string, rating int) (ReviewView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.user(username); err != nil {
		return ReviewView{}, err
	}
	book, err := t.book(bookID)
	if err != nil {
		return ReviewView{}, err
	}
	review, err := book.AddReview(username, text, rating, t.now())
	if err != nil {
		return ReviewView{}, err
	}

	row := review.Row()
	if err := t.stores.Catalog.AddReview(&row); err != nil {
		return ReviewView{}, fmt.Errorf("failed to save review: %w", err)
	}
	t.record(username, entities.AuditEventReview, "review_add", "book", strconv.Itoa(bookID),
		fmt.Sprintf("%s rated %q %d/5", username, book.Name, rating))
	return newReviewView(review), nil
}

// LikeReview records a like from liker on reviewer's review of a book.
func (t *Tracker) LikeReview(bookID int, reviewer, liker string) (ReviewView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	review, err := t.review(bookID, reviewer)
	if err != nil {
		return ReviewView{}, err
	}
	if _, err := t.user(liker); err != nil {
		return ReviewView{}, err
	}
	already := review.LikedBy(liker)
	if err := review.Like(liker); err != nil {
		return ReviewView{}, err
	}
	if !already {
		like := entities.ReviewLike{Reviewer: reviewer, BookID: bookID, Liker: liker}
		if err := t.stores.Catalog.AddLike(&like); err != nil {
			return ReviewView{}, fmt.Errorf("failed to save like: %w", err)
		}
	}
	return newReviewView(review), nil
}

// UnlikeReview removes a like. Removing a like that is not there is a no-op.
func (t *Tracker) UnlikeReview(bookID int, reviewer, liker string) (ReviewView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	review, err := t.review(bookID, reviewer)
	if err != nil {
		return ReviewView{}, err
	}
	if review.Unlike(liker) {
		like := entities.ReviewLike{Reviewer: reviewer, BookID: bookID, Liker: liker}
		if err := t.stores.Catalog.RemoveLike(&like); err != nil {
			return ReviewView{}, fmt.Errorf("failed to delete like: %w", err)
		}
	}
	return newReviewView(review), nil
}

// --- Users ---

// CreateUser registers an account with its primary library. passwordHash
// may be empty when local authentication is disabled.
func (t *Tracker) CreateUser(username, displayName, passwordHash string) (UserView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.users.Create(username, displayName, t.now())
	if err != nil {
		return UserView{}, err
	}

	row := u.Row()
	row.PasswordHash = passwordHash
	if err := t.stores.Users.CreateUser(&row); err != nil {
		_, _ = t.users.Delete(username)
		return UserView{}, fmt.Errorf("failed to save user: %w", err)
	}
	if err := t.saveLibrary(u.PrimaryLibrary()); err != nil {
		return UserView{}, err
	}

	t.record(username, entities.AuditEventAccount, "account_create", "user", username, "Created account "+username)
	return newUserView(u), nil
}

// DeleteUser removes an account together with its friendships, libraries,
// sessions, reviews, likes and sent recommendations.
func (t *Tracker) DeleteUser(username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.users.Delete(username); err != nil {
		return err
	}
	t.books.ForgetUser(username)

	if err := t.stores.Users.DeleteUser(username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	t.record(username, entities.AuditEventAccount, "account_delete", "user", username, "Deleted account "+username)
	return nil
}

func (t *Tracker) GetUser(username string) (UserView, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, err := t.user(username)
	if err != nil {
		return UserView{}, err
	}
	return newUserView(u), nil
}

// ListUsers returns every account, sorted by username.
func (t *Tracker) ListUsers() []UserView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	all := t.users.All()
	out := make([]UserView, 0, len(all))
	for _, u := range all {
		out = append(out, newUserView(u))
	}
	return out
}

// --- Friends ---

// AddFriend befriends two users. It reports whether a new friendship was
// created; befriending an existing friend or oneself changes nothing.
func (t *Tracker) AddFriend(username, friend string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user(username)
	if err != nil {
		return false, err
	}
	other, err := t.user(friend)
	if err != nil {
		return false, err
	}
	if !u.AddFriend(other) {
		return false, nil
	}
	if err := t.stores.Users.AddFriendship(username, friend); err != nil {
		return true, fmt.Errorf("failed to save friendship: %w", err)
	}
	t.record(username, entities.AuditEventFriendship, "friend_add", "user", friend,
		fmt.Sprintf("%s and %s are now friends", username, friend))
	return true, nil
}

// RemoveFriend ends a friendship on both sides and reports whether there was one.
func (t *Tracker) RemoveFriend(username, friend string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user(username)
	if err != nil {
		return false, err
	}
	other, err := t.user(friend)
	if err != nil {
		return false, err
	}
	if !u.RemoveFriend(other) {
		return false, nil
	}
	if err := t.stores.Users.RemoveFriendship(username, friend); err != nil {
		return true, fmt.Errorf("failed to delete friendship: %w", err)
	}
	t.record(username, entities.AuditEventFriendship, "friend_remove", "user", friend,
		fmt.Sprintf("%s and %s are no longer friends", username, friend))
	return true, nil
}

func (t *Tracker) Friends(username string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, err := t.user(username)
	if err != nil {
		return nil, err
	}
	return u.Friends(), nil
}

// --- Recommendations ---

// Recommend sends a book from one user to a friend.
func (t *Tracker) Recommend(from, to string, bookID int, message *string) (RecommendationView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sender, err := t.user(from)
	if err != nil {
		return RecommendationView{}, err
	}
	recipient, err := t.user(to)
	if err != nil {
		return RecommendationView{}, err
	}
	book, err := t.book(bookID)
	if err != nil {
		return RecommendationView{}, err
	}
	rec, err := sender.RecommendBook(book, recipient, message, t.now())
	if err != nil {
		return RecommendationView{}, err
	}

	row := rec.Row()
	if err := t.stores.Recommendations.AddRecommendation(&row); err != nil {
		return RecommendationView{}, fmt.Errorf("failed to save recommendation: %w", err)
	}
	rec.ID = row.ID

	t.record(from, entities.AuditEventRecommendation, "recommend", "book", strconv.Itoa(bookID),
		fmt.Sprintf("%s recommended %q to %s", from, book.Name, to))
	return newRecommendationView(*rec), nil
}

// Recommendations returns what username has received, oldest first.
func (t *Tracker) Recommendations(username string) ([]RecommendationView, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, err := t.user(username)
	if err != nil {
		return nil, err
	}
	recs := u.Recommendations()
	out := make([]RecommendationView, 0, len(recs))
	for _, r := range recs {
		out = append(out, newRecommendationView(r))
	}
	return out, nil
}

// --- Reading ---

// StartReading opens a session, or returns the one already open.
func (t *Tracker) StartReading(username string, bookID int) (SessionView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user(username)
	if err != nil {
		return SessionView{}, err
	}
	book, err := t.book(bookID)
	if err != nil {
		return SessionView{}, err
	}
	if existing, ok := u.Session(bookID); ok {
		return newSessionView(existing), nil
	}

	session := u.StartReading(book, t.now())
	row := session.Row()
	if err := t.stores.Sessions.SaveSession(&row); err != nil {
		return SessionView{}, fmt.Errorf("failed to save session: %w", err)
	}
	if err := t.saveLibrary(u.PrimaryLibrary()); err != nil {
		return SessionView{}, err
	}
	return newSessionView(session), nil
}

// TurnPage moves an active session. Reaching the last page ends the session
// and shelves the book as read.
func (t *Tracker) TurnPage(username string, bookID int, direction tracker.Direction, count int) (TurnResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user(username)
	if err != nil {
		return TurnResult{}, err
	}
	book, err := t.book(bookID)
	if err != nil {
		return TurnResult{}, err
	}
	session, completed, err := u.TurnPage(book, direction, count, t.now())
	if err != nil {
		return TurnResult{}, err
	}

	if completed {
		if err := t.finishSession(u, book); err != nil {
			return TurnResult{}, err
		}
	} else {
		row := session.Row()
		if err := t.stores.Sessions.SaveSession(&row); err != nil {
			return TurnResult{}, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return TurnResult{Session: newSessionView(session), Completed: completed}, nil
}

// StopReading ends a session if there is one.
func (t *Tracker) StopReading(username string, bookID int) (StopResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user(username)
	if err != nil {
		return StopResult{}, err
	}
	book, err := t.book(bookID)
	if err != nil {
		return StopResult{}, err
	}
	session, finished := u.StopReading(book)
	if session == nil {
		return StopResult{}, nil
	}

	if finished {
		if err := t.finishSession(u, book); err != nil {
			return StopResult{}, err
		}
	} else if err := t.stores.Sessions.DeleteSession(username, bookID); err != nil {
		return StopResult{}, fmt.Errorf("failed to delete session: %w", err)
	}

	view := newSessionView(session)
	return StopResult{Session: &view, Finished: finished}, nil
}

// ActiveReads lists open sessions ordered by book id.
func (t *Tracker) ActiveReads(username string) ([]SessionView, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, err := t.user(username)
	if err != nil {
		return nil, err
	}
	sessions := u.ActiveReads()
	out := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSessionView(s))
	}
	return out, nil
}

// finishSession persists a session that ended on its last page.
func (t *Tracker) finishSession(u *tracker.User, book *tracker.Book) error {
	if err := t.stores.Sessions.DeleteSession(u.Username, book.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := t.saveLibrary(u.PrimaryLibrary()); err != nil {
		return err
	}
	t.record(u.Username, entities.AuditEventReading, "book_finished", "book", strconv.Itoa(book.ID),
		fmt.Sprintf("%s finished %q", u.Username, book.Name))
	return nil
}

// --- Libraries ---

func (t *Tracker) Libraries(username string) ([]LibraryView, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, err := t.user(username)
	if err != nil {
		return nil, err
	}
	return newUserView(u).Libraries, nil
}

func (t *Tracker) GetLibrary(id int) (LibraryView, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	lib, err := t.library(id)
	if err != nil {
		return LibraryView{}, err
	}
	return newLibraryView(lib), nil
}

// CreateLibrary adds a library with the built-in shelves to username's list.
func (t *Tracker) CreateLibrary(username, name string) (LibraryView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user(username)
	if err != nil {
		return LibraryView{}, err
	}
	lib, err := t.users.CreateLibrary(u, name)
	if err != nil {
		return LibraryView{}, err
	}
	if err := t.saveLibrary(lib); err != nil {
		return LibraryView{}, err
	}
	t.record(username, entities.AuditEventLibrary, "library_create", "library", strconv.Itoa(lib.ID),
		fmt.Sprintf("%s created library %q", username, name))
	return newLibraryView(lib), nil
}

// RenameLibrary changes a library name. Only the owner may rename it.
func (t *Tracker) RenameLibrary(id int, actor, name string) (LibraryView, error) {
	return t.mutateLibrary(id, func(lib *tracker.Library) error {
		return lib.Rename(name, actor)
	})
}

// CreateShelf adds an empty custom shelf.
func (t *Tracker) CreateShelf(id int, actor, name string) (LibraryView, error) {
	return t.mutateLibrary(id, func(lib *tracker.Library) error {
		return lib.CreateShelf(name, actor)
	})
}

// AddBookToLibrary shelves a catalog book, moving it off any other shelf.
func (t *Tracker) AddBookToLibrary(id int, actor string, bookID int, shelf string) (LibraryView, error) {
	return t.mutateLibrary(id, func(lib *tracker.Library) error {
		if _, err := t.book(bookID); err != nil {
			return err
		}
		return lib.AddBook(bookID, shelf, actor)
	})
}

// RemoveBookFromLibrary takes a book off every shelf of the library.
func (t *Tracker) RemoveBookFromLibrary(id int, actor string, bookID int) (LibraryView, error) {
	return t.mutateLibrary(id, func(lib *tracker.Library) error {
		return lib.RemoveBook(bookID, actor)
	})
}

// MoveBook moves a book between shelves of one library.
func (t *Tracker) MoveBook(id int, actor string, bookID int, from, to string) (LibraryView, error) {
	return t.mutateLibrary(id, func(lib *tracker.Library) error {
		if _, err := t.book(bookID); err != nil {
			return err
		}
		return lib.MoveBook(bookID, from, to, actor)
	})
}

func (t *Tracker) mutateLibrary(id int, mutate func(*tracker.Library) error) (LibraryView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lib, err := t.library(id)
	if err != nil {
		return LibraryView{}, err
	}
	if err := mutate(lib); err != nil {
		return LibraryView{}, err
	}
	if err := t.saveLibrary(lib); err != nil {
		return LibraryView{}, err
	}
	return newLibraryView(lib), nil
}

// --- helpers; callers hold the lock ---

func (t *Tracker) user(username string) (*tracker.User, error) {
	u, ok := t.users.Get(username)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tracker.ErrUserNotFound, username)
	}
	return u, nil
}

func (t *Tracker) book(id int) (*tracker.Book, error) {
	b, ok := t.books.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", tracker.ErrBookNotFound, id)
	}
	return b, nil
}

// beingRead reports whether any user has an open session on the book.
func (t *Tracker) beingRead(bookID int) bool {
	for _, u := range t.users.All() {
		if _, ok := u.Session(bookID); ok {
			return true
		}
	}
	return false
}

func (t *Tracker) library(id int) (*tracker.Library, error) {
	lib, ok := t.users.Library(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", tracker.ErrLibraryNotFound, id)
	}
	return lib, nil
}

func (t *Tracker) review(bookID int, reviewer string) (*tracker.Review, error) {
	book, err := t.book(bookID)
	if err != nil {
		return nil, err
	}
	review, ok := book.ReviewBy(reviewer)
	if !ok {
		return nil, fmt.Errorf("%w: %s on book %d", tracker.ErrReviewNotFound, reviewer, bookID)
	}
	return review, nil
}

func (t *Tracker) saveLibrary(lib *tracker.Library) error {
	if lib == nil {
		return nil
	}
	owner, ok := t.users.Get(lib.Owner)
	if !ok {
		return fmt.Errorf("%w: %s", tracker.ErrUserNotFound, lib.Owner)
	}
	position := 0
	for i, l := range owner.Libraries() {
		if l.ID == lib.ID {
			position = i
			break
		}
	}
	if err := t.stores.Libraries.SaveLibrary(lib.Row(position), lib.ShelfRows(), lib.BookRows()); err != nil {
		return fmt.Errorf("failed to save library %d: %w", lib.ID, err)
	}
	return nil
}

func (t *Tracker) record(actor string, eventType entities.AuditEventType, action, entityType, entityID, description string) {
	if t.audit == nil {
		return
	}
	t.audit.LogAsync(&entities.AuditEvent{
		Actor:       actor,
		EventType:   eventType,
		Action:      action,
		Description: description,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
		CreatedAt:   t.now(),
	})
}
