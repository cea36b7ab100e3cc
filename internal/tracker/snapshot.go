package tracker

import (
	"sort"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Snapshot is the flat, row-oriented form of the whole entity graph. It is
// what the store loads at startup and what exports write out.
type Snapshot struct {
	Books           []entities.Book           `json:"books"`
	Users           []entities.User           `json:"users"`
	Friendships     []entities.Friendship     `json:"friendships"`
	Libraries       []entities.Library        `json:"libraries"`
	Shelves         []entities.LibraryShelf   `json:"shelves"`
	LibraryBooks    []entities.LibraryBook    `json:"library_books"`
	Sessions        []entities.ReadingSession `json:"reading_sessions"`
	Reviews         []entities.Review         `json:"reviews"`
	ReviewLikes     []entities.ReviewLike     `json:"review_likes"`
	Recommendations []entities.Recommendation `json:"recommendations"`
}

// ReconstructStats counts what a reconstruction applied and skipped.
type ReconstructStats struct {
	Books           int
	Users           int
	Friendships     int
	Libraries       int
	LibraryBooks    int
	Sessions        int
	Reviews         int
	ReviewLikes     int
	Recommendations int

	// Skipped counts rows whose references could not be resolved or that
	// failed validation.
	Skipped int

	// CreatedLibraries holds primary libraries created for users that had
	// none in storage. Callers should persist them.
	CreatedLibraries []*Library
}

// Export flattens the current state of both directories.
func Export(users *UserDirectory, books *BookDirectory) Snapshot {
	var snap Snapshot

	for _, b := range books.All() {
		snap.Books = append(snap.Books, b.Row())
		for _, r := range b.reviews {
			snap.Reviews = append(snap.Reviews, r.Row())
			snap.ReviewLikes = append(snap.ReviewLikes, r.LikeRows()...)
		}
	}

	for _, u := range users.All() {
		snap.Users = append(snap.Users, u.Row())
		snap.Friendships = append(snap.Friendships, u.FriendshipRows()...)
		for i, l := range u.libraries {
			snap.Libraries = append(snap.Libraries, l.Row(i))
			snap.Shelves = append(snap.Shelves, l.ShelfRows()...)
			snap.LibraryBooks = append(snap.LibraryBooks, l.BookRows()...)
		}
		for _, s := range u.ActiveReads() {
			snap.Sessions = append(snap.Sessions, s.Row())
		}
		for _, r := range u.recommendations {
			snap.Recommendations = append(snap.Recommendations, r.Row())
		}
	}

	return snap
}

// Reconstruct rebuilds the entity graph from rows into the given directories.
// Rows are applied in dependency order: books, users, friendships, libraries
// and shelves, reading sessions, reviews and likes, recommendations. Every
// reference is resolved through the directories; rows pointing at missing
// users or books are skipped. Friendship rows are trusted to be symmetric.
func Reconstruct(users *UserDirectory, books *BookDirectory, snap Snapshot) ReconstructStats {
	var stats ReconstructStats

	for _, row := range snap.Books {
		books.Load(NewBook(row))
		stats.Books++
	}

	for _, row := range snap.Users {
		if !users.register(newUser(row.Username, row.DisplayName, row.CreatedAt)) {
			stats.Skipped++
			continue
		}
		stats.Users++
	}

	for _, row := range snap.Friendships {
		u, ok1 := users.Get(row.User1)
		_, ok2 := users.Get(row.User2)
		if !ok1 || !ok2 || row.User1 == row.User2 {
			stats.Skipped++
			continue
		}
		u.friends[row.User2] = struct{}{}
		stats.Friendships++
	}

	reconstructLibraries(users, books, snap, &stats)

	for _, row := range snap.Sessions {
		u, okUser := users.Get(row.User)
		b, okBook := books.Get(row.BookID)
		if !okUser || !okBook {
			stats.Skipped++
			continue
		}
		if _, exists := u.activeReads[b.ID]; exists {
			stats.Skipped++
			continue
		}
		session := newReadingSession(u.Username, b, row.StartedAt)
		session.CurrentPage = session.clamp(row.CurrentPage)
		session.LastReadAt = row.LastReadAt
		u.activeReads[b.ID] = session
		stats.Sessions++
	}

	for _, row := range snap.Reviews {
		b, okBook := books.Get(row.BookID)
		_, okUser := users.Get(row.User)
		if !okBook || !okUser {
			stats.Skipped++
			continue
		}
		if _, err := b.AddReview(row.User, row.Text, row.Rating, row.CreatedAt); err != nil {
			stats.Skipped++
			continue
		}
		stats.Reviews++
	}

	for _, row := range snap.ReviewLikes {
		b, okBook := books.Get(row.BookID)
		_, okLiker := users.Get(row.Liker)
		if !okBook || !okLiker {
			stats.Skipped++
			continue
		}
		review, ok := b.ReviewBy(row.Reviewer)
		if !ok {
			stats.Skipped++
			continue
		}
		if err := review.Like(row.Liker); err != nil {
			stats.Skipped++
			continue
		}
		stats.ReviewLikes++
	}

	recs := make([]entities.Recommendation, len(snap.Recommendations))
	copy(recs, snap.Recommendations)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	for _, row := range recs {
		_, okFrom := users.Get(row.FromUser)
		to, okTo := users.Get(row.ToUser)
		_, okBook := books.Get(row.BookID)
		if !okFrom || !okTo || !okBook {
			stats.Skipped++
			continue
		}
		to.recommendations = append(to.recommendations, &Recommendation{
			ID:      row.ID,
			From:    row.FromUser,
			To:      row.ToUser,
			BookID:  row.BookID,
			Message: row.Message,
			Date:    row.Date,
		})
		stats.Recommendations++
	}

	return stats
}

func reconstructLibraries(users *UserDirectory, books *BookDirectory, snap Snapshot, stats *ReconstructStats) {
	libs := make([]entities.Library, len(snap.Libraries))
	copy(libs, snap.Libraries)
	sort.SliceStable(libs, func(i, j int) bool {
		if libs[i].Owner != libs[j].Owner {
			return libs[i].Owner < libs[j].Owner
		}
		if libs[i].Position != libs[j].Position {
			return libs[i].Position < libs[j].Position
		}
		return libs[i].ID < libs[j].ID
	})
	for _, row := range libs {
		owner, ok := users.Get(row.Owner)
		if !ok {
			stats.Skipped++
			continue
		}
		if _, exists := users.Library(row.ID); exists {
			stats.Skipped++
			continue
		}
		users.attachLibrary(owner, newLibrary(row.ID, row.Name, owner.Username))
		stats.Libraries++
	}

	shelves := make([]entities.LibraryShelf, len(snap.Shelves))
	copy(shelves, snap.Shelves)
	sort.SliceStable(shelves, func(i, j int) bool {
		if shelves[i].LibraryID != shelves[j].LibraryID {
			return shelves[i].LibraryID < shelves[j].LibraryID
		}
		return shelves[i].Position < shelves[j].Position
	})
	for _, row := range shelves {
		l, ok := users.Library(row.LibraryID)
		if !ok {
			stats.Skipped++
			continue
		}
		if !l.HasShelf(row.Name) {
			l.addShelf(row.Name)
		}
	}

	placements := make([]entities.LibraryBook, len(snap.LibraryBooks))
	copy(placements, snap.LibraryBooks)
	sort.SliceStable(placements, func(i, j int) bool {
		if placements[i].LibraryID != placements[j].LibraryID {
			return placements[i].LibraryID < placements[j].LibraryID
		}
		return placements[i].Position < placements[j].Position
	})
	for _, row := range placements {
		l, okLib := users.Library(row.LibraryID)
		_, okBook := books.Get(row.BookID)
		if !okLib || !okBook || row.Shelf == "" {
			stats.Skipped++
			continue
		}
		// Shelves referenced only by placements predate the shelf table.
		if !l.HasShelf(row.Shelf) {
			l.addShelf(row.Shelf)
		}
		l.relocate(row.BookID, row.Shelf)
		stats.LibraryBooks++
	}

	for _, u := range users.All() {
		if len(u.libraries) > 0 {
			continue
		}
		l := newLibrary(users.allocateLibraryID(), DefaultLibraryName, u.Username)
		users.attachLibrary(u, l)
		stats.CreatedLibraries = append(stats.CreatedLibraries, l)
	}
}
