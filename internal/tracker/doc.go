// Package tracker holds the in-memory reading-tracker model: accounts and
// friendships, the book catalog with its reviews, libraries and shelves,
// reading sessions, and recommendations.
//
// # Registries
//
// UserDirectory and BookDirectory are the only owners of User and Book
// instances. Everything else refers to users by username and to books by id,
// and resolves those through the directories:
//
//	users := tracker.NewUserDirectory()
//	books := tracker.NewBookDirectory()
//	alice, _ := users.Create("alice", "Alice", time.Now())
//	book, _ := books.Get(1)
//	session := alice.StartReading(book, time.Now())
//
// # Errors
//
// Failures wrap one of five kinds: ErrDuplicateIdentifier, ErrNotFound,
// ErrPermissionDenied, ErrInvalidArgument and ErrInvalidRelationship. Use
// errors.Is to classify them. Operations validate before they mutate.
//
// # Concurrency
//
// Nothing here is safe for concurrent use. Callers serialize access; see
// internal/services.
//
// # Persistence
//
// Export flattens the graph into a Snapshot of entities rows and Reconstruct
// rebuilds it. Per-entity Row methods give the same shapes for incremental
// saves.
package tracker
