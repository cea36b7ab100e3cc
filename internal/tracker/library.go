package tracker

import (
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Built-in shelves, present in every library.
const (
	ShelfToRead           = "to_read"
	ShelfCurrentlyReading = "currently_reading"
	ShelfRead             = "read"
)

// DefaultLibraryName is the name of the primary library created with an account.
const DefaultLibraryName = "My Library"

// BuiltinShelves lists the built-in shelves in display order.
var BuiltinShelves = []string{ShelfToRead, ShelfCurrentlyReading, ShelfRead}

// Library is a named set of shelves owned by one user. Shelves hold book ids,
// and a book sits on at most one shelf of a library.
type Library struct {
	ID    int
	Name  string
	Owner string

	shelfOrder []string
	shelves    map[string][]int
}

func newLibrary(id int, name, owner string) *Library {
	l := &Library{
		ID:      id,
		Name:    name,
		Owner:   owner,
		shelves: make(map[string][]int, len(BuiltinShelves)),
	}
	for _, shelf := range BuiltinShelves {
		l.addShelf(shelf)
	}
	return l
}

func (l *Library) checkOwner(actor string) error {
	if actor != l.Owner {
		return ErrNotOwner
	}
	return nil
}

// HasShelf reports whether the library has a shelf with the given name.
func (l *Library) HasShelf(name string) bool {
	_, ok := l.shelves[name]
	return ok
}

// Shelves returns shelf names, built-ins first, then custom shelves in creation order.
func (l *Library) Shelves() []string {
	out := make([]string, len(l.shelfOrder))
	copy(out, l.shelfOrder)
	return out
}

// Books returns the ids on a shelf in insertion order.
func (l *Library) Books(shelf string) []int {
	books := l.shelves[shelf]
	out := make([]int, len(books))
	copy(out, books)
	return out
}

// Contents maps every shelf to a copy of its book ids.
func (l *Library) Contents() map[string][]int {
	out := make(map[string][]int, len(l.shelves))
	for _, shelf := range l.shelfOrder {
		out[shelf] = l.Books(shelf)
	}
	return out
}

// ShelfOf returns the shelf holding bookID.
func (l *Library) ShelfOf(bookID int) (string, bool) {
	for _, shelf := range l.shelfOrder {
		if indexOf(l.shelves[shelf], bookID) >= 0 {
			return shelf, true
		}
	}
	return "", false
}

// AddBook puts a book on a shelf. A book already on another shelf of this
// library is moved, so it never appears twice.
func (l *Library) AddBook(bookID int, shelf, actor string) error {
	if err := l.checkOwner(actor); err != nil {
		return err
	}
	if !l.HasShelf(shelf) {
		return ErrInvalidShelf
	}
	l.relocate(bookID, shelf)
	return nil
}

// RemoveBook takes a book off every shelf of the library.
func (l *Library) RemoveBook(bookID int, actor string) error {
	if err := l.checkOwner(actor); err != nil {
		return err
	}
	for _, shelf := range l.shelfOrder {
		l.shelves[shelf] = without(l.shelves[shelf], bookID)
	}
	return nil
}

// MoveBook removes a book from one shelf and adds it to another. Applying the
// same move twice leaves the library unchanged after the first call. A book
// found on a third shelf is taken off it as well.
func (l *Library) MoveBook(bookID int, from, to, actor string) error {
	if err := l.checkOwner(actor); err != nil {
		return err
	}
	if !l.HasShelf(from) || !l.HasShelf(to) {
		return ErrInvalidShelf
	}
	l.relocate(bookID, to)
	return nil
}

// CreateShelf adds an empty custom shelf.
func (l *Library) CreateShelf(name, actor string) error {
	if err := l.checkOwner(actor); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return ErrInvalidShelf
	}
	if l.HasShelf(name) {
		return ErrDuplicateShelf
	}
	l.addShelf(name)
	return nil
}

// Rename changes the library name.
func (l *Library) Rename(name, actor string) error {
	if err := l.checkOwner(actor); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return ErrInvalidLibraryName
	}
	l.Name = name
	return nil
}

// relocate places a book on shelf to and takes it off every other shelf,
// without permission checks. The shelf must exist.
func (l *Library) relocate(bookID int, to string) {
	for _, shelf := range l.shelfOrder {
		if shelf != to {
			l.shelves[shelf] = without(l.shelves[shelf], bookID)
		}
	}
	if indexOf(l.shelves[to], bookID) < 0 {
		l.shelves[to] = append(l.shelves[to], bookID)
	}
}

func (l *Library) addShelf(name string) {
	l.shelfOrder = append(l.shelfOrder, name)
	l.shelves[name] = nil
}

// Row returns the persisted form of the library. position is its index in
// the owner's library list.
func (l *Library) Row(position int) entities.Library {
	return entities.Library{ID: l.ID, Name: l.Name, Owner: l.Owner, Position: position}
}

func (l *Library) ShelfRows() []entities.LibraryShelf {
	rows := make([]entities.LibraryShelf, 0, len(l.shelfOrder))
	for i, shelf := range l.shelfOrder {
		rows = append(rows, entities.LibraryShelf{LibraryID: l.ID, Name: shelf, Position: i})
	}
	return rows
}

func (l *Library) BookRows() []entities.LibraryBook {
	var rows []entities.LibraryBook
	for _, shelf := range l.shelfOrder {
		for i, bookID := range l.shelves[shelf] {
			rows = append(rows, entities.LibraryBook{LibraryID: l.ID, BookID: bookID, Shelf: shelf, Position: i})
		}
	}
	return rows
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// without removes every occurrence of id, in place.
func without(ids []int, id int) []int {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
