package tracker

import (
	"sort"
	"strings"
	"time"
)

// BookDirectory is the catalog registry: the one place a Book instance for a
// given id lives. It is a passive registry; loading an id twice replaces the
// earlier entry.
type BookDirectory struct {
	books map[int]*Book
	order []int
}

func NewBookDirectory() *BookDirectory {
	return &BookDirectory{books: make(map[int]*Book)}
}

// Load registers books by id. The last write wins on collision.
func (d *BookDirectory) Load(books ...*Book) {
	for _, b := range books {
		if b == nil {
			continue
		}
		if _, exists := d.books[b.ID]; !exists {
			d.order = append(d.order, b.ID)
		}
		d.books[b.ID] = b
	}
}

func (d *BookDirectory) Get(id int) (*Book, bool) {
	b, ok := d.books[id]
	return b, ok
}

// All returns every book in first-load order.
func (d *BookDirectory) All() []*Book {
	out := make([]*Book, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.books[id])
	}
	return out
}

func (d *BookDirectory) Len() int {
	return len(d.books)
}

// ForgetUser removes every review and like left by username.
func (d *BookDirectory) ForgetUser(username string) {
	for _, b := range d.books {
		b.forgetUser(username)
	}
}

// UserDirectory is the account registry. It also hands out library ids,
// which are unique across all users.
type UserDirectory struct {
	users         map[string]*User
	libraries     map[int]*Library
	nextLibraryID int
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		users:         make(map[string]*User),
		libraries:     make(map[int]*Library),
		nextLibraryID: 1,
	}
}

// Create registers a new account together with its primary library.
func (d *UserDirectory) Create(username, displayName string, at time.Time) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrInvalidUsername
	}
	if _, exists := d.users[username]; exists {
		return nil, ErrUserExists
	}
	u := newUser(username, displayName, at)
	d.users[username] = u
	d.attachLibrary(u, newLibrary(d.allocateLibraryID(), DefaultLibraryName, username))
	return u, nil
}

// Delete unregisters an account and removes it from every friend's set and
// from every recommendation it sent. The removed user is returned.
func (d *UserDirectory) Delete(username string) (*User, error) {
	u, ok := d.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	delete(d.users, username)

	for _, name := range u.Friends() {
		if friend, ok := d.users[name]; ok {
			delete(friend.friends, username)
		}
	}
	for _, other := range d.users {
		other.dropRecommendationsFrom(username)
	}
	for _, l := range u.libraries {
		delete(d.libraries, l.ID)
	}
	return u, nil
}

func (d *UserDirectory) Get(username string) (*User, bool) {
	u, ok := d.users[username]
	return u, ok
}

// All returns every user, sorted by username.
func (d *UserDirectory) All() []*User {
	out := make([]*User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (d *UserDirectory) Len() int {
	return len(d.users)
}

// CreateLibrary adds a library to the end of the user's library list.
func (d *UserDirectory) CreateLibrary(owner *User, name string) (*Library, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidLibraryName
	}
	if _, ok := d.users[owner.Username]; !ok {
		return nil, ErrUserNotFound
	}
	l := newLibrary(d.allocateLibraryID(), name, owner.Username)
	d.attachLibrary(owner, l)
	return l, nil
}

// Library finds a library by id across all users.
func (d *UserDirectory) Library(id int) (*Library, bool) {
	l, ok := d.libraries[id]
	return l, ok
}

func (d *UserDirectory) register(u *User) bool {
	if _, exists := d.users[u.Username]; exists {
		return false
	}
	d.users[u.Username] = u
	return true
}

func (d *UserDirectory) attachLibrary(owner *User, l *Library) {
	owner.libraries = append(owner.libraries, l)
	d.libraries[l.ID] = l
	if l.ID >= d.nextLibraryID {
		d.nextLibraryID = l.ID + 1
	}
}

func (d *UserDirectory) allocateLibraryID() int {
	id := d.nextLibraryID
	d.nextLibraryID++
	return id
}

func (u *User) dropRecommendationsFrom(username string) {
	kept := u.recommendations[:0]
	for _, r := range u.recommendations {
		if r.From != username {
			kept = append(kept, r)
		}
	}
	u.recommendations = kept
}
