package users

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Friendship{},
		&entities.Library{},
		&entities.LibraryShelf{},
		&entities.LibraryBook{},
		&entities.ReadingSession{},
		&entities.Review{},
		&entities.ReviewLike{},
		&entities.Recommendation{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db), db
}

func createUsers(t *testing.T, repo *Repository, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, repo.CreateUser(&entities.User{Username: name, DisplayName: name, CreatedAt: time.Now()}))
	}
}

func TestRepository_CreateUser(t *testing.T) {
	repo, _ := setupTestDB(t)

	err := repo.CreateUser(&entities.User{Username: "alice", DisplayName: "Alice", PasswordHash: "hash"})
	require.NoError(t, err)

	user, err := repo.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, "hash", user.PasswordHash)

	err = repo.CreateUser(&entities.User{Username: "alice"})
	assert.Error(t, err, "username is the primary key")

	_, err = repo.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_SetPasswordHash(t *testing.T) {
	repo, _ := setupTestDB(t)
	createUsers(t, repo, "alice")

	require.NoError(t, repo.SetPasswordHash("alice", "new-hash"))
	user, err := repo.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.PasswordHash)

	assert.ErrorIs(t, repo.SetPasswordHash("nobody", "x"), ErrUserNotFound)
}

func TestRepository_Friendships(t *testing.T) {
	repo, _ := setupTestDB(t)
	createUsers(t, repo, "alice", "bob", "carol")

	require.NoError(t, repo.AddFriendship("alice", "bob"))
	require.NoError(t, repo.AddFriendship("bob", "alice"), "re-adding is harmless")
	require.NoError(t, repo.AddFriendship("alice", "carol"))

	friends, err := repo.GetFriends("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, friends)

	friends, err = repo.GetFriends("bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, friends)

	all, err := repo.GetAllFriendships()
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, repo.RemoveFriendship("bob", "alice"))
	friends, err = repo.GetFriends("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, friends)
	friends, err = repo.GetFriends("bob")
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestRepository_DeleteUserCascades(t *testing.T) {
	repo, db := setupTestDB(t)
	createUsers(t, repo, "alice", "bob")
	require.NoError(t, repo.AddFriendship("alice", "bob"))

	msg := "read it"
	require.NoError(t, db.Create(&entities.Library{ID: 1, Name: "My Library", Owner: "alice"}).Error)
	require.NoError(t, db.Create(&entities.Library{ID: 2, Name: "My Library", Owner: "bob"}).Error)
	require.NoError(t, db.Create(&entities.LibraryShelf{LibraryID: 1, Name: "signed"}).Error)
	require.NoError(t, db.Create(&entities.LibraryBook{LibraryID: 1, BookID: 7, Shelf: "read"}).Error)
	require.NoError(t, db.Create(&entities.LibraryBook{LibraryID: 2, BookID: 7, Shelf: "read"}).Error)
	require.NoError(t, db.Create(&entities.ReadingSession{User: "alice", BookID: 7, CurrentPage: 3}).Error)
	require.NoError(t, db.Create(&entities.Review{User: "alice", BookID: 7, Rating: 5}).Error)
	require.NoError(t, db.Create(&entities.Review{User: "bob", BookID: 7, Rating: 2}).Error)
	require.NoError(t, db.Create(&entities.ReviewLike{Reviewer: "bob", BookID: 7, Liker: "alice"}).Error)
	require.NoError(t, db.Create(&entities.Recommendation{FromUser: "alice", ToUser: "bob", BookID: 7, Message: &msg}).Error)
	require.NoError(t, db.Create(&entities.Recommendation{FromUser: "bob", ToUser: "alice", BookID: 7}).Error)

	require.NoError(t, repo.DeleteUser("alice"))

	count := func(model any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 1, count(&entities.User{}))
	assert.EqualValues(t, 0, count(&entities.Friendship{}))
	assert.EqualValues(t, 1, count(&entities.Library{}))
	assert.EqualValues(t, 0, count(&entities.LibraryShelf{}))
	assert.EqualValues(t, 1, count(&entities.LibraryBook{}))
	assert.EqualValues(t, 0, count(&entities.ReadingSession{}))
	assert.EqualValues(t, 1, count(&entities.Review{}))
	assert.EqualValues(t, 0, count(&entities.ReviewLike{}))
	assert.EqualValues(t, 0, count(&entities.Recommendation{}))

	assert.ErrorIs(t, repo.DeleteUser("alice"), ErrUserNotFound)
}
