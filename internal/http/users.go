package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// UsersController handles accounts and friendships.
type UsersController struct {
	users  UserService
	hasher PasswordHasher
}

func NewUsersController(users UserService, hasher PasswordHasher) *UsersController {
	return &UsersController{users: users, hasher: hasher}
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// CreateUser handles POST /api/users. Sign-up is public, so the new user is
// not an actor of the request.
func (uc *UsersController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := uc.hasher.HashPassword(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "hash password")
		}
		return
	}

	user, err := uc.users.CreateUser(req.Username, req.DisplayName, hash)
	if err != nil {
		respondTrackerError(c, err, "create user")
		return
	}
	respondCreated(c, user)
}

// ListUsers handles GET /api/users.
func (uc *UsersController) ListUsers(c *gin.Context) {
	users := uc.users.ListUsers()
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// GetUser handles GET /api/users/:username.
func (uc *UsersController) GetUser(c *gin.Context) {
	user, err := uc.users.GetUser(c.Param("username"))
	if err != nil {
		respondTrackerError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:username. Only the account itself
// may delete it.
func (uc *UsersController) DeleteUser(c *gin.Context) {
	actor, ok := resolveActor(c, c.Param("username"))
	if !ok {
		return
	}
	if err := uc.users.DeleteUser(actor); err != nil {
		respondTrackerError(c, err, "delete user")
		return
	}
	respondStatus(c, "deleted")
}

// AddFriend handles POST /api/users/:username/friends/:friend.
func (uc *UsersController) AddFriend(c *gin.Context) {
	actor, ok := resolveActor(c, c.Param("username"))
	if !ok {
		return
	}
	added, err := uc.users.AddFriend(actor, c.Param("friend"))
	if err != nil {
		respondTrackerError(c, err, "add friend")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "friends", "changed": added})
}

// RemoveFriend handles DELETE /api/users/:username/friends/:friend.
func (uc *UsersController) RemoveFriend(c *gin.Context) {
	actor, ok := resolveActor(c, c.Param("username"))
	if !ok {
		return
	}
	removed, err := uc.users.RemoveFriend(actor, c.Param("friend"))
	if err != nil {
		respondTrackerError(c, err, "remove friend")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed", "changed": removed})
}

// ListFriends handles GET /api/users/:username/friends.
func (uc *UsersController) ListFriends(c *gin.Context) {
	friends, err := uc.users.Friends(c.Param("username"))
	if err != nil {
		respondTrackerError(c, err, "list friends")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"friends": friends,
		"count":   len(friends),
	})
}
