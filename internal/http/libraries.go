package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LibrariesController manages libraries and their shelves. Every mutation
// names its acting user; the tracker rejects anyone but the owner.
type LibrariesController struct {
	libraries LibraryService
}

func NewLibrariesController(libraries LibraryService) *LibrariesController {
	return &LibrariesController{libraries: libraries}
}

type libraryNameRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type placeBookRequest struct {
	Username string `json:"username"`
	BookID   int    `json:"book_id" binding:"required"`
	Shelf    string `json:"shelf"`
}

type moveBookRequest struct {
	Username string `json:"username"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// ListLibraries handles GET /api/users/:username/libraries.
func (lc *LibrariesController) ListLibraries(c *gin.Context) {
	libraries, err := lc.libraries.Libraries(c.Param("username"))
	if err != nil {
		respondTrackerError(c, err, "list libraries")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"libraries": libraries,
		"count":     len(libraries),
	})
}

// GetLibrary handles GET /api/libraries/:id.
func (lc *LibrariesController) GetLibrary(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	library, err := lc.libraries.GetLibrary(id)
	if err != nil {
		respondTrackerError(c, err, "get library")
		return
	}
	c.JSON(http.StatusOK, library)
}

// CreateLibrary handles POST /api/users/:username/libraries.
func (lc *LibrariesController) CreateLibrary(c *gin.Context) {
	var req libraryNameRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, c.Param("username"))
	if !ok {
		return
	}

	library, err := lc.libraries.CreateLibrary(actor, req.Name)
	if err != nil {
		respondTrackerError(c, err, "create library")
		return
	}
	respondCreated(c, library)
}

// RenameLibrary handles PATCH /api/libraries/:id.
func (lc *LibrariesController) RenameLibrary(c *gin.Context) {
	id, actor, ok := lc.target(c)
	if !ok {
		return
	}
	var req libraryNameRequest
	if !bindJSON(c, &req) {
		return
	}
	if actor, ok = resolveActor(c, pick(req.Username, actor)); !ok {
		return
	}

	library, err := lc.libraries.RenameLibrary(id, actor, req.Name)
	if err != nil {
		respondTrackerError(c, err, "rename library")
		return
	}
	c.JSON(http.StatusOK, library)
}

// CreateShelf handles POST /api/libraries/:id/shelves.
func (lc *LibrariesController) CreateShelf(c *gin.Context) {
	id, actor, ok := lc.target(c)
	if !ok {
		return
	}
	var req libraryNameRequest
	if !bindJSON(c, &req) {
		return
	}
	if actor, ok = resolveActor(c, pick(req.Username, actor)); !ok {
		return
	}

	library, err := lc.libraries.CreateShelf(id, actor, req.Name)
	if err != nil {
		respondTrackerError(c, err, "create shelf")
		return
	}
	respondCreated(c, library)
}

// AddBook handles POST /api/libraries/:id/books. The book leaves whatever
// shelf of this library held it before.
func (lc *LibrariesController) AddBook(c *gin.Context) {
	id, actor, ok := lc.target(c)
	if !ok {
		return
	}
	var req placeBookRequest
	if !bindJSON(c, &req) {
		return
	}
	if actor, ok = resolveActor(c, pick(req.Username, actor)); !ok {
		return
	}

	library, err := lc.libraries.AddBookToLibrary(id, actor, req.BookID, req.Shelf)
	if err != nil {
		respondTrackerError(c, err, "add book to library")
		return
	}
	c.JSON(http.StatusOK, library)
}

// RemoveBook handles DELETE /api/libraries/:id/books/:bookId?username=.
func (lc *LibrariesController) RemoveBook(c *gin.Context) {
	id, actor, ok := lc.target(c)
	if !ok {
		return
	}
	bookID, ok := parseIntParam(c, "bookId")
	if !ok {
		return
	}
	if actor, ok = resolveActor(c, actor); !ok {
		return
	}

	library, err := lc.libraries.RemoveBookFromLibrary(id, actor, bookID)
	if err != nil {
		respondTrackerError(c, err, "remove book from library")
		return
	}
	c.JSON(http.StatusOK, library)
}

// MoveBook handles POST /api/libraries/:id/books/:bookId/move.
func (lc *LibrariesController) MoveBook(c *gin.Context) {
	id, actor, ok := lc.target(c)
	if !ok {
		return
	}
	bookID, ok := parseIntParam(c, "bookId")
	if !ok {
		return
	}
	var req moveBookRequest
	if !bindJSON(c, &req) {
		return
	}
	if actor, ok = resolveActor(c, pick(req.Username, actor)); !ok {
		return
	}

	library, err := lc.libraries.MoveBook(id, actor, bookID, req.From, req.To)
	if err != nil {
		respondTrackerError(c, err, "move book")
		return
	}
	c.JSON(http.StatusOK, library)
}

// target parses the library id and the optional ?username= actor.
func (lc *LibrariesController) target(c *gin.Context) (int, string, bool) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return 0, "", false
	}
	return id, c.Query("username"), true
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
