package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BooksController exposes the catalog and the reviews on it.
type BooksController struct {
	books BookService
}

func NewBooksController(books BookService) *BooksController {
	return &BooksController{books: books}
}

// ListBooks handles GET /api/books.
func (bc *BooksController) ListBooks(c *gin.Context) {
	books := bc.books.ListBooks()
	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"count": len(books),
	})
}

// GetBook handles GET /api/books/:id and includes the reviews.
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.books.GetBook(id)
	if err != nil {
		respondTrackerError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

type reviewRequest struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Rating   int    `json:"rating"`
}

// AddReview handles POST /api/books/:id/reviews.
func (bc *BooksController) AddReview(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, req.Username)
	if !ok {
		return
	}

	review, err := bc.books.AddReview(id, actor, req.Text, req.Rating)
	if err != nil {
		respondTrackerError(c, err, "add review")
		return
	}
	respondCreated(c, review)
}

type likeRequest struct {
	Username string `json:"username"`
}

// LikeReview handles POST /api/books/:id/reviews/:reviewer/likes. The body
// names the liker.
func (bc *BooksController) LikeReview(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req likeRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, req.Username)
	if !ok {
		return
	}

	review, err := bc.books.LikeReview(id, c.Param("reviewer"), actor)
	if err != nil {
		respondTrackerError(c, err, "like review")
		return
	}
	c.JSON(http.StatusOK, review)
}

// UnlikeReview handles DELETE /api/books/:id/reviews/:reviewer/likes/:username.
func (bc *BooksController) UnlikeReview(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	actor, ok := resolveActor(c, c.Param("username"))
	if !ok {
		return
	}

	review, err := bc.books.UnlikeReview(id, c.Param("reviewer"), actor)
	if err != nil {
		respondTrackerError(c, err, "unlike review")
		return
	}
	c.JSON(http.StatusOK, review)
}
