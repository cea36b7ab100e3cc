package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/tracker"
)

// ReadingController drives reading sessions.
type ReadingController struct {
	reading ReadingService
}

func NewReadingController(reading ReadingService) *ReadingController {
	return &ReadingController{reading: reading}
}

type readingRequest struct {
	Username string `json:"username"`
	BookID   int    `json:"book_id" binding:"required"`
}

type turnRequest struct {
	Username  string `json:"username"`
	BookID    int    `json:"book_id" binding:"required"`
	Direction string `json:"direction"`
	Count     *int   `json:"count"`
}

// StartReading handles POST /api/reading/start.
func (rc *ReadingController) StartReading(c *gin.Context) {
	var req readingRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, req.Username)
	if !ok {
		return
	}

	session, err := rc.reading.StartReading(actor, req.BookID)
	if err != nil {
		respondTrackerError(c, err, "start reading")
		return
	}
	c.JSON(http.StatusOK, session)
}

// TurnPage handles POST /api/reading/turn. count defaults to 1. An unknown
// direction is rejected here; the tracker would ignore it.
func (rc *ReadingController) TurnPage(c *gin.Context) {
	var req turnRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, req.Username)
	if !ok {
		return
	}
	direction, err := tracker.ParseDirection(req.Direction)
	if err != nil {
		respondTrackerError(c, err, "turn page")
		return
	}
	count := 1
	if req.Count != nil {
		count = *req.Count
	}
	if count < 1 {
		respondTrackerError(c, tracker.ErrInvalidPageCount, "turn page")
		return
	}

	result, err := rc.reading.TurnPage(actor, req.BookID, direction, count)
	if err != nil {
		respondTrackerError(c, err, "turn page")
		return
	}
	c.JSON(http.StatusOK, result)
}

// StopReading handles POST /api/reading/stop. Stopping a book that is not
// being read succeeds with a null session.
func (rc *ReadingController) StopReading(c *gin.Context) {
	var req readingRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := resolveActor(c, req.Username)
	if !ok {
		return
	}

	result, err := rc.reading.StopReading(actor, req.BookID)
	if err != nil {
		respondTrackerError(c, err, "stop reading")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "stopped",
		"session":  result.Session,
		"finished": result.Finished,
	})
}

// ListReading handles GET /api/users/:username/reading.
func (rc *ReadingController) ListReading(c *gin.Context) {
	sessions, err := rc.reading.ActiveReads(c.Param("username"))
	if err != nil {
		respondTrackerError(c, err, "list reading")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
