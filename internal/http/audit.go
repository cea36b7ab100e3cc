package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?limit&offset&type&actor
//
// A logged-in user only sees their own events. With auth disabled the
// optional actor filter applies.
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, offset := parsePagination(c)

	actor := c.Query("actor")
	if auth.GetAuthType(c) == auth.AuthTypeSession {
		actor = auth.GetUsername(c)
	}

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.events.GetEventsByType(entities.AuditEventType(eventType), actor, limit, offset)
	} else {
		events, total, err = ac.events.GetEvents(actor, limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
