package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// StatusResponse acknowledges an operation that has nothing else to return.
type StatusResponse struct {
	Status string `json:"status"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// Error codes, one per failure kind.
const (
	CodeDuplicate           = "duplicate_identifier"
	CodeNotFound            = "not_found"
	CodePermissionDenied    = "permission_denied"
	CodeInvalidArgument     = "invalid_argument"
	CodeInvalidRelationship = "invalid_relationship"
	CodeAuthRequired        = "auth_required"
)

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalidArgument})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondTrackerError maps a domain error to its HTTP status. Anything that
// is not a known kind is a store failure and answered with 500.
func respondTrackerError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, tracker.ErrDuplicateIdentifier):
		respondError(c, http.StatusConflict, err.Error(), CodeDuplicate)
	case errors.Is(err, tracker.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, tracker.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, err.Error(), CodePermissionDenied)
	case errors.Is(err, tracker.ErrInvalidArgument):
		respondError(c, http.StatusBadRequest, err.Error(), CodeInvalidArgument)
	case errors.Is(err, tracker.ErrInvalidRelationship):
		respondError(c, http.StatusUnprocessableEntity, err.Error(), CodeInvalidRelationship)
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

func respondStatus(c *gin.Context, status string) {
	c.JSON(http.StatusOK, StatusResponse{Status: status})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Actor Resolution ---

// resolveActor returns the user the request acts for, or responds with 401
// or 403 and returns false.
func resolveActor(c *gin.Context, named string) (string, bool) {
	actor, err := auth.ResolveActor(c, named)
	switch {
	case errors.Is(err, auth.ErrAuthRequired):
		respondError(c, http.StatusUnauthorized, err.Error(), CodeAuthRequired)
		return "", false
	case errors.Is(err, auth.ErrActorMismatch):
		respondError(c, http.StatusForbidden, err.Error(), CodePermissionDenied)
		return "", false
	case err != nil:
		respondInternalError(c, err, "resolve actor")
		return "", false
	}
	if actor == "" {
		respondBadRequest(c, "username is required")
		return "", false
	}
	return actor, true
}

// --- Parameter Parsing ---

// parseIntParam extracts a positive integer from URL parameters.
// Returns the parsed value or responds with a 400 error and returns 0, false.
func parseIntParam(c *gin.Context, paramName string) (int, bool) {
	id, err := strconv.Atoi(c.Param(paramName))
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body or responds with 400.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// parsePagination reads limit and offset, clamping limit to [1, 100].
func parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
