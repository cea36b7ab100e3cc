package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookshelf/internal/tracker"
)

func TestRespondTrackerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{tracker.ErrUserExists, http.StatusConflict, CodeDuplicate},
		{tracker.ErrBookNotFound, http.StatusNotFound, CodeNotFound},
		{tracker.ErrNotOwner, http.StatusForbidden, CodePermissionDenied},
		{tracker.ErrInvalidRating, http.StatusBadRequest, CodeInvalidArgument},
		{tracker.ErrNotFriends, http.StatusUnprocessableEntity, CodeInvalidRelationship},
		{fmt.Errorf("failed to save library: %w", tracker.ErrLibraryNotFound), http.StatusNotFound, CodeNotFound},
		{errors.New("disk I/O error"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondTrackerError(c, tt.err, "test")

			assert.Equal(t, tt.status, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", resp.Error)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query          string
		limit, offset int
	}{
		{"", 25, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=0", 25, 0},
		{"?limit=500", 25, 0},
		{"?limit=abc&offset=-5", 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/api/audit"+tt.query, nil)

			limit, offset := parsePagination(c)

			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestParseIntParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, value := range []string{"0", "-1", "x"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: value}}

		_, ok := parseIntParam(c, "id")

		assert.False(t, ok, value)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}
