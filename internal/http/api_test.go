package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/demo"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/tracker"
)

type apiServer struct {
	router  *gin.Engine
	db      *database.Database
	tracker *services.Tracker
	audit   *audit.Service
}

// setupAPI wires a real sqlite database, the tracker and the router the way
// the server does, with a small seeded catalog.
func setupAPI(t *testing.T, mode config.AuthMode) *apiServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auditService := audit.NewService(db.Audit)
	t.Cleanup(auditService.Wait)

	tr := services.NewTracker(services.Stores{
		Users:           db.Users,
		Catalog:         db.Catalog,
		Libraries:       db.Libraries,
		Sessions:        db.Reading,
		Recommendations: db.Recommendations,
		Snapshot:        db,
	}, auditService)
	_, err = tr.Load(context.Background())
	require.NoError(t, err)
	_, err = tr.ImportBooks([]entities.Book{
		{ID: 1, Name: "Dune", Author: "Frank Herbert", TotalPages: 10},
		{ID: 2, Name: "Solaris", Author: "Stanislaw Lem", TotalPages: 200},
	})
	require.NoError(t, err)

	authCfg := config.Auth{
		Mode:             mode,
		SessionLifetime:  time.Hour,
		BcryptCost:       bcrypt.MinCost,
		SecureCookies:    false,
		MaxLoginAttempts: 5,
		RateLimitWindow:  time.Minute,
	}
	authService := auth.NewService(db.Users, authCfg)

	rc := RouterConfig{
		Tracker:       tr,
		Database:      db,
		AuditReader:   auditService,
		ExportAuditor: auditService,
		AuthAuditor:   auditService,
		SettingsAudit: auditService,
		AuthService:   authService,
		AuthConfig:    authCfg,
		Version:       "test",
	}
	if mode == config.AuthModeLocal {
		sqlDB, err := db.DB.DB()
		require.NoError(t, err)
		sm, err := auth.NewSessionManager(sqlDB, authCfg)
		require.NoError(t, err)
		ctrl := auth.NewAuthController(authService, sm, authCfg, auditService)
		t.Cleanup(ctrl.Stop)

		rc.SessionManager = sm
		rc.AuthMiddleware = auth.NewMiddleware(authService, sm, authCfg)
		rc.AuthController = ctrl
	}

	return &apiServer{router: NewRouter(rc), db: db, tracker: tr, audit: auditService}
}

func (s *apiServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiServer) createUser(t *testing.T, username, password string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/users", gin.H{"username": username, "display_name": username, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAPI_Ping(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)

	w := s.do(t, http.MethodGet, "/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAPI_Users(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)
	s.createUser(t, "alice", "")

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/users", gin.H{"username": "alice"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeDuplicate, decode[ErrorResponse](t, w).Code)
	})

	t.Run("missing username is rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/users", gin.H{"display_name": "nobody"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("new user has a primary library", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		user := decode[services.UserView](t, w)
		assert.Equal(t, "alice", user.Username)
		require.Len(t, user.Libraries, 1)
		var shelves []string
		for _, shelf := range user.Libraries[0].Shelves {
			shelves = append(shelves, shelf.Name)
		}
		assert.Equal(t, []string{tracker.ShelfToRead, tracker.ShelfCurrentlyReading, tracker.ShelfRead}, shelves)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/nobody", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])
	})

	t.Run("delete", func(t *testing.T) {
		s.createUser(t, "temp", "")
		w := s.do(t, http.MethodDelete, "/api/users/temp", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, "/api/users/temp", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAPI_FriendsAndRecommendations(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)
	s.createUser(t, "alice", "")
	s.createUser(t, "bob", "")
	s.createUser(t, "carol", "")

	recommend := gin.H{"from_user": "alice", "to_user": "bob", "book_id": 1, "message": "read it"}

	w := s.do(t, http.MethodPost, "/api/recommend", recommend)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "strangers cannot recommend")

	w = s.do(t, http.MethodPost, "/api/users/alice/friends/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["changed"])

	w = s.do(t, http.MethodGet, "/api/users/bob/friends", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	w = s.do(t, http.MethodPost, "/api/recommend", recommend)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/users/bob/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	recs := decode[struct {
		Recommendations []services.RecommendationView `json:"recommendations"`
	}](t, w)
	require.Len(t, recs.Recommendations, 1)
	assert.Equal(t, "alice", recs.Recommendations[0].FromUser)
	require.NotNil(t, recs.Recommendations[0].Message)
	assert.Equal(t, "read it", *recs.Recommendations[0].Message)

	w = s.do(t, http.MethodPost, "/api/recommend", gin.H{"from_user": "alice", "to_user": "bob", "book_id": 99})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/users/alice/friends/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/users/alice/friends/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["changed"])
}

func TestAPI_BooksAndReviews(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)
	s.createUser(t, "alice", "")
	s.createUser(t, "bob", "")

	w := s.do(t, http.MethodGet, "/api/books/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[services.BookView](t, w).AvgRating)

	w = s.do(t, http.MethodPost, "/api/books/1/reviews", gin.H{"username": "alice", "text": "Spice", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/books/1/reviews", gin.H{"username": "alice", "text": "Spice", "rating": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/books/1/reviews", gin.H{"username": "alice", "text": "Again", "rating": 5})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/books/1/reviews/alice/likes", gin.H{"username": "bob"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[services.ReviewView](t, w).Likes)

	w = s.do(t, http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	books := decode[struct {
		Books []services.BookView `json:"books"`
	}](t, w)
	require.Len(t, books.Books, 2)
	require.NotNil(t, books.Books[0].AvgRating)
	assert.InDelta(t, 4.0, *books.Books[0].AvgRating, 0.001)

	w = s.do(t, http.MethodDelete, "/api/books/1/reviews/alice/likes/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[services.ReviewView](t, w).Likes)

	w = s.do(t, http.MethodGet, "/api/books/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Reading(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)
	s.createUser(t, "alice", "")

	alice, err := s.tracker.GetUser("alice")
	require.NoError(t, err)
	primary := alice.Libraries[0].ID
	_, err = s.tracker.AddBookToLibrary(primary, "alice", 1, tracker.ShelfToRead)
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/reading/start", gin.H{"username": "alice", "book_id": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[services.SessionView](t, w).CurrentPage)

	t.Run("unknown direction is rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/reading/turn", gin.H{"username": "alice", "book_id": 1, "direction": "sideways"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("count below one is rejected", func(t *testing.T) {
		for _, count := range []int{0, -5} {
			w := s.do(t, http.MethodPost, "/api/reading/turn", gin.H{"username": "alice", "book_id": 1, "direction": "forward", "count": count})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})

	t.Run("count defaults to one", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/reading/turn", gin.H{"username": "alice", "book_id": 1, "direction": "forward"})
		require.Equal(t, http.StatusOK, w.Code)
		result := decode[services.TurnResult](t, w)
		assert.Equal(t, 2, result.Session.CurrentPage)
		assert.False(t, result.Completed)
	})

	w = s.do(t, http.MethodGet, "/api/users/alice/reading", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])

	w = s.do(t, http.MethodPost, "/api/reading/turn", gin.H{"username": "alice", "book_id": 1, "direction": "forward", "count": 50})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[services.TurnResult](t, w)
	assert.True(t, result.Completed)
	assert.Equal(t, 10, result.Session.CurrentPage)

	w = s.do(t, http.MethodGet, "/api/libraries/"+strconv.Itoa(primary), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{1}, shelfBooks(decode[services.LibraryView](t, w), tracker.ShelfRead))

	t.Run("stopping without a session succeeds", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/reading/stop", gin.H{"username": "alice", "book_id": 2})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]any](t, w)
		assert.Nil(t, body["session"])
		assert.Equal(t, false, body["finished"])
	})

	t.Run("turning without a session is not found", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/reading/turn", gin.H{"username": "alice", "book_id": 2, "direction": "back"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAPI_Libraries(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)
	s.createUser(t, "alice", "")
	s.createUser(t, "bob", "")

	w := s.do(t, http.MethodPost, "/api/users/alice/libraries", gin.H{"name": "Work"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lib := decode[services.LibraryView](t, w)
	path := "/api/libraries/" + strconv.Itoa(lib.ID)

	w = s.do(t, http.MethodPatch, path, gin.H{"username": "bob", "name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPatch, path, gin.H{"username": "alice", "name": "Office"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Office", decode[services.LibraryView](t, w).Name)

	w = s.do(t, http.MethodPost, path+"/shelves", gin.H{"username": "alice", "name": "signed"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, path+"/shelves", gin.H{"username": "alice", "name": "signed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, path+"/books", gin.H{"username": "alice", "book_id": 2, "shelf": "signed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{2}, shelfBooks(decode[services.LibraryView](t, w), "signed"))

	w = s.do(t, http.MethodPost, path+"/books/2/move", gin.H{"username": "alice", "from": "signed", "to": tracker.ShelfRead})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[services.LibraryView](t, w)
	assert.Empty(t, shelfBooks(moved, "signed"))
	assert.Equal(t, []int{2}, shelfBooks(moved, tracker.ShelfRead))

	w = s.do(t, http.MethodDelete, path+"/books/2?username=bob", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, path+"/books/2?username=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, shelfBooks(decode[services.LibraryView](t, w), tracker.ShelfRead))

	w = s.do(t, http.MethodDelete, path+"/books/2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "no actor named")

	w = s.do(t, http.MethodGet, "/api/users/alice/libraries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode[map[string]any](t, w)["count"])

	w = s.do(t, http.MethodGet, "/api/libraries/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ExportAndAudit(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)
	s.createUser(t, "alice", "secret password")

	w := s.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "snapshot-")
	assert.Contains(t, w.Body.String(), `"alice"`)
	assert.NotContains(t, w.Body.String(), "password")

	s.audit.Wait()

	w = s.do(t, http.MethodGet, "/api/audit?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Data  []entities.AuditEvent `json:"data"`
		Total int64                 `json:"total"`
		Limit int                   `json:"limit"`
	}](t, w)
	assert.Equal(t, 10, page.Limit)
	assert.GreaterOrEqual(t, page.Total, int64(2))

	w = s.do(t, http.MethodGet, "/api/audit?type="+string(entities.AuditEventExport), nil)
	require.Equal(t, http.StatusOK, w.Code)
	exports := decode[struct {
		Data []entities.AuditEvent `json:"data"`
	}](t, w)
	require.Len(t, exports.Data, 1)
	assert.Equal(t, entities.AuditEventExport, exports.Data[0].EventType)
}

func TestAPI_LocalMode(t *testing.T) {
	s := setupAPI(t, config.AuthModeLocal)

	w := s.do(t, http.MethodPost, "/api/users", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "password is mandatory")

	s.createUser(t, "alice", "alice password 1")
	s.createUser(t, "bob", "bob password 123")

	w = s.do(t, http.MethodPost, "/api/reading/start", gin.H{"username": "alice", "book_id": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "alice password 1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	t.Run("session user acts", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/reading/start", gin.H{"book_id": 1}, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "alice", decode[services.SessionView](t, w).Username)
	})

	t.Run("acting for someone else is forbidden", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/reading/start", gin.H{"username": "bob", "book_id": 1}, cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, http.MethodDelete, "/api/users/bob", nil, cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("me", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
	})

	t.Run("audit is scoped to the session user", func(t *testing.T) {
		s.audit.Wait()
		w := s.do(t, http.MethodGet, "/api/audit?actor=bob", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[struct {
			Data []entities.AuditEvent `json:"data"`
		}](t, w)
		require.NotEmpty(t, page.Data)
		for _, e := range page.Data {
			assert.Equal(t, "alice", e.Actor)
		}
	})
}

func shelfBooks(lib services.LibraryView, name string) []int {
	for _, shelf := range lib.Shelves {
		if shelf.Name == name {
			return shelf.Books
		}
	}
	return nil
}

func TestAPI_DemoMode(t *testing.T) {
	s := setupAPI(t, config.AuthModeNone)
	s.createUser(t, "alice", "")
	s.router = NewRouter(RouterConfig{
		Tracker:        s.tracker,
		Database:       s.db,
		DemoMiddleware: demo.NewMiddleware(true),
	})

	w := s.do(t, http.MethodPost, "/api/reading/start", gin.H{"username": "alice", "book_id": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/demo/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["demo_mode"])
}
