package auth

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/bookshelf/internal/config"
)

func openSessionDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	cfg := config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: 24 * time.Hour,
		SecureCookies:   false,
	}

	sm, err := NewSessionManager(openSessionDB(t), cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// withSession runs fn inside scs's load/save cycle.
func withSession(t *testing.T, sm *SessionManager, fn func(r *http.Request)) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(r)
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t)

	if sm.SessionManager == nil {
		t.Fatal("inner session manager should not be nil")
	}
	if sm.Cookie.Name != "session" {
		t.Errorf("Expected cookie name 'session', got '%s'", sm.Cookie.Name)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("Cookie should be HttpOnly")
	}
	if sm.Cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("Expected SameSiteStrictMode, got %v", sm.Cookie.SameSite)
	}
	if sm.IdleTimeout != 12*time.Hour {
		t.Errorf("Expected idle timeout of half the lifetime, got %v", sm.IdleTimeout)
	}
}

func TestSessionManager_CreateSession(t *testing.T) {
	sm := setupSessionManager(t)

	withSession(t, sm, func(r *http.Request) {
		if sm.IsAuthenticated(r) {
			t.Error("Should not be authenticated before login")
		}
		if data := sm.GetSessionData(r); data != nil {
			t.Error("GetSessionData should return nil for unauthenticated request")
		}

		if err := sm.CreateSession(r, "alice"); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if !sm.IsAuthenticated(r) {
			t.Error("Should be authenticated after login")
		}
		if got := sm.GetUsername(r); got != "alice" {
			t.Errorf("Expected username 'alice', got '%s'", got)
		}

		data := sm.GetSessionData(r)
		if data == nil {
			t.Fatal("GetSessionData should not return nil after login")
		}
		if data.Username != "alice" {
			t.Errorf("Expected username 'alice', got '%s'", data.Username)
		}
		if data.LoginAt.IsZero() {
			t.Error("LoginAt should not be zero")
		}
	})
}

func TestSessionManager_DestroySession(t *testing.T) {
	sm := setupSessionManager(t)

	withSession(t, sm, func(r *http.Request) {
		if err := sm.CreateSession(r, "bob"); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if err := sm.DestroySession(r); err != nil {
			t.Fatalf("failed to destroy session: %v", err)
		}
		if sm.IsAuthenticated(r) {
			t.Error("Should not be authenticated after session destroy")
		}
	})
}

func TestSessionManager_SecureCookieConfig(t *testing.T) {
	cfg := config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: time.Hour,
		SecureCookies:   true,
	}

	sm, err := NewSessionManager(openSessionDB(t), cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	if !sm.Cookie.Secure {
		t.Error("Cookie.Secure should be true when SecureCookies is enabled")
	}
}
