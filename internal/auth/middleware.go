package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
)

// Context keys for user data
const (
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type" // "session", "anonymous" or "none"
)

// AuthType indicates how the acting user of a request is determined
type AuthType string

const (
	AuthTypeNone      AuthType = "none"      // Auth disabled, the request names its actor
	AuthTypeSession   AuthType = "session"   // Logged-in session user
	AuthTypeAnonymous AuthType = "anonymous" // Auth enabled, public route, no session
)

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicRoutes   map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	publicRoutes := map[string]bool{
		"GET /health":          true,
		"GET /ping":            true,
		"POST /api/auth/login": true,
		"POST /api/users":      true, // Sign-up
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicRoutes:   publicRoutes,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode != config.AuthModeLocal {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if username := m.trySessionAuth(c); username != "" {
			c.Set(ContextKeyUsername, username)
			c.Set(ContextKeyAuthType, AuthTypeSession)
			c.Next()
			return
		}

		if m.isPublicRoute(c) {
			c.Set(ContextKeyAuthType, AuthTypeAnonymous)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": ErrAuthRequired.Error(),
		})
	}
}

// trySessionAuth returns the session user, or "" when there is no session
// or its account has since been deleted.
func (m *Middleware) trySessionAuth(c *gin.Context) string {
	if m.sessionManager == nil {
		return ""
	}

	username := m.sessionManager.GetUsername(c.Request)
	if username == "" {
		return ""
	}

	exists, err := m.service.UserExists(username)
	if err != nil {
		log.Printf("Failed to check session user %s: %v", username, err)
		return ""
	}
	if !exists {
		_ = m.sessionManager.DestroySession(c.Request)
		return ""
	}

	return username
}

func (m *Middleware) isPublicRoute(c *gin.Context) bool {
	return m.publicRoutes[c.Request.Method+" "+c.Request.URL.Path]
}

// GetUsername retrieves the session user from the context.
// Returns "" if not authenticated or auth is disabled.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// ResolveActor returns the user a request acts for. With auth disabled it
// is the user the request names. With a session it is the session user,
// and naming anyone else fails with ErrActorMismatch.
func ResolveActor(c *gin.Context, named string) (string, error) {
	switch GetAuthType(c) {
	case AuthTypeSession:
		username := GetUsername(c)
		if named != "" && named != username {
			return "", ErrActorMismatch
		}
		return username, nil
	case AuthTypeAnonymous:
		return "", ErrAuthRequired
	default:
		return named, nil
	}
}
