package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
)

// AuthAuditor records login and logout attempts.
type AuthAuditor interface {
	LogAuth(actor, action string, success bool)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController handles the /api/auth endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	audit          AuthAuditor
}

// NewAuthController creates a new authentication controller. auditor may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, auditor AuthAuditor) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:    cfg.MaxLoginAttempts,
		WindowDuration: cfg.RateLimitWindow,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		audit:          auditor,
	}
}

// RegisterRoutes registers the auth endpoints on a group, usually /api/auth.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// Login checks a password and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.5)))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.logAuth(req.Username, "login", false)
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Printf("Login for %s failed: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check credentials"})
			return
		}
		ac.rateLimiter.RecordFailure(clientIP, req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	if err := ac.sessionManager.CreateSession(c.Request, user.Username); err != nil {
		log.Printf("Failed to create session for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	ac.logAuth(user.Username, "login", true)

	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	username := GetUsername(c)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Failed to destroy session for %s: %v", username, err)
	}
	if username != "" {
		ac.logAuth(username, "logout", true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the session user.
func (ac *AuthController) Me(c *gin.Context) {
	data := ac.sessionManager.GetSessionData(c.Request)
	if data == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": data.Username,
		"login_at": data.LoginAt,
	})
}

func (ac *AuthController) logAuth(actor, action string, success bool) {
	if ac.audit != nil {
		ac.audit.LogAuth(actor, action, success)
	}
}
