// Package demo implements read-only demo mode. With DEMO_MODE set the
// server answers every read, and refuses every change apart from logging in
// and out, so a seeded catalog can be shown publicly.
package demo

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware blocks write operations in demo mode.
type Middleware struct {
	enabled bool
	allowed map[string]bool
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{
		enabled: enabled,
		allowed: map[string]bool{
			"/api/auth/login":  true,
			"/api/auth/logout": true,
		},
	}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m != nil && m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.IsEnabled() {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if m.allowed[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "This action is disabled in demo mode",
			"code":      "demo_mode",
			"demo_mode": true,
		})
	}
}

// Status handles GET /api/demo/status.
func (m *Middleware) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"demo_mode": m.IsEnabled()})
}
