package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/synthage/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
)

// LoginPath is where unauthenticated browser requests are sent.
const LoginPath = "/login/"

// UserLookup resolves the user behind a session.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
}

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	users          UserLookup
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(users UserLookup, sessionManager *SessionManager) *Middleware {
	publicPaths := map[string]bool{
		"/":            true,
		"/health":      true,
		"/ping":        true,
		LoginPath:      true,
		"/sign-up/":    true,
		"/favicon.ico": true,
	}

	return &Middleware{
		users:          users,
		sessionManager: sessionManager,
		publicPaths:    publicPaths,
	}
}

// Handler identifies the session user on every request and rejects
// anonymous requests to non-public paths.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := m.sessionUser(c); user != nil {
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyUsername, user.Username)
			c.Next()
			return
		}

		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// sessionUser returns the logged-in user, or nil.
func (m *Middleware) sessionUser(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

// isPublicPath checks if a path should be accessible without authentication.
func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// isAPIRequest determines if this is an API request vs web browser request.
func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.Contains(c.ContentType(), "application/json")
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if the request is anonymous.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// IsAuthenticated returns true if the request carries a logged-in session.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != 0
}
