package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// protectedRouter wires sessions and the auth middleware around a few
// test routes. /test-login/:username logs in as the given user.
func protectedRouter(ta *testAuth) *gin.Engine {
	router := gin.New()
	router.Use(ta.sm.SessionLoadSave())
	// Registered before the auth middleware so it stays reachable
	router.GET("/test-login/:username", func(c *gin.Context) {
		user, err := ta.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		_ = ta.sm.CreateSession(c.Request, user)
		c.Status(http.StatusNoContent)
	})
	router.Use(NewMiddleware(ta.svc, ta.sm).Handler())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "authenticated": IsAuthenticated(c)})
	})
	router.GET("/static/app.css", func(c *gin.Context) {
		c.String(http.StatusOK, "body{}")
	})
	router.GET("/dashboard/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})
	router.GET("/api/audit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"events": []string{}})
	})
	return router
}

func TestMiddleware_PublicPaths(t *testing.T) {
	router := protectedRouter(setupAuth(t))

	for _, path := range []string{"/", "/static/app.css"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"user_id":0,"authenticated":false}`, rr.Body.String())
}

func TestMiddleware_ProtectedPath_RedirectsToLogin(t *testing.T) {
	router := protectedRouter(setupAuth(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/?tab=all", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login/?next=%2Fdashboard%2F%3Ftab%3Dall", rr.Header().Get("Location"))
}

func TestMiddleware_APIPath_Returns401(t *testing.T) {
	router := protectedRouter(setupAuth(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "authentication required")
}

func TestMiddleware_AcceptHeader_JSON(t *testing.T) {
	router := protectedRouter(setupAuth(t))

	req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_SessionUser(t *testing.T) {
	ta := setupAuth(t)
	user := ta.createUser(t, "alice")
	router := protectedRouter(ta)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test-login/alice", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"alice"`)
	assert.True(t, strings.Contains(rr.Body.String(), `"user_id":`+itoa(user.ID)))
}

func TestMiddleware_DeletedUserIsAnonymous(t *testing.T) {
	ta := setupAuth(t)
	user := ta.createUser(t, "alice")
	router := protectedRouter(ta)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test-login/alice", nil))
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)

	require.NoError(t, ta.db.Delete(user).Error)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestGetUserID_NoAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Zero(t, GetUserID(c))
	assert.Empty(t, GetUsername(c))
	assert.False(t, IsAuthenticated(c))

	c.Set(ContextKeyUserID, "not-a-uint")
	assert.Zero(t, GetUserID(c))
}
