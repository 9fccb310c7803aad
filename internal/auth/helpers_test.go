package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/synthage/internal/config"
	"github.com/mrlokans/synthage/internal/database/users"
	"github.com/mrlokans/synthage/internal/entities"
)

const testPassword = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

type testAuth struct {
	db    *gorm.DB
	users *users.Repository
	svc   *Service
	sm    *SessionManager
	cfg   config.Auth
}

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  15 * time.Minute,
		LockoutDuration:  30 * time.Minute,
	}
}

func setupAuth(t *testing.T) *testAuth {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := testAuthConfig()
	repo := users.NewRepository(db)

	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	return &testAuth{
		db:    db,
		users: repo,
		svc:   NewService(repo, cfg, nil),
		sm:    sm,
		cfg:   cfg,
	}
}

func (ta *testAuth) createUser(t *testing.T, username string) *entities.User {
	t.Helper()
	user, err := ta.svc.CreateUser(context.Background(), username, username+"@example.com", testPassword)
	require.NoError(t, err)
	return user
}

// sessionCookie returns the session cookie set by a response, or nil.
func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

type recordedAuthEvent struct {
	userID  uint
	action  string
	success bool
}

type fakeAuditor struct {
	events []recordedAuthEvent
}

func (f *fakeAuditor) LogAuth(userID uint, action string, _, _ string, success bool) {
	f.events = append(f.events, recordedAuthEvent{userID: userID, action: action, success: success})
}

func (f *fakeAuditor) actions() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.action)
	}
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
