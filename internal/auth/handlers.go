package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/synthage/internal/config"
)

// DefaultLoginRedirect is where a successful login lands without a next path.
const DefaultLoginRedirect = "/preset/"

// Auditor records authentication events.
type Auditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}

	if !strings.HasPrefix(path, "/") {
		return false
	}

	// Protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}

	if strings.Contains(path, "://") {
		return false
	}

	if strings.Contains(path, "\\") {
		return false
	}

	return true
}

// sanitizeRedirectPath returns a safe redirect path, falling back to fallback if invalid.
func sanitizeRedirectPath(path, fallback string) string {
	if isLocalPath(path) {
		return path
	}
	return fallback
}

// AuthController handles the sign-up, login and logout endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	auditor        Auditor
	logger         *zap.Logger
}

// NewAuthController creates a new authentication controller. auditor may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, auditor Auditor, logger *zap.Logger) *AuthController {
	if logger == nil {
		logger = zap.NewNop()
	}

	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		auditor:        auditor,
		logger:         logger,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/sign-up/", ac.SignUpPage)
	router.POST("/sign-up/", ac.SignUp)
	router.GET(LoginPath, ac.LoginPage)
	router.POST(LoginPath, ac.Login)
	router.POST("/logout/", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// SignUpPage describes the sign-up form.
func (ac *AuthController) SignUpPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":      "Sign up",
		"fields":     []string{"username", "email", "password", "confirm_password"},
		"csrf_token": GetCSRFToken(c),
	})
}

// SignUp creates an account and logs the new user in.
func (ac *AuthController) SignUp(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	if password != c.PostForm("confirm_password") {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "Passwords do not match",
			"username": username,
			"email":    email,
		})
		return
	}

	user, err := ac.service.CreateUser(c.Request.Context(), username, email, password)
	if err != nil {
		msg, known := signUpErrorMessage(err)
		if !known {
			ac.logger.Error("sign-up failed", zap.String("username", username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    msg,
			"username": username,
			"email":    email,
		})
		return
	}

	ac.audit(c, user.ID, "sign_up", true)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.logger.Error("failed to create session", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// signUpErrorMessage maps a CreateUser error to a form message. The bool
// is false for unexpected errors.
func signUpErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least " + strconv.Itoa(MinPasswordLength) + " characters", true
	case errors.Is(err, ErrPasswordTooLong):
		return "Password exceeds maximum length of 72 bytes", true
	case errors.Is(err, ErrPasswordRequired):
		return "Password is required", true
	case errors.Is(err, ErrUsernameRequired):
		return "Username is required", true
	case errors.Is(err, ErrUsernameInvalid):
		return "Username must be 3-64 characters, alphanumeric with underscore/hyphen only", true
	case errors.Is(err, ErrEmailRequired):
		return "Email is required", true
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format", true
	case errors.Is(err, ErrUserExists):
		return "A user with that username or email already exists", true
	}
	return "Failed to create user", false
}

// LoginPage describes the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	next := sanitizeRedirectPath(c.Query("next"), DefaultLoginRedirect)

	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, next)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":      "Login",
		"next":       next,
		"fields":     []string{"username", "password"},
		"csrf_token": GetCSRFToken(c),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	login := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"), DefaultLoginRedirect)
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, login); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many login attempts. Please try again later.",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), login, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, login)
		ac.audit(c, 0, "login_failed", false)

		status := http.StatusUnauthorized
		msg := "Invalid username or password"
		switch {
		case errors.Is(err, ErrAccountLocked):
			msg = "Account is locked. Please try again later."
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
		default:
			ac.logger.Error("login failed", zap.String("login", login), zap.Error(err))
			status = http.StatusInternalServerError
			msg = "Login failed"
		}

		c.JSON(status, gin.H{"error": msg, "username": login})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, login)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.logger.Error("failed to create session", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	ac.audit(c, user.ID, "login", true)
	c.Redirect(http.StatusSeeOther, next)
}

// Logout destroys the session and redirects home.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := ac.sessionManager.GetUserID(c.Request)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		ac.logger.Warn("failed to destroy session", zap.Error(err))
	}
	if userID != 0 {
		ac.audit(c, userID, "logout", true)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (ac *AuthController) audit(c *gin.Context, userID uint, action string, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}
