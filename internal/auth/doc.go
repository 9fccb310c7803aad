// Package auth provides session authentication for the web app.
//
// Users sign up with a username, email and password (bcrypt hashed). A
// successful login stores the user id in an scs session persisted to the
// sessions table of the main SQLite database. Every unsafe request is
// protected by gorilla/csrf.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF key, generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5           # Failures before lockout
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth, logger)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions).Handler())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c) // 0 for anonymous requests
package auth
