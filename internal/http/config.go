package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/synthage/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Presets   PresetWorkflow
	Artifacts ArtifactStore
	Database  Pinger
	Audit     AuditReader
	Logger    *zap.Logger

	// Authentication (all optional in tests)
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue (optional)
	TaskQueue          TaskQueue
	AuditRetentionDays int

	// Application info
	Version string
}
