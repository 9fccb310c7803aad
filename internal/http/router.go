package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/synthage/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(cfg.Logger))
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	presetsController := NewPresetsController(cfg.Presets, cfg.Artifacts)
	router.GET("/", presetsController.Home)
	router.GET(DashboardPath, presetsController.Dashboard)
	router.GET("/preset/", presetsController.EditPage)
	router.POST("/preset/", presetsController.SaveEdit)
	router.POST("/create_preset/", presetsController.CreatePreset)
	router.POST("/delete_preset/:id/", presetsController.DeletePreset)

	if cfg.Artifacts != nil {
		firmwareController := NewFirmwareController(cfg.Presets, cfg.Artifacts)
		router.GET("/download_firmware/:preset_id/", firmwareController.Download)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		router.GET("/api/audit", auditController.GetAuditEvents)
		router.GET("/api/audit/types", auditController.GetEventTypes)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.AuditRetentionDays)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
