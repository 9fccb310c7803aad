package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/synthage/internal/audit"
	"github.com/mrlokans/synthage/internal/auth"
	"github.com/mrlokans/synthage/internal/config"
	"github.com/mrlokans/synthage/internal/database"
	auditrepo "github.com/mrlokans/synthage/internal/database/audit"
	presetsrepo "github.com/mrlokans/synthage/internal/database/presets"
	"github.com/mrlokans/synthage/internal/database/users"
	"github.com/mrlokans/synthage/internal/firmware"
	http_controllers "github.com/mrlokans/synthage/internal/http"
	"github.com/mrlokans/synthage/internal/logging"
	"github.com/mrlokans/synthage/internal/presets"
	"github.com/mrlokans/synthage/internal/scheduler"
	"github.com/mrlokans/synthage/internal/tasks"
	"github.com/mrlokans/synthage/internal/validation"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds every long-lived component of the server.
type App struct {
	Router *gin.Engine

	cfg            *config.Config
	logger         *zap.Logger
	db             *database.Database
	auditService   *audit.Service
	authController *auth.AuthController
	taskClient     *tasks.Client
	scheduler      *scheduler.CleanupScheduler
	cancelWorkers  context.CancelFunc
}

// NewApp opens the database and wires the services, task queue and router.
// Background workers are not running until Start is called.
func NewApp(cfg *config.Config, version string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{cfg: cfg, logger: logger}

	db, err := database.NewDatabase(cfg.Database.Path, database.Options{
		LogLevel: cfg.Database.LogLevel,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	app.auditService = audit.NewService(auditrepo.NewRepository(db.DB), logger.Named("audit"))

	artifacts := firmware.NewStore(cfg.Firmware.Dir)
	presetStore := presetsrepo.NewRepository(db.DB)
	validator := validation.New(validation.Policy{
		RejectMinAboveMax:  cfg.Validation.RejectMinAboveMax,
		RejectDuplicateCC:  cfg.Validation.RejectDuplicateCC,
		RejectDuplicatePin: cfg.Validation.RejectDuplicatePin,
		RequireKnobs:       cfg.Validation.RequireKnobs,
	})
	presetService := presets.NewService(presetStore, validator, logger.Named("presets"))
	presetService.SetExporter(firmware.NewExporter(artifacts))
	presetService.SetAuditor(app.auditService)
	logger.Info("firmware artifacts directory", zap.String("dir", artifacts.Dir()))

	if cfg.Tasks.Enabled {
		app.taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks), logger)
		if err != nil {
			app.closeDB()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.taskClient.Register(
			tasks.NewCleanupArtifactsQueue(artifacts, presetStore, app.auditService, logger),
			tasks.NewCleanupAuditEventsQueue(app.auditService, app.auditService, logger),
		)
		app.scheduler = scheduler.NewCleanupScheduler(app.taskClient, cfg.Cleanup, cfg.Audit, logger)
	} else {
		logger.Info("task queue disabled, scheduled cleanup will not run")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth, logger.Named("auth"))
	app.authController = auth.NewAuthController(authService, sessionManager, cfg.Auth, app.auditService, logger.Named("auth"))

	csrfSecret, err := csrfSecret(cfg.Auth.SessionSecret, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	routerCfg := http_controllers.RouterConfig{
		Presets:            presetService,
		Artifacts:          artifacts,
		Database:           db,
		Audit:              app.auditService,
		Logger:             logger.Named("http"),
		AuthController:     app.authController,
		AuthMiddleware:     auth.NewMiddleware(authService, sessionManager),
		SessionManager:     sessionManager,
		CSRFSecret:         csrfSecret,
		SecureCookies:      cfg.Auth.SecureCookies,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		Version:            version,
	}
	if app.taskClient != nil {
		routerCfg.TaskQueue = app.taskClient
	}
	app.Router = http_controllers.NewRouter(routerCfg)

	return app, nil
}

// csrfSecret decodes the configured hex secret, falling back to the raw
// bytes, or generates a fresh one that lasts until restart.
func csrfSecret(configured string, logger *zap.Logger) ([]byte, error) {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			return []byte(configured), nil
		}
		return secret, nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	logger.Warn("generated session secret, set AUTH_SESSION_SECRET to persist it across restarts")
	return hex.DecodeString(generated)
}

// Start launches the task workers and the cleanup scheduler.
func (a *App) Start(ctx context.Context) error {
	if a.taskClient == nil {
		return nil
	}

	var workerCtx context.Context
	workerCtx, a.cancelWorkers = context.WithCancel(ctx)
	a.taskClient.Start(workerCtx)

	if err := a.scheduler.Start(workerCtx); err != nil {
		return fmt.Errorf("failed to start cleanup scheduler: %w", err)
	}
	return nil
}

// Shutdown stops background work, flushes pending audit writes and closes
// the databases.
func (a *App) Shutdown(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil && a.cancelWorkers != nil {
		if !a.taskClient.Stop(ctx) {
			a.logger.Warn("task workers did not stop before the shutdown deadline")
		}
		a.cancelWorkers()
	}
	a.Close()
}

// Close releases resources without waiting for background workers.
func (a *App) Close() {
	if a.authController != nil {
		a.authController.Stop()
	}
	if a.auditService != nil {
		a.auditService.Wait()
	}
	if a.taskClient != nil {
		if err := a.taskClient.Close(); err != nil {
			a.logger.Error("error closing task client", zap.Error(err))
		}
	}
	a.closeDB()
}

func (a *App) closeDB() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully and calls onShutdown. onShutdown also runs when the server
// stops on its own, e.g. because the address is already in use.
func Serve(ctx context.Context, handler http.Handler, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		var listenErr error
		if ok {
			listenErr = fmt.Errorf("listen: %w", err)
			logger.Error("server failed to start", zap.Error(err))
		}
		if onShutdown != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			onShutdown(shutdownCtx)
		}
		return listenErr
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// Run builds the application from cfg and serves it until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting synthage", zap.String("version", version))

	if !cfg.Auth.SecureCookies {
		logger.Warn("secure cookies disabled, only use this without HTTPS in development")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(cfg, version, logger)
	if err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		app.Close()
		return err
	}

	return Serve(ctx, app.Router, cfg, logger, app.Shutdown)
}
