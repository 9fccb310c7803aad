package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/synthage/internal/audit"
	"github.com/mrlokans/synthage/internal/auth"
	"github.com/mrlokans/synthage/internal/database"
	presetsrepo "github.com/mrlokans/synthage/internal/database/presets"
	"github.com/mrlokans/synthage/internal/database/users"
	"github.com/mrlokans/synthage/internal/firmware"
	"github.com/mrlokans/synthage/internal/http"
	"github.com/mrlokans/synthage/internal/presets"
	"github.com/mrlokans/synthage/internal/scheduler"
	"github.com/mrlokans/synthage/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Preset workflow persistence
var _ presets.Store = (*presetsrepo.Repository)(nil)

// User persistence
var _ auth.UserStore = (*users.Repository)(nil)
var _ auth.UserLookup = (*auth.Service)(nil)

// Health checks
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Preset Editing Workflow
// =============================================================================

var _ http.PresetWorkflow = (*presets.Service)(nil)
var _ presets.Exporter = (*firmware.Exporter)(nil)
var _ http.ArtifactStore = (*firmware.Store)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ presets.Auditor = (*audit.Service)(nil)
var _ auth.Auditor = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ tasks.ArtifactStore = (*firmware.Store)(nil)
var _ tasks.PresetLister = (*presetsrepo.Repository)(nil)
var _ tasks.CleanupReporter = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
