package http

import (
	"context"
	"io"
	"os"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/synthage/internal/entities"
	"github.com/mrlokans/synthage/internal/presets"
	"github.com/mrlokans/synthage/internal/validation"
)

// This file consolidates the interfaces HTTP controllers depend on. Each
// controller takes only what it uses so tests can pass small fakes.

// PresetWorkflow is the preset editing workflow as seen by the web layer.
type PresetWorkflow interface {
	EnsureDefaultPreset(ctx context.Context, ownerID uint) (*entities.Preset, bool, error)
	ListPresets(ctx context.Context, ownerID uint) ([]entities.Preset, error)
	LoadForEdit(ctx context.Context, ownerID uint, presetID *uint) (*presets.EditView, error)
	SaveEdit(ctx context.Context, req presets.EditRequest) (*presets.EditResult, error)
	CreatePreset(ctx context.Context, ownerID uint, in validation.PresetFields) (*entities.Preset, error)
	DeletePreset(ctx context.Context, ownerID, presetID uint) error
	PresetForOwner(ctx context.Context, ownerID, presetID uint) (*entities.Preset, error)
}

// ArtifactStore gives read access to generated firmware files.
type ArtifactStore interface {
	Exists(presetID uint) bool
	Open(presetID uint) (io.ReadCloser, os.FileInfo, error)
}

// AuditReader lists a user's audit events.
type AuditReader interface {
	GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(ctx context.Context, eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger checks a dependency is reachable.
type Pinger interface {
	Ping() error
}
