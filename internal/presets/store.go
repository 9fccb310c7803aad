package presets

import (
	"context"
	"errors"

	"github.com/mrlokans/synthage/internal/entities"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrForbidden      = errors.New("preset belongs to another user")
)

// Store is the persistence contract of the editing workflow. Every method
// called on the Store handed to a Transaction callback runs inside that
// transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetPreset(ctx context.Context, id uint) (*entities.Preset, error)
	LatestPresetForOwner(ctx context.Context, ownerID uint) (*entities.Preset, error)
	ListPresetsForOwner(ctx context.Context, ownerID uint) ([]entities.Preset, error)
	CountPresetsForOwner(ctx context.Context, ownerID uint) (int64, error)
	ListPresetIDs(ctx context.Context) ([]uint, error)
	CreatePreset(ctx context.Context, preset *entities.Preset) error
	UpdatePreset(ctx context.Context, preset *entities.Preset) error
	DeletePreset(ctx context.Context, id uint) error

	ListKnobs(ctx context.Context, presetID uint) ([]entities.Knob, error)
	CountKnobs(ctx context.Context, presetID uint) (int64, error)
	CreateKnob(ctx context.Context, knob *entities.Knob) error
	UpdateKnob(ctx context.Context, knob *entities.Knob) error
	DeleteKnobs(ctx context.Context, presetID uint, ids []uint) error
}

// Exporter produces the firmware artifact for a saved preset.
type Exporter interface {
	Export(preset *entities.Preset, knobs []entities.Knob) (string, error)
	Remove(presetID uint) error
}

// Auditor records workflow events. Implementations must not block.
type Auditor interface {
	LogPreset(userID uint, action string, presetID uint, description string, err error)
	LogFirmware(userID uint, presetID uint, path string, err error)
}
