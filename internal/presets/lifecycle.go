package presets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/synthage/internal/entities"
	"github.com/mrlokans/synthage/internal/validation"
)

// EnsureDefaultPreset provisions the "Default" preset for an owner who has
// no presets yet. It reports whether a preset was created.
func (s *Service) EnsureDefaultPreset(ctx context.Context, ownerID uint) (*entities.Preset, bool, error) {
	var created *entities.Preset

	err := s.store.Transaction(ctx, func(tx Store) error {
		count, err := tx.CountPresetsForOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to count presets: %w", err)
		}
		if count > 0 {
			return nil
		}

		preset := newPreset(ownerID, entities.DefaultPresetName, entities.MinChannel, entities.DefaultKnobCount)
		if err := tx.CreatePreset(ctx, preset); err != nil {
			return fmt.Errorf("failed to create default preset: %w", err)
		}
		created = preset
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created == nil {
		return nil, false, nil
	}

	s.logger.Info("provisioned default preset",
		zap.Uint("owner_id", ownerID),
		zap.Uint("preset_id", created.ID))
	if s.auditor != nil {
		s.auditor.LogPreset(ownerID, "preset_provision", created.ID, "Provisioned default preset", nil)
	}
	return created, true, nil
}

// CreatePreset validates the fields and creates a preset seeded with default
// knobs. Validation failures are returned as validation.FieldErrors.
func (s *Service) CreatePreset(ctx context.Context, ownerID uint, in validation.PresetFields) (*entities.Preset, error) {
	vp, err := s.validator.ValidatePreset(in)
	if err != nil {
		return nil, err
	}

	preset := newPreset(ownerID, vp.Name, vp.KeysChannel, vp.NumberOfKnobs)
	if err := s.store.CreatePreset(ctx, preset); err != nil {
		return nil, fmt.Errorf("failed to create preset: %w", err)
	}

	if s.auditor != nil {
		s.auditor.LogPreset(ownerID, "preset_create", preset.ID,
			fmt.Sprintf("Created preset %q with %d knobs", preset.Name, preset.NumberOfKnobs), nil)
	}
	return preset, nil
}

// DeletePreset removes an owned preset, its knobs and its firmware artifact.
func (s *Service) DeletePreset(ctx context.Context, ownerID, presetID uint) error {
	var name string
	err := s.store.Transaction(ctx, func(tx Store) error {
		preset, err := presetForOwner(ctx, tx, ownerID, presetID)
		if err != nil {
			return err
		}
		name = preset.Name
		return tx.DeletePreset(ctx, presetID)
	})
	if err != nil {
		return err
	}

	if s.exporter != nil {
		if err := s.exporter.Remove(presetID); err != nil {
			s.logger.Warn("failed to remove firmware artifact",
				zap.Uint("preset_id", presetID),
				zap.Error(err))
		}
	}
	if s.auditor != nil {
		s.auditor.LogPreset(ownerID, "preset_delete", presetID, "Deleted preset "+name, nil)
	}
	return nil
}

// ListPresets returns the owner's presets, most recently updated first.
func (s *Service) ListPresets(ctx context.Context, ownerID uint) ([]entities.Preset, error) {
	return s.store.ListPresetsForOwner(ctx, ownerID)
}

// PresetForOwner loads a preset, failing with ErrForbidden when another user
// owns it.
func (s *Service) PresetForOwner(ctx context.Context, ownerID, presetID uint) (*entities.Preset, error) {
	return presetForOwner(ctx, s.store, ownerID, presetID)
}

// EditView is everything the edit page shows.
type EditView struct {
	Preset  *entities.Preset // nil when the owner has no presets
	Knobs   []entities.Knob
	Presets []entities.Preset
}

// LoadForEdit resolves the preset to edit (explicit id or the owner's most
// recent one) together with its knobs and the owner's preset list.
func (s *Service) LoadForEdit(ctx context.Context, ownerID uint, presetID *uint) (*EditView, error) {
	view := &EditView{}

	var err error
	if presetID != nil {
		view.Preset, err = presetForOwner(ctx, s.store, ownerID, *presetID)
	} else {
		view.Preset, err = s.store.LatestPresetForOwner(ctx, ownerID)
		if errors.Is(err, ErrPresetNotFound) {
			view.Preset, err = nil, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if view.Preset != nil {
		view.Knobs, err = s.store.ListKnobs(ctx, view.Preset.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load knobs: %w", err)
		}
	}

	view.Presets, err = s.store.ListPresetsForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	return view, nil
}

// ExportPreset regenerates the firmware artifact for a preset regardless of
// owner. It backs the export-firmware command.
func (s *Service) ExportPreset(ctx context.Context, presetID uint) (string, error) {
	if s.exporter == nil {
		return "", errors.New("firmware exporter not configured")
	}

	preset, err := s.store.GetPreset(ctx, presetID)
	if err != nil {
		return "", err
	}
	knobs, err := s.store.ListKnobs(ctx, presetID)
	if err != nil {
		return "", fmt.Errorf("failed to load knobs: %w", err)
	}
	return s.exporter.Export(preset, knobs)
}

func newPreset(ownerID uint, name string, keysChannel, knobCount int) *entities.Preset {
	preset := &entities.Preset{
		OwnerID:       &ownerID,
		Name:          name,
		KeysChannel:   keysChannel,
		NumberOfKnobs: knobCount,
		Knobs:         make([]entities.Knob, 0, knobCount),
	}
	for i := 0; i < knobCount; i++ {
		preset.Knobs = append(preset.Knobs, entities.DefaultKnob(i))
	}
	return preset
}
