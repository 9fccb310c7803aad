// Package presets implements the preset editing workflow: resolving the
// target preset, validating an edit batch and applying it as one unit of
// work, plus default-preset provisioning and preset lifecycle operations.
package presets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/synthage/internal/entities"
	"github.com/mrlokans/synthage/internal/validation"
)

// Service coordinates the store, the validator and the optional exporter and
// auditor collaborators.
type Service struct {
	store     Store
	validator *validation.Validator
	exporter  Exporter
	auditor   Auditor
	logger    *zap.Logger
}

// NewService creates a preset service.
func NewService(store Store, validator *validation.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// SetExporter configures firmware export after successful saves.
func (s *Service) SetExporter(e Exporter) {
	s.exporter = e
}

// SetAuditor configures audit logging.
func (s *Service) SetAuditor(a Auditor) {
	s.auditor = a
}

// EditRequest is one submission of the preset edit form.
type EditRequest struct {
	OwnerID     uint
	PresetID    *uint // nil edits the owner's most recent preset, creating "Default" if none exists
	Knobs       []validation.KnobRow
	KeysChannel *int
	Name        *string
}

// EditResult is the state of the preset after a committed edit.
type EditResult struct {
	Preset  *entities.Preset
	Knobs   []entities.Knob
	Created bool // the preset was provisioned by this edit

	// Set by SaveEdit.
	ArtifactPath string
	ExportErr    error
}

// ApplyEdit validates and applies an edit batch inside a single transaction.
// Validation failures are returned as *validation.EditError and leave the
// store untouched.
func (s *Service) ApplyEdit(ctx context.Context, req EditRequest) (*EditResult, error) {
	result := &EditResult{}

	err := s.store.Transaction(ctx, func(tx Store) error {
		preset, created, err := s.resolveForEdit(ctx, tx, req.OwnerID, req.PresetID)
		if err != nil {
			return err
		}
		result.Created = created

		existing, err := tx.ListKnobs(ctx, preset.ID)
		if err != nil {
			return fmt.Errorf("failed to load knobs: %w", err)
		}

		plan, err := s.planEdit(req, existing)
		if err != nil {
			return err
		}

		if err := applyPlan(ctx, tx, preset.ID, plan); err != nil {
			return err
		}

		count, err := tx.CountKnobs(ctx, preset.ID)
		if err != nil {
			return fmt.Errorf("failed to count knobs: %w", err)
		}
		preset.NumberOfKnobs = int(count)
		preset.KeysChannel = plan.keysChannel
		if plan.name != "" && plan.name != preset.Name {
			preset.Name = plan.name
		}
		if err := tx.UpdatePreset(ctx, preset); err != nil {
			return fmt.Errorf("failed to update preset: %w", err)
		}

		knobs, err := tx.ListKnobs(ctx, preset.ID)
		if err != nil {
			return fmt.Errorf("failed to reload knobs: %w", err)
		}

		result.Preset = preset
		result.Knobs = knobs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SaveEdit applies an edit and then regenerates the firmware artifact. An
// export failure does not undo the committed edit; it is reported in
// EditResult.ExportErr.
func (s *Service) SaveEdit(ctx context.Context, req EditRequest) (*EditResult, error) {
	result, err := s.ApplyEdit(ctx, req)
	if err != nil {
		var editErr *validation.EditError
		if s.auditor != nil && !errors.As(err, &editErr) && !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrPresetNotFound) {
			s.auditor.LogPreset(req.OwnerID, "preset_edit", derefID(req.PresetID), "Preset edit failed", err)
		}
		return nil, err
	}

	presetID := result.Preset.ID
	if s.auditor != nil {
		s.auditor.LogPreset(req.OwnerID, "preset_edit", presetID,
			fmt.Sprintf("Saved preset %q with %d knobs", result.Preset.Name, len(result.Knobs)), nil)
	}

	if s.exporter == nil {
		return result, nil
	}

	path, exportErr := s.exporter.Export(result.Preset, result.Knobs)
	result.ArtifactPath = path
	result.ExportErr = exportErr
	if exportErr != nil {
		s.logger.Error("firmware export failed",
			zap.Uint("preset_id", presetID),
			zap.Error(exportErr))
	} else {
		s.logger.Info("firmware exported",
			zap.Uint("preset_id", presetID),
			zap.String("path", path),
			zap.Int("knobs", len(result.Knobs)))
	}
	if s.auditor != nil {
		s.auditor.LogFirmware(req.OwnerID, presetID, path, exportErr)
	}

	return result, nil
}

// resolveForEdit returns the preset an edit targets. With no id it picks the
// owner's most recent preset, creating an empty "Default" preset when the
// owner has none.
func (s *Service) resolveForEdit(ctx context.Context, tx Store, ownerID uint, presetID *uint) (*entities.Preset, bool, error) {
	if presetID != nil {
		preset, err := presetForOwner(ctx, tx, ownerID, *presetID)
		return preset, false, err
	}

	preset, err := tx.LatestPresetForOwner(ctx, ownerID)
	if err == nil {
		return preset, false, nil
	}
	if !errors.Is(err, ErrPresetNotFound) {
		return nil, false, err
	}

	preset = &entities.Preset{
		OwnerID:     &ownerID,
		Name:        entities.DefaultPresetName,
		KeysChannel: entities.MinChannel,
	}
	if err := tx.CreatePreset(ctx, preset); err != nil {
		return nil, false, fmt.Errorf("failed to create default preset: %w", err)
	}
	return preset, true, nil
}

func presetForOwner(ctx context.Context, store Store, ownerID, presetID uint) (*entities.Preset, error) {
	preset, err := store.GetPreset(ctx, presetID)
	if err != nil {
		return nil, err
	}
	if !preset.OwnedBy(ownerID) {
		return nil, ErrForbidden
	}
	return preset, nil
}

func derefID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
