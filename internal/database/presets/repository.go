// Package presets provides database operations for presets and their knobs.
//
// # Usage
//
//	repo := presets.NewRepository(db)
//	err := repo.Transaction(ctx, func(tx workflow.Store) error {
//		preset, err := tx.GetPreset(ctx, id)
//		...
//	})
package presets

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/synthage/internal/entities"
	workflow "github.com/mrlokans/synthage/internal/presets"
)

const knobOrder = "sort_order ASC, id ASC"

// Repository handles all preset and knob database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new presets repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (r *Repository) Transaction(ctx context.Context, fn func(tx workflow.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// GetPreset retrieves a preset by ID.
func (r *Repository) GetPreset(ctx context.Context, id uint) (*entities.Preset, error) {
	var preset entities.Preset
	err := r.db.WithContext(ctx).First(&preset, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &preset, nil
}

// LatestPresetForOwner retrieves the owner's most recently updated preset.
func (r *Repository) LatestPresetForOwner(ctx context.Context, ownerID uint) (*entities.Preset, error) {
	var preset entities.Preset
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC, id DESC").
		First(&preset).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &preset, nil
}

// ListPresetsForOwner returns the owner's presets, most recently updated first.
func (r *Repository) ListPresetsForOwner(ctx context.Context, ownerID uint) ([]entities.Preset, error) {
	var presets []entities.Preset
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC, id DESC").
		Find(&presets).Error
	return presets, err
}

// CountPresetsForOwner returns how many presets the owner has.
func (r *Repository) CountPresetsForOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Preset{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// ListPresetIDs returns the IDs of every stored preset.
func (r *Repository) ListPresetIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Preset{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// CreatePreset inserts a preset together with any knobs attached to it.
func (r *Repository) CreatePreset(ctx context.Context, preset *entities.Preset) error {
	return r.db.WithContext(ctx).Create(preset).Error
}

// UpdatePreset persists the preset's own columns. Knobs are not touched.
func (r *Repository) UpdatePreset(ctx context.Context, preset *entities.Preset) error {
	preset.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&entities.Preset{}).Where("id = ?", preset.ID).Updates(map[string]any{
		"name":            preset.Name,
		"keys_channel":    preset.KeysChannel,
		"number_of_knobs": preset.NumberOfKnobs,
		"updated_at":      preset.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return workflow.ErrPresetNotFound
	}
	return nil
}

// DeletePreset removes a preset and its knobs.
func (r *Repository) DeletePreset(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("preset_id = ?", id).Delete(&entities.Knob{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Preset{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return workflow.ErrPresetNotFound
		}
		return nil
	})
}

// ListKnobs returns the preset's knobs in display order.
func (r *Repository) ListKnobs(ctx context.Context, presetID uint) ([]entities.Knob, error) {
	var knobs []entities.Knob
	err := r.db.WithContext(ctx).Where("preset_id = ?", presetID).Order(knobOrder).Find(&knobs).Error
	return knobs, err
}

// CountKnobs returns how many knobs belong to the preset.
func (r *Repository) CountKnobs(ctx context.Context, presetID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Knob{}).Where("preset_id = ?", presetID).Count(&count).Error
	return count, err
}

// CreateKnob inserts a knob.
func (r *Repository) CreateKnob(ctx context.Context, knob *entities.Knob) error {
	return r.db.WithContext(ctx).Create(knob).Error
}

// UpdateKnob persists every editable column of a knob, zero values included.
func (r *Repository) UpdateKnob(ctx context.Context, knob *entities.Knob) error {
	result := r.db.WithContext(ctx).Model(&entities.Knob{}).
		Where("id = ? AND preset_id = ?", knob.ID, knob.PresetID).
		Updates(map[string]any{
			"channel":    knob.Channel,
			"cc":         knob.CC,
			"min_value":  knob.Min,
			"max_value":  knob.Max,
			"pin":        knob.Pin,
			"sort_order": knob.Order,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteKnobs removes the given knobs of a preset.
func (r *Repository) DeleteKnobs(ctx context.Context, presetID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("preset_id = ? AND id IN ?", presetID, ids).Delete(&entities.Knob{}).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return workflow.ErrPresetNotFound
	}
	return err
}
