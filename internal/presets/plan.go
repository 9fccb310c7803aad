package presets

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/synthage/internal/entities"
	"github.com/mrlokans/synthage/internal/validation"
)

// editPlan is a fully validated set of knob mutations.
type editPlan struct {
	deletes     []uint
	updates     []entities.Knob
	creates     []entities.Knob
	keysChannel int
	name        string
}

// planEdit validates the request against the preset's current knobs and
// turns it into a plan. The rows are the preset's complete knob set: stored
// knobs no row mentions are deleted. Rows referencing knobs outside the
// preset are row errors; delete rows for unknown knobs are ignored.
func (s *Service) planEdit(req EditRequest, existing []entities.Knob) (*editPlan, error) {
	byID := make(map[uint]entities.Knob, len(existing))
	for _, k := range existing {
		byID[k.ID] = k
	}

	refs := map[uint]int{}
	for _, row := range req.Knobs {
		if row.ID != nil {
			if _, ok := byID[*row.ID]; ok {
				refs[*row.ID]++
			}
		}
	}

	be := &validation.BatchError{}
	for i, row := range req.Knobs {
		if row.ID == nil || !row.Active() {
			continue
		}
		if _, ok := byID[*row.ID]; !ok {
			be.AddRowError(i, validation.FieldID, validation.MsgUnknownKnob)
		} else if refs[*row.ID] > 1 {
			be.AddRowError(i, validation.FieldID, validation.MsgRepeatedKnob)
		}
	}

	if err := s.validator.ValidateKnobBatch(req.Knobs); err != nil {
		var batchErr *validation.BatchError
		if !errors.As(err, &batchErr) {
			return nil, err
		}
		for i, fields := range batchErr.Rows {
			for field, msg := range fields {
				be.AddRowError(i, field, msg)
			}
		}
		for _, msg := range batchErr.NonField {
			be.AddNonField(msg)
		}
	}

	fields := validation.FieldErrors{}
	keysChannel, err := s.validator.ValidateKeysChannel(req.KeysChannel)
	if err != nil && !mergeFieldErrors(fields, err) {
		return nil, err
	}
	name, err := s.validator.NormalizeName(req.Name)
	if err != nil && !mergeFieldErrors(fields, err) {
		return nil, err
	}

	if editErr := validation.NewEditError(fields, be); editErr != nil {
		return nil, editErr
	}

	plan := &editPlan{keysChannel: keysChannel, name: name}
	for _, k := range existing {
		if refs[k.ID] == 0 {
			plan.deletes = append(plan.deletes, k.ID)
		}
	}
	for i, row := range req.Knobs {
		if !row.Active() {
			if row.ID != nil {
				if _, ok := byID[*row.ID]; ok {
					plan.deletes = append(plan.deletes, *row.ID)
				}
			}
			continue
		}

		vk, err := s.validator.ValidateKnob(row.KnobFields)
		if err != nil {
			return nil, err
		}

		knob := entities.Knob{Order: i}
		if row.Order != nil {
			knob.Order = *row.Order
		}
		vk.Apply(&knob)

		if row.ID != nil {
			knob.ID = *row.ID
			knob.PresetID = byID[*row.ID].PresetID
			plan.updates = append(plan.updates, knob)
		} else {
			plan.creates = append(plan.creates, knob)
		}
	}

	return plan, nil
}

func mergeFieldErrors(dst validation.FieldErrors, err error) bool {
	var fe validation.FieldErrors
	if !errors.As(err, &fe) {
		return false
	}
	for field, msg := range fe {
		dst.Add(field, msg)
	}
	return true
}

func applyPlan(ctx context.Context, tx Store, presetID uint, plan *editPlan) error {
	if len(plan.deletes) > 0 {
		if err := tx.DeleteKnobs(ctx, presetID, plan.deletes); err != nil {
			return fmt.Errorf("failed to delete knobs: %w", err)
		}
	}

	for i := range plan.updates {
		if err := tx.UpdateKnob(ctx, &plan.updates[i]); err != nil {
			return fmt.Errorf("failed to update knob %d: %w", plan.updates[i].ID, err)
		}
	}

	for i := range plan.creates {
		plan.creates[i].PresetID = presetID
		if err := tx.CreateKnob(ctx, &plan.creates[i]); err != nil {
			return fmt.Errorf("failed to create knob: %w", err)
		}
	}

	return nil
}
