package validation

import (
	"errors"

	"github.com/mrlokans/synthage/internal/entities"
)

// KnobRow is one entry of an edit batch. Rows without an ID create knobs,
// rows with an ID update that knob, and rows flagged Delete remove it.
type KnobRow struct {
	ID *uint `json:"id,omitempty"`
	KnobFields
	Delete bool `json:"delete,omitempty"`
	Order  *int `json:"order,omitempty"`
}

// Active reports whether the row survives the edit.
func (r KnobRow) Active() bool {
	return !r.Delete
}

// ValidateKnobBatch checks every surviving row and the batch-level rules.
// On failure the error is a *BatchError.
func (v *Validator) ValidateKnobBatch(rows []KnobRow) error {
	be, err := v.checkBatch(rows)
	if err != nil {
		return err
	}
	if be.Empty() {
		return nil
	}
	return be
}

func (v *Validator) checkBatch(rows []KnobRow) (*BatchError, error) {
	be := &BatchError{}
	valid := make(map[int]ValidatedKnob, len(rows))
	active := 0

	for i, row := range rows {
		if !row.Active() {
			continue
		}
		active++

		vk, err := v.ValidateKnob(row.KnobFields)
		if err != nil {
			var fe FieldErrors
			if !errors.As(err, &fe) {
				return nil, err
			}
			for field, msg := range fe {
				be.AddRowError(i, field, msg)
			}
			continue
		}
		valid[i] = vk
	}

	if v.policy.RequireKnobs && active == 0 {
		be.AddNonField(MsgKnobsRequired)
	}
	if active > entities.MaxKnobs {
		be.AddNonField(MsgTooManyKnobs)
	}

	if v.policy.RejectDuplicateCC {
		markDuplicates(be, rows, valid, FieldCC, MsgDuplicateCC, func(k ValidatedKnob) int { return k.CC })
	}
	if v.policy.RejectDuplicatePin {
		markDuplicates(be, rows, valid, FieldPin, MsgDuplicatePin, func(k ValidatedKnob) int { return k.Pin })
	}

	return be, nil
}

// markDuplicates flags every row whose value collides with another surviving
// row.
func markDuplicates(be *BatchError, rows []KnobRow, valid map[int]ValidatedKnob, field, msg string, value func(ValidatedKnob) int) {
	counts := map[int]int{}
	for _, vk := range valid {
		counts[value(vk)]++
	}

	for i := range rows {
		vk, ok := valid[i]
		if !ok {
			continue
		}
		if counts[value(vk)] > 1 {
			be.AddRowError(i, field, msg)
		}
	}
}
