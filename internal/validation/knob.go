package validation

import "github.com/mrlokans/synthage/internal/entities"

// KnobFields is the raw, possibly incomplete input for one knob. A nil
// pointer means the value was not submitted.
type KnobFields struct {
	Channel *int `json:"channel" validate:"required,min=1,max=16"`
	CC      *int `json:"cc" validate:"required,min=0,max=127"`
	Min     *int `json:"min" validate:"required,min=0,max=127"`
	Max     *int `json:"max" validate:"required,min=0,max=127"`
	Pin     *int `json:"pin" validate:"required,min=0,max=99"`
}

// ValidatedKnob holds knob values that passed every per-knob rule.
type ValidatedKnob struct {
	Channel int
	CC      int
	Min     int
	Max     int
	Pin     int
}

// Apply copies the validated values onto k.
func (vk ValidatedKnob) Apply(k *entities.Knob) {
	k.Channel = vk.Channel
	k.CC = vk.CC
	k.Min = vk.Min
	k.Max = vk.Max
	k.Pin = vk.Pin
}

// FieldsFromKnob converts a stored knob back into input form.
func FieldsFromKnob(k entities.Knob) KnobFields {
	return KnobFields{
		Channel: intPtr(k.Channel),
		CC:      intPtr(k.CC),
		Min:     intPtr(k.Min),
		Max:     intPtr(k.Max),
		Pin:     intPtr(k.Pin),
	}
}

// ValidateKnob checks a single knob. On failure the error is a FieldErrors.
func (v *Validator) ValidateKnob(in KnobFields) (ValidatedKnob, error) {
	fields, err := v.structErrors(in)
	if err != nil {
		return ValidatedKnob{}, err
	}
	if fields == nil {
		fields = FieldErrors{}
	}

	if v.policy.RejectMinAboveMax && in.Min != nil && in.Max != nil {
		_, minBad := fields[FieldMin]
		_, maxBad := fields[FieldMax]
		if !minBad && !maxBad && *in.Min > *in.Max {
			fields.Add(NonFieldKey, MsgMinAboveMax)
		}
	}

	if len(fields) > 0 {
		return ValidatedKnob{}, fields
	}

	return ValidatedKnob{
		Channel: *in.Channel,
		CC:      *in.CC,
		Min:     *in.Min,
		Max:     *in.Max,
		Pin:     *in.Pin,
	}, nil
}

func intPtr(i int) *int {
	return &i
}
