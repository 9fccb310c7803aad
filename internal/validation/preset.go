package validation

import (
	"strings"

	"github.com/mrlokans/synthage/internal/entities"
)

// PresetFields is the input for creating a preset. Nil pointers fall back to
// the defaults.
type PresetFields struct {
	Name          string `json:"name" form:"name" validate:"required,max=200"`
	KeysChannel   *int   `json:"keys_channel" form:"keys_channel" validate:"omitempty,min=1,max=16"`
	NumberOfKnobs *int   `json:"number_of_knobs" form:"number_of_knobs" validate:"omitempty,min=0,max=24"`
}

// ValidatedPreset holds preset values that passed validation.
type ValidatedPreset struct {
	Name          string
	KeysChannel   int
	NumberOfKnobs int
}

// ValidatePreset trims the name and checks every preset field. On failure
// the error is a FieldErrors.
func (v *Validator) ValidatePreset(in PresetFields) (ValidatedPreset, error) {
	in.Name = strings.TrimSpace(in.Name)

	fields, err := v.structErrors(in)
	if err != nil {
		return ValidatedPreset{}, err
	}
	if len(fields) > 0 {
		return ValidatedPreset{}, fields
	}

	out := ValidatedPreset{
		Name:          in.Name,
		KeysChannel:   entities.MinChannel,
		NumberOfKnobs: entities.DefaultKnobCount,
	}
	if in.KeysChannel != nil {
		out.KeysChannel = *in.KeysChannel
	}
	if in.NumberOfKnobs != nil {
		out.NumberOfKnobs = *in.NumberOfKnobs
	}
	return out, nil
}

type keysChannelInput struct {
	KeysChannel *int `json:"keys_channel" validate:"required,min=1,max=16"`
}

// ValidateKeysChannel checks the channel used for key presses.
func (v *Validator) ValidateKeysChannel(ch *int) (int, error) {
	fields, err := v.structErrors(keysChannelInput{KeysChannel: ch})
	if err != nil {
		return 0, err
	}
	if len(fields) > 0 {
		return 0, fields
	}
	return *ch, nil
}

type presetNameInput struct {
	Name string `json:"name" validate:"max=200"`
}

// NormalizeName trims a rename request. It returns "" when the name should be
// left unchanged.
func (v *Validator) NormalizeName(name *string) (string, error) {
	if name == nil {
		return "", nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return "", nil
	}

	fields, err := v.structErrors(presetNameInput{Name: trimmed})
	if err != nil {
		return "", err
	}
	if len(fields) > 0 {
		return "", fields
	}
	return trimmed, nil
}
