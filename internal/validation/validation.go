// Package validation checks knob and preset input before anything is
// persisted. Per-field rules are expressed as validator struct tags; the
// cross-field and batch rules that are switchable live in Policy.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/synthage/internal/entities"
)

// Field keys used in FieldErrors.
const (
	FieldChannel       = "channel"
	FieldCC            = "cc"
	FieldMin           = "min"
	FieldMax           = "max"
	FieldPin           = "pin"
	FieldID            = "id"
	FieldName          = "name"
	FieldKeysChannel   = "keys_channel"
	FieldNumberOfKnobs = "number_of_knobs"

	// NonFieldKey collects errors that belong to a whole knob row.
	NonFieldKey = "__all__"
)

// User-facing messages.
const (
	MsgRequired        = "This field is required."
	MsgMinAboveMax     = "Min value cannot be greater than max value."
	MsgDuplicateCC     = "CC number is already used by another knob."
	MsgDuplicatePin    = "Pin is already used by another knob."
	MsgKnobsRequired   = "At least one knob is required."
	MsgUnknownKnob     = "Knob does not belong to this preset."
	MsgRepeatedKnob    = "Knob appears more than once in this batch."
	msgTooManyKnobsFmt = "A preset can hold at most %d knobs."
)

// MsgTooManyKnobs is reported when an edit would leave more than MaxKnobs knobs.
var MsgTooManyKnobs = fmt.Sprintf(msgTooManyKnobsFmt, entities.MaxKnobs)

// Policy switches the rules that are off by default.
type Policy struct {
	RejectMinAboveMax  bool
	RejectDuplicateCC  bool
	RejectDuplicatePin bool
	RequireKnobs       bool
}

type fieldRange struct {
	label  string
	lo, hi int
}

var ranges = map[string]fieldRange{
	FieldChannel:       {"Channel", entities.MinChannel, entities.MaxChannel},
	FieldCC:            {"CC number", entities.MinCC, entities.MaxCC},
	FieldMin:           {"Min value", entities.MinValue, entities.MaxValue},
	FieldMax:           {"Max value", entities.MinValue, entities.MaxValue},
	FieldPin:           {"Pin", entities.MinPin, entities.MaxPin},
	FieldKeysChannel:   {"Keys channel", entities.MinChannel, entities.MaxChannel},
	FieldNumberOfKnobs: {"Number of knobs", 0, entities.MaxKnobs},
}

// RangeMessage returns the out-of-range message for a field.
func RangeMessage(field string) string {
	r, ok := ranges[field]
	if !ok {
		return "Value is out of range."
	}
	return fmt.Sprintf("%s must be between %d and %d.", r.label, r.lo, r.hi)
}

// Validator applies struct-tag rules plus the configured Policy.
type Validator struct {
	validate *validator.Validate
	policy   Policy
}

// New creates a Validator. Field names in errors follow the json tags.
func New(policy Policy) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v, policy: policy}
}

// structErrors runs tag validation and converts failures to FieldErrors.
func (v *Validator) structErrors(s any) (FieldErrors, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("failed to validate %T: %w", s, err)
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), messageFor(fe))
	}
	return fields, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "min", "max":
		if fe.Field() == FieldName {
			return fmt.Sprintf("Name must be at most %d characters.", entities.MaxPresetNameLen)
		}
		return RangeMessage(fe.Field())
	default:
		return fmt.Sprintf("Invalid value for %s.", fe.Field())
	}
}
