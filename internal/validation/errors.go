package validation

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a field name to its message. A nil or empty map means no
// errors; validators return a plain nil error in that case.
type FieldErrors map[string]string

// Add records msg for field, keeping the first message for a field.
func (fe FieldErrors) Add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// BatchError collects per-row errors keyed by the row's position in the
// submission, plus errors about the batch as a whole.
type BatchError struct {
	Rows     map[int]FieldErrors `json:"rows,omitempty"`
	NonField []string            `json:"non_field,omitempty"`
}

// AddRowError records msg for field on row i.
func (be *BatchError) AddRowError(i int, field, msg string) {
	if be.Rows == nil {
		be.Rows = map[int]FieldErrors{}
	}
	if be.Rows[i] == nil {
		be.Rows[i] = FieldErrors{}
	}
	be.Rows[i].Add(field, msg)
}

// AddNonField records a batch-level message.
func (be *BatchError) AddNonField(msg string) {
	be.NonField = append(be.NonField, msg)
}

// Empty reports whether nothing was recorded.
func (be *BatchError) Empty() bool {
	return be == nil || (len(be.Rows) == 0 && len(be.NonField) == 0)
}

func (be *BatchError) Error() string {
	rows := make([]int, 0, len(be.Rows))
	for i := range be.Rows {
		rows = append(rows, i)
	}
	sort.Ints(rows)

	parts := make([]string, 0, len(rows)+len(be.NonField))
	parts = append(parts, be.NonField...)
	for _, i := range rows {
		parts = append(parts, fmt.Sprintf("row %d: %s", i, be.Rows[i].Error()))
	}
	return "invalid knob batch: " + strings.Join(parts, "; ")
}

// EditError is the combined result of validating a preset edit: preset-level
// fields plus the knob batch.
type EditError struct {
	Fields   FieldErrors         `json:"fields,omitempty"`
	Rows     map[int]FieldErrors `json:"rows,omitempty"`
	NonField []string            `json:"non_field,omitempty"`
}

// NewEditError merges preset-level field errors and a batch error. It returns
// nil when both are empty.
func NewEditError(fields FieldErrors, batch *BatchError) *EditError {
	if len(fields) == 0 && batch.Empty() {
		return nil
	}
	ee := &EditError{Fields: fields}
	if batch != nil {
		ee.Rows = batch.Rows
		ee.NonField = batch.NonField
	}
	return ee
}

func (ee *EditError) Error() string {
	var parts []string
	if len(ee.Fields) > 0 {
		parts = append(parts, ee.Fields.Error())
	}
	if len(ee.Rows) > 0 || len(ee.NonField) > 0 {
		parts = append(parts, (&BatchError{Rows: ee.Rows, NonField: ee.NonField}).Error())
	}
	return "invalid preset edit: " + strings.Join(parts, "; ")
}
