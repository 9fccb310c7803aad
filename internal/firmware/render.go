// Package firmware renders preset knob arrays into a firmware source stub
// and keeps one generated artifact per preset on disk.
package firmware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/synthage/internal/entities"
)

// Render produces the firmware source for a preset. Knobs are emitted in the
// order given; pins are not part of the template.
func Render(preset *entities.Preset, knobs []entities.Knob) string {
	var builder strings.Builder

	channels := make([]int, len(knobs))
	ccs := make([]int, len(knobs))
	mins := make([]int, len(knobs))
	maxs := make([]int, len(knobs))
	for i, k := range knobs {
		channels[i] = k.Channel
		ccs[i] = k.CC
		mins[i] = k.Min
		maxs[i] = k.Max
	}

	fmt.Fprintf(&builder, "// SweetBox SYNTHAGE Firmware\n")
	fmt.Fprintf(&builder, "// Preset: %s\n", singleLine(preset.Name))
	fmt.Fprintf(&builder, "const int NUM_KNOBS = %d;\n", len(knobs))
	fmt.Fprintf(&builder, "int knobChannels[NUM_KNOBS] = { %s };\n", joinInts(channels))
	fmt.Fprintf(&builder, "int knobCCs[NUM_KNOBS] = { %s };\n", joinInts(ccs))
	fmt.Fprintf(&builder, "int knobMins[NUM_KNOBS] = { %s };\n", joinInts(mins))
	fmt.Fprintf(&builder, "int knobMaxs[NUM_KNOBS] = { %s };\n", joinInts(maxs))
	fmt.Fprintf(&builder, "// ... rest of your firmware ...\n")

	return builder.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// singleLine keeps a preset name inside its comment line.
func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
