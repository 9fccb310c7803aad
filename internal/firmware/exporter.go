package firmware

import (
	"github.com/mrlokans/synthage/internal/entities"
)

// Exporter renders a preset and stores the result as its artifact.
type Exporter struct {
	store *Store
}

func NewExporter(store *Store) *Exporter {
	return &Exporter{store: store}
}

// Export renders and writes the artifact, returning its path.
func (e *Exporter) Export(preset *entities.Preset, knobs []entities.Knob) (string, error) {
	return e.store.Write(preset.ID, Render(preset, knobs))
}

// Remove deletes the artifact of a deleted preset.
func (e *Exporter) Remove(presetID uint) error {
	return e.store.Remove(presetID)
}
