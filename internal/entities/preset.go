package entities

import "time"

// Value domains shared by the validation layer and the firmware exporter.
const (
	MinChannel = 1
	MaxChannel = 16
	MinCC      = 0
	MaxCC      = 127
	MinValue   = 0
	MaxValue   = 127
	MinPin     = 0
	MaxPin     = 99

	MaxKnobs          = 24
	MaxPresetNameLen  = 200
	DefaultPresetName = "Default"
	DefaultKnobCount  = 4
)

// Preset is a named knob layout owned by a single user.
// NumberOfKnobs mirrors len(Knobs) after every successful edit.
type Preset struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OwnerID       *uint     `gorm:"index" json:"owner_id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	KeysChannel   int       `gorm:"not null" json:"keys_channel"`
	NumberOfKnobs int       `gorm:"not null" json:"number_of_knobs"`
	Knobs         []Knob    `gorm:"foreignKey:PresetID;constraint:OnDelete:CASCADE" json:"knobs,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`
}

// OwnedBy reports whether the preset belongs to the given user.
func (p *Preset) OwnedBy(userID uint) bool {
	return p.OwnerID != nil && *p.OwnerID == userID
}

// Knob is one physical rotary control of a preset.
type Knob struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PresetID uint `gorm:"index;not null" json:"preset_id"`
	Channel  int  `gorm:"not null" json:"channel"`
	CC       int  `gorm:"column:cc;not null" json:"cc"`
	Min      int  `gorm:"column:min_value;not null" json:"min"`
	Max      int  `gorm:"column:max_value;not null" json:"max"`
	Pin      int  `gorm:"not null" json:"pin"`
	Order    int  `gorm:"column:sort_order;not null" json:"order"`
}

// DefaultKnob returns the knob used to seed position i of a new preset.
func DefaultKnob(i int) Knob {
	return Knob{
		Channel: MinChannel,
		CC:      i,
		Min:     MinValue,
		Max:     MaxValue,
		Pin:     i,
		Order:   i,
	}
}
