package config

// Default paths for databases and generated artifacts
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./synthage.db"

	// DefaultFirmwareDir is where firmware_preset_<id>.ino artifacts are written
	DefaultFirmwareDir = "./generated_firmware"
)
